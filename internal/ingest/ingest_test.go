package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/studydeck/studydeck/internal/home"
)

func testHome(t *testing.T) *home.Dir {
	t.Helper()
	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	return dir
}

func TestIngestMarkdown(t *testing.T) {
	homeDir := testHome(t)
	lib, err := NewLibrary(homeDir)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}

	doc, err := Ingest(lib, homeDir, Request{
		Filename: "cell-biology.md",
		Data:     []byte("# Cells\r\n\r\nMitochondria  produce   ATP.\r\n"),
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if doc.Format != FormatMarkdown {
		t.Errorf("Format = %q, want markdown", doc.Format)
	}
	if doc.Title != "cell-biology" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.PageCount != 0 {
		t.Errorf("PageCount = %d for markdown", doc.PageCount)
	}

	text, err := lib.Text(doc.ID)
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	want := "# Cells\n\nMitochondria produce ATP."
	if text != want {
		t.Errorf("Text() = %q, want %q", text, want)
	}

	// Files on disk
	if _, err := os.Stat(homeDir.OriginalPath(doc.ID, ".md")); err != nil {
		t.Errorf("original file missing: %v", err)
	}
	if _, err := os.Stat(homeDir.DocumentMetaPath(doc.ID)); err != nil {
		t.Errorf("metadata file missing: %v", err)
	}
}

func TestIngestRejectsBadInput(t *testing.T) {
	homeDir := testHome(t)
	lib, err := NewLibrary(homeDir)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}

	if _, err := Ingest(lib, homeDir, Request{Filename: "notes.md"}); err == nil {
		t.Error("empty upload should fail")
	}
	if _, err := Ingest(lib, homeDir, Request{Filename: "photo.jpg", Data: []byte("x")}); err == nil {
		t.Error("unsupported format should fail")
	}
	if _, err := Ingest(lib, homeDir, Request{Filename: "blank.md", Data: []byte("  \n\x00\n  ")}); err == nil {
		t.Error("document with no text should fail")
	}
}

func TestIngestPDFFixture(t *testing.T) {
	fixture := filepath.Join("testdata", "sample.pdf")
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Skipf("fixture %s not available: %v", fixture, err)
	}

	homeDir := testHome(t)
	lib, err := NewLibrary(homeDir)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}

	doc, err := Ingest(lib, homeDir, Request{Filename: "sample.pdf", Data: data})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if doc.Format != FormatPDF {
		t.Errorf("Format = %q, want pdf", doc.Format)
	}
	if doc.PageCount < 1 {
		t.Errorf("PageCount = %d, want >= 1", doc.PageCount)
	}
	if doc.CharCount == 0 {
		t.Error("no text extracted from fixture")
	}
}

func TestLibraryListAndDelete(t *testing.T) {
	homeDir := testHome(t)
	lib, err := NewLibrary(homeDir)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}

	first, err := Ingest(lib, homeDir, Request{Filename: "a.md", Data: []byte("alpha content")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	second, err := Ingest(lib, homeDir, Request{Filename: "b.md", Data: []byte("beta content")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if lib.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", lib.Count())
	}
	docs := lib.List()
	if len(docs) != 2 {
		t.Fatalf("List() len = %d, want 2", len(docs))
	}

	if err := lib.Delete(first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := lib.Get(first.ID); err == nil {
		t.Error("Get() should fail after delete")
	}
	if _, err := os.Stat(homeDir.DocumentDir(first.ID)); !os.IsNotExist(err) {
		t.Error("document files should be removed")
	}
	if _, err := lib.Get(second.ID); err != nil {
		t.Errorf("unrelated document affected: %v", err)
	}

	if err := lib.Delete(first.ID); err == nil {
		t.Error("double delete should fail")
	}
}

func TestLibraryReloadsFromDisk(t *testing.T) {
	homeDir := testHome(t)
	lib, err := NewLibrary(homeDir)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	doc, err := Ingest(lib, homeDir, Request{Filename: "persist.md", Data: []byte("survives restarts")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	// Fresh library over the same home dir sees the document.
	reloaded, err := NewLibrary(homeDir)
	if err != nil {
		t.Fatalf("NewLibrary() reload error = %v", err)
	}
	got, err := reloaded.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get() after reload error = %v", err)
	}
	if got.Title != "persist" {
		t.Errorf("Title = %q after reload", got.Title)
	}
	text, err := reloaded.Text(doc.ID)
	if err != nil {
		t.Fatalf("Text() after reload error = %v", err)
	}
	if text != "survives restarts" {
		t.Errorf("Text() = %q after reload", text)
	}
}
