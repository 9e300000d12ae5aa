// Package ingest handles document upload: PDF and Markdown files are
// validated, their text extracted and cleaned, and the result stored
// under the studydeck home directory.
package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studydeck/studydeck/internal/home"
)

// Format identifies a supported document type.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
)

// MaxUploadBytes caps the accepted document size.
const MaxUploadBytes = 50 << 20 // 50 MB

// Document is the stored metadata for an ingested document.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	Format    Format    `json:"format"`
	PageCount int       `json:"page_count,omitempty"` // PDFs only
	CharCount int       `json:"char_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Request contains the parameters for ingesting a document.
type Request struct {
	Filename string       // Original filename, used for format detection
	Data     []byte       // Raw file contents
	Title    string       // Optional, derived from filename if empty
	Logger   *slog.Logger // Optional logger for progress updates
}

// Ingest extracts and cleans text from an uploaded document, stores the
// original and the extracted text under the home directory, and records
// the document in the library.
func Ingest(lib *Library, homeDir *home.Dir, req Request) (*Document, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.Data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	if len(req.Data) > MaxUploadBytes {
		return nil, fmt.Errorf("upload too large: %d bytes (max %d)", len(req.Data), MaxUploadBytes)
	}

	format, err := DetectFormat(req.Filename)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = deriveTitle(req.Filename)
	}

	log.Info("starting ingest", "file", req.Filename, "format", format, "bytes", len(req.Data))

	var text string
	pageCount := 0
	switch format {
	case FormatPDF:
		text, pageCount, err = extractPDF(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract PDF text: %w", err)
		}
	case FormatMarkdown:
		text = string(req.Data)
	}

	text = CleanText(text)
	if text == "" {
		return nil, fmt.Errorf("no text extracted from %s", req.Filename)
	}

	doc := &Document{
		ID:        uuid.New().String(),
		Title:     title,
		Filename:  filepath.Base(req.Filename),
		Format:    format,
		PageCount: pageCount,
		CharCount: len(text),
		CreatedAt: time.Now().UTC(),
	}

	if err := lib.Add(doc, req.Data, text); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	log.Info("ingest complete", "doc_id", doc.ID, "title", doc.Title, "chars", doc.CharCount, "pages", doc.PageCount)
	return doc, nil
}

// DetectFormat maps a filename to a supported document format.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported file type: %s (want .pdf or .md)", filename)
	}
}

// Ext returns the canonical file extension for a format.
func (f Format) Ext() string {
	if f == FormatPDF {
		return ".pdf"
	}
	return ".md"
}

// deriveTitle extracts a title from a filename.
// e.g., "intro-to-biology.pdf" -> "intro-to-biology"
func deriveTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
