package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studydeck/studydeck/internal/config"
	"github.com/studydeck/studydeck/internal/ingest"
	"github.com/studydeck/studydeck/internal/providers"
	"github.com/studydeck/studydeck/internal/quota"
	"github.com/studydeck/studydeck/internal/server/endpoints"
	"github.com/studydeck/studydeck/internal/studyset"
	"github.com/studydeck/studydeck/internal/testutil"
)

// newTestConfigManager writes a config file into dir and loads it.
func newTestConfigManager(t *testing.T, dir, content string) *config.Manager {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	mgr, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return mgr
}

const integrationConfig = `
llm_providers:
  mock:
    type: mock
    model: mock-model
    enabled: true
defaults:
  llm_provider: mock
  flashcard_count: 5
  quiz_count: 3
quota:
  backend: memory
  limit: 3
  window_hours: 24
`

const flashcardResponse = "```json\n" + `{"flashcards":[
  {"front":"What do mitochondria produce?","back":"ATP"},
  {"front":"Where does glycolysis happen?","back":"In the cytoplasm"}
]}` + "\n```"

// TestServerAPI drives the full document lifecycle over HTTP with a
// mock LLM provider.
func TestServerAPI(t *testing.T) {
	cfg := testutil.NewServerConfig(t)
	mgr := newTestConfigManager(t, cfg.DataDir, integrationConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	srv, err := New(Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		DataDir:       cfg.DataDir,
		ConfigManager: mgr,
		Logger:        cfg.Logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Replace the config-built mock with one that returns usable JSON.
	mock := providers.NewMockClient()
	mock.ResponseText = flashcardResponse
	srv.Registry().RegisterLLM("mock", mock)

	serverErr := make(chan error, 1)
	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	go func() {
		serverErr <- srv.Start(serverCtx)
	}()

	if err := testutil.WaitForServer(cfg.URL(), 30*time.Second); err != nil {
		t.Fatalf("server did not start: %v", err)
	}

	client := testutil.HTTPClient()
	var docID, setID string

	t.Run("upload_document", func(t *testing.T) {
		var doc ingest.Document
		status := uploadMarkdown(t, client, cfg.URL(), "cells.md", "# Cells\n\nMitochondria produce ATP.\n", &doc)
		if status != http.StatusCreated {
			t.Fatalf("upload status = %d, want %d", status, http.StatusCreated)
		}
		if doc.ID == "" {
			t.Fatal("uploaded document has no ID")
		}
		if doc.Format != ingest.FormatMarkdown {
			t.Errorf("doc.Format = %q, want %q", doc.Format, ingest.FormatMarkdown)
		}
		docID = doc.ID
	})

	t.Run("list_documents", func(t *testing.T) {
		var resp endpoints.DocumentListResponse
		getJSON(t, client, cfg.URL()+"/api/documents", &resp)
		if resp.Count != 1 {
			t.Fatalf("document count = %d, want 1", resp.Count)
		}
		if resp.Documents[0].ID != docID {
			t.Errorf("listed document ID = %q, want %q", resp.Documents[0].ID, docID)
		}
	})

	t.Run("status_counts_documents", func(t *testing.T) {
		status, err := testutil.GetStatus(cfg.URL())
		if err != nil {
			t.Fatalf("GetStatus() error = %v", err)
		}
		if status.Documents != 1 {
			t.Errorf("status.Documents = %d, want 1", status.Documents)
		}
		if status.Quota.Limit != 3 {
			t.Errorf("status.Quota.Limit = %d, want 3", status.Quota.Limit)
		}
	})

	t.Run("quota_starts_full", func(t *testing.T) {
		var qs quota.Status
		getJSON(t, client, cfg.URL()+"/api/quota", &qs)
		if qs.Used != 0 || qs.Remaining != 3 {
			t.Errorf("quota = %d used / %d remaining, want 0/3", qs.Used, qs.Remaining)
		}
	})

	t.Run("generate_flashcards", func(t *testing.T) {
		var set studyset.StudySet
		status := postJSON(t, client, cfg.URL()+"/api/generate/flashcards",
			endpoints.GenerateRequest{DocumentID: docID}, &set)
		if status != http.StatusCreated {
			t.Fatalf("generate status = %d, want %d", status, http.StatusCreated)
		}
		if set.Kind != studyset.KindFlashcards {
			t.Errorf("set.Kind = %q, want %q", set.Kind, studyset.KindFlashcards)
		}
		if len(set.Flashcards) != 2 {
			t.Fatalf("flashcard count = %d, want 2", len(set.Flashcards))
		}
		if set.Flashcards[0].Back != "ATP" {
			t.Errorf("first card back = %q, want %q", set.Flashcards[0].Back, "ATP")
		}
		setID = set.ID
	})

	t.Run("list_and_get_studysets", func(t *testing.T) {
		var resp endpoints.StudySetListResponse
		getJSON(t, client, cfg.URL()+"/api/studysets?document_id="+docID, &resp)
		if resp.Count != 1 {
			t.Fatalf("study set count = %d, want 1", resp.Count)
		}

		var set studyset.StudySet
		getJSON(t, client, cfg.URL()+"/api/studysets/"+setID, &set)
		if set.DocumentID != docID {
			t.Errorf("set.DocumentID = %q, want %q", set.DocumentID, docID)
		}
	})

	t.Run("unusable_output_returns_502", func(t *testing.T) {
		bad := providers.NewMockClient()
		bad.ResponseText = "I'm sorry, I can't produce flashcards for that."
		srv.Registry().RegisterLLM("mock", bad)

		var errResp endpoints.ErrorResponse
		status := postJSON(t, client, cfg.URL()+"/api/generate/flashcards",
			endpoints.GenerateRequest{DocumentID: docID}, &errResp)
		if status != http.StatusBadGateway {
			t.Fatalf("generate status = %d, want %d", status, http.StatusBadGateway)
		}
		if errResp.Error == "" {
			t.Error("502 response has no error message")
		}

		srv.Registry().RegisterLLM("mock", mock)
	})

	t.Run("quota_exhaustion_returns_429", func(t *testing.T) {
		// Two units consumed so far; the third succeeds, the fourth
		// must be rejected.
		var set studyset.StudySet
		if status := postJSON(t, client, cfg.URL()+"/api/generate/flashcards",
			endpoints.GenerateRequest{DocumentID: docID}, &set); status != http.StatusCreated {
			t.Fatalf("third generate status = %d, want %d", status, http.StatusCreated)
		}

		req, _ := http.NewRequest(http.MethodPost, cfg.URL()+"/api/generate/flashcards",
			bytes.NewReader(mustMarshal(t, endpoints.GenerateRequest{DocumentID: docID})))
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("fourth generate status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
		}
		if resp.Header.Get("Retry-After") == "" {
			t.Error("429 response has no Retry-After header")
		}
	})

	t.Run("generate_unknown_document_404", func(t *testing.T) {
		// Per-user budget is spent, so use a different caller.
		req, _ := http.NewRequest(http.MethodPost, cfg.URL()+"/api/generate/quiz",
			bytes.NewReader(mustMarshal(t, endpoints.GenerateRequest{DocumentID: "nope"})))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(quota.UserIDHeader, "someone-else")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("delete_studyset_and_document", func(t *testing.T) {
		deleteOK(t, client, cfg.URL()+"/api/studysets/"+setID)
		deleteOK(t, client, cfg.URL()+"/api/documents/"+docID)

		var resp endpoints.DocumentListResponse
		getJSON(t, client, cfg.URL()+"/api/documents", &resp)
		if resp.Count != 0 {
			t.Errorf("document count after delete = %d, want 0", resp.Count)
		}
	})

	serverCancel()
	if err := testutil.WaitForShutdown(serverErr, 15*time.Second); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
}

func uploadMarkdown(t *testing.T, client *http.Client, baseURL, filename, content string, result any) int {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/documents", &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			t.Fatalf("failed to decode upload response: %v", err)
		}
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, client *http.Client, url string, result any) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s status = %d: %s", url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func postJSON(t *testing.T, client *http.Client, url string, body, result any) int {
	t.Helper()

	resp, err := client.Post(url, "application/json", bytes.NewReader(mustMarshal(t, body)))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode
}

func deleteOK(t *testing.T, client *http.Client, url string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE %s status = %d, want %d", url, resp.StatusCode, http.StatusOK)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return data
}
