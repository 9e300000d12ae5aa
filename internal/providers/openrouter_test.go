package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func openRouterTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenRouterClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		DefaultModel: "test/model",
		RPS:          1000,
		MaxRetries:   3,
		RetryDelay:   time.Millisecond,
	})
	return srv, client
}

func chatCompletionBody(content string) string {
	resp := map[string]any{
		"id":    "gen-1",
		"model": "test/model",
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestOpenRouterChat_Success(t *testing.T) {
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(chatCompletionBody("hello")))
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !result.Success || result.Content != "hello" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TotalTokens != 15 {
		t.Fatalf("TotalTokens = %d, want 15", result.TotalTokens)
	}
}

func TestOpenRouterChat_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(chatCompletionBody("recovered")))
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Content != "recovered" {
		t.Fatalf("Content = %q", result.Content)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestOpenRouterChat_NonRetryableStatusFailsFast(t *testing.T) {
	var calls atomic.Int64
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad request"}}`))
	})

	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Chat() should fail on 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want no retries on 400", calls.Load())
	}
}

func TestOpenRouterChat_NonceInjectedOnRetry(t *testing.T) {
	var calls atomic.Int64
	var secondBody openRouterRequest
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		json.NewDecoder(r.Body).Decode(&secondBody)
		w.Write([]byte(chatCompletionBody("ok")))
	})

	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "original"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if len(secondBody.Messages) != 1 {
		t.Fatalf("messages = %d", len(secondBody.Messages))
	}
	if secondBody.Messages[0].Content == "original" {
		t.Fatal("retry should carry a nonce comment in the user message")
	}
}

func TestOpenRouterChat_StructuredOutputRecovered(t *testing.T) {
	// Fenced, prose-wrapped JSON must come back parsed.
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletionBody("Sure!\n```json\n{\"ok\":true}\n```")))
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages:       []Message{{Role: "user", Content: "hi"}},
		ResponseFormat: &ResponseFormat{Type: "json_schema"},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	var parsed map[string]bool
	if err := json.Unmarshal(result.ParsedJSON, &parsed); err != nil {
		t.Fatalf("ParsedJSON invalid: %v", err)
	}
	if !parsed["ok"] {
		t.Fatalf("ParsedJSON = %s", result.ParsedJSON)
	}
}

func TestOpenRouterChat_RetryableErrorBody(t *testing.T) {
	var calls atomic.Int64
	_, client := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"error":{"code":"overloaded","message":"try later"}}`))
			return
		}
		w.Write([]byte(chatCompletionBody("ok")))
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Content != "ok" {
		t.Fatalf("Content = %q", result.Content)
	}
}
