package ai

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"aicorp_cli/pkg/config"
)

const testAPIKey = "sk-test-0123456789abcdef"

// recordedRequest is what the fake WebUI server saw.
type recordedRequest struct {
	Method  string
	Path    string
	Header  http.Header
	Body    []byte
	Decoded map[string]any
}

// fakeWebUI serves canned responses and records every request.
type fakeWebUI struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeWebUI(t *testing.T, handler http.HandlerFunc) *fakeWebUI {
	t.Helper()
	f := &fakeWebUI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body}
		if len(body) > 0 {
			_ = json.Unmarshal(body, &rec.Decoded)
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeWebUI) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeWebUI) config() config.Config {
	return config.Config{
		BaseURL:      f.URL,
		APIKey:       testAPIKey,
		DefaultModel: "default-model",
		SystemPrompt: "You are a test assistant.",
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func completionPayload(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "answered-model",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func newTestClient(t *testing.T, cfg config.Config, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	client, err := NewClient(cfg, opts...)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}
