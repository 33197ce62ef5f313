package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeBackend records whether it was invoked and returns canned results.
type fakeBackend struct {
	invoked bool
	label   string
	score   float64
	err     error
}

func (f *fakeBackend) Classify(_ context.Context, _ string) (string, float64, error) {
	f.invoked = true
	return f.label, f.score, f.err
}

// TestGatewayClassify tests the availability and degradation contract.
func TestGatewayClassify(t *testing.T) {
	t.Parallel()

	t.Run("unavailable capability never invokes backend", func(t *testing.T) {
		t.Parallel()
		backend := &fakeBackend{label: "POSITIVE", score: 0.9}
		gw := New(backend, false, 0, nil)

		result := gw.Classify(context.Background(), "hello")

		if !result.Unavailable {
			t.Error("expected unavailable result")
		}
		if result.Reason != ReasonNotPresent {
			t.Errorf("expected reason %q, got %q", ReasonNotPresent, result.Reason)
		}
		if backend.invoked {
			t.Error("backend must not be invoked when capability is absent")
		}
	})

	t.Run("success returns label and score", func(t *testing.T) {
		t.Parallel()
		backend := &fakeBackend{label: "NEGATIVE", score: 0.87}
		gw := New(backend, true, 0, nil)

		result := gw.Classify(context.Background(), "suspicious text")

		if result.Unavailable {
			t.Fatalf("unexpected unavailable result: %+v", result)
		}
		if result.Label != "NEGATIVE" || result.Score != 0.87 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("backend failure degrades to unavailable with cause", func(t *testing.T) {
		t.Parallel()
		backend := &fakeBackend{err: errors.New("model load failed")}
		gw := New(backend, true, 0, nil)

		result := gw.Classify(context.Background(), "text")

		if !result.Unavailable {
			t.Fatal("expected unavailable result on backend failure")
		}
		if !strings.Contains(result.Reason, "model load failed") {
			t.Errorf("expected cause in reason, got %q", result.Reason)
		}
	})

	t.Run("nil backend treated as absent", func(t *testing.T) {
		t.Parallel()
		gw := New(nil, true, 0, nil)
		if result := gw.Classify(context.Background(), "x"); !result.Unavailable {
			t.Error("expected unavailable result with nil backend")
		}
	})
}

// TestHTTPBackend tests the chat-completions backend against a local server.
func TestHTTPBackend(t *testing.T) {
	t.Parallel()

	t.Run("parses structured reply", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("missing authorization header")
			}
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"label\":\"THREAT\",\"score\":0.93}"}}]}`))
		}))
		defer srv.Close()

		backend := NewHTTPBackend(srv.URL, "test-key", "test-model", time.Second)
		label, score, err := backend.Classify(context.Background(), "rm -rf /")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != "THREAT" || score != 0.93 {
			t.Errorf("unexpected result: %s %v", label, score)
		}
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			content := "```json\n{\"label\":\"BENIGN\",\"score\":0.5}\n```"
			reply := map[string]any{
				"choices": []any{
					map[string]any{"message": map[string]any{"content": content}},
				},
			}
			_ = json.NewEncoder(w).Encode(reply)
		}))
		defer srv.Close()

		backend := NewHTTPBackend(srv.URL, "", "m", time.Second)
		label, _, err := backend.Classify(context.Background(), "ls")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != "BENIGN" {
			t.Errorf("unexpected label: %q", label)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		backend := NewHTTPBackend(srv.URL, "", "m", time.Second)
		if _, _, err := backend.Classify(context.Background(), "x"); err == nil {
			t.Error("expected error for HTTP 503")
		}
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		backend := NewHTTPBackend(srv.URL, "", "m", time.Second)
		if _, _, err := backend.Classify(context.Background(), "x"); err == nil {
			t.Error("expected error for empty choices")
		}
	})
}

// TestParseLabel tests reply extraction edge cases.
func TestParseLabel(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty label", func(t *testing.T) {
		t.Parallel()
		if _, _, err := parseLabel(`{"label":"","score":0.1}`); err == nil {
			t.Error("expected error for empty label")
		}
	})

	t.Run("rejects prose", func(t *testing.T) {
		t.Parallel()
		if _, _, err := parseLabel("I think this is fine."); err == nil {
			t.Error("expected error for non-JSON reply")
		}
	})
}
