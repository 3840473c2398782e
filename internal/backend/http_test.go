package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

// --- helpers ---

func newTestHTTP(t *testing.T, handler http.HandlerFunc) *HTTP {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTP(srv.URL, "test-key", zap.NewNop())
}

func completionHandler(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": text}},
			},
		})
	}
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var berr *Error
	if !errors.As(err, &berr) {
		t.Fatalf("want *Error, got %T: %v", err, err)
	}
	if berr.Kind != kind {
		t.Fatalf("Kind = %s, want %s", berr.Kind, kind)
	}
}

// --- happy path ---

func TestHTTP_Invoke(t *testing.T) {
	var gotAuth string
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		completionHandler("generated code")(w, r)
	})

	got, err := h.Invoke(context.Background(), "prompt", "gpt-4o", Options{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "generated code" {
		t.Fatalf("got %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

// --- failure classification ---

func TestHTTP_RateLimited(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := h.Invoke(context.Background(), "p", "gpt-4o", Options{})
	wantKind(t, err, KindRateLimited)
}

func TestHTTP_ServerErrorIsTransport(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})
	_, err := h.Invoke(context.Background(), "p", "gpt-4o", Options{})
	wantKind(t, err, KindTransport)
}

func TestHTTP_BadJSONIsInvalidResponse(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json at all")
	})
	_, err := h.Invoke(context.Background(), "p", "gpt-4o", Options{})
	wantKind(t, err, KindInvalidResponse)
}

func TestHTTP_NoChoicesIsInvalidResponse(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	})
	_, err := h.Invoke(context.Background(), "p", "gpt-4o", Options{})
	wantKind(t, err, KindInvalidResponse)
}

func TestHTTP_DeadlineIsTimeout(t *testing.T) {
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Invoke(ctx, "p", "gpt-4o", Options{})
	wantKind(t, err, KindTimeout)
}

// --- model family parameters ---

func TestHTTP_ReasoningModelBody(t *testing.T) {
	var body map[string]any
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		completionHandler("ok")(w, r)
	})

	temp := 0.7
	if _, err := h.Invoke(context.Background(), "p", "o4-mini", Options{Temperature: &temp}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	// o-series models take a fixed temperature and a renamed token cap.
	if got := body["temperature"]; got != float64(1) {
		t.Errorf("temperature = %v, want 1", got)
	}
	if _, ok := body["max_completion_tokens"]; !ok {
		t.Error("body missing max_completion_tokens")
	}
	if _, ok := body["max_tokens"]; ok {
		t.Error("body must not contain max_tokens for reasoning models")
	}
}

func TestHTTP_StandardModelBody(t *testing.T) {
	var body map[string]any
	h := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		completionHandler("ok")(w, r)
	})

	if _, err := h.Invoke(context.Background(), "p", "gpt-4o", Options{MaxTokens: 512}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if got := body["temperature"]; got != 0.2 {
		t.Errorf("temperature = %v, want 0.2", got)
	}
	if got := body["max_tokens"]; got != float64(512) {
		t.Errorf("max_tokens = %v, want 512", got)
	}
}

func TestIsReasoningModel(t *testing.T) {
	cases := map[string]bool{
		"o1":          true,
		"o3-mini":     true,
		"o4-mini":     true,
		"gpt-4o":      false,
		"gpt-4o-mini": false,
		"omega":       false,
		"o":           false,
		"":            false,
	}
	for model, want := range cases {
		if got := isReasoningModel(model); got != want {
			t.Errorf("isReasoningModel(%q) = %v, want %v", model, got, want)
		}
	}
}
