package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID_GeneratesUUID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if captured == "" {
		t.Fatal("expected request ID in context")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Errorf("expected valid UUID, got %q: %v", captured, err)
	}
	if got := w.Header().Get("X-Request-ID"); got != captured {
		t.Errorf("response header %q does not match context %q", got, captured)
	}
}

func TestRequestID_PropagatesExistingID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "existing-req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured != "existing-req-123" {
		t.Errorf("expected propagated ID, got %q", captured)
	}
	if got := w.Header().Get("X-Request-ID"); got != "existing-req-123" {
		t.Errorf("expected response header %q, got %q", "existing-req-123", got)
	}
}

func TestRequestID_UniqueIDs(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		id := w.Header().Get("X-Request-ID")
		if seen[id] {
			t.Fatalf("duplicate request ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
