// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/agrisat/internal/logging"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	t.Parallel()

	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = logging.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	responseID := rec.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Fatalf("expected UUID request id, got %q: %v", responseID, err)
	}
	if captured != responseID {
		t.Errorf("context id %q does not match header %q", captured, responseID)
	}
	if rec.Header().Get(HeaderCorrelationID) == "" {
		t.Error("expected correlation id header")
	}
}

func TestRequestID_PreservesClientIDs(t *testing.T) {
	t.Parallel()

	var requestID, correlationID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = logging.RequestIDFromContext(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "edge-proxy-123")
	req.Header.Set(HeaderCorrelationID, "trace-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if requestID != "edge-proxy-123" {
		t.Errorf("request id = %q", requestID)
	}
	if correlationID != "trace-abc" {
		t.Errorf("correlation id = %q", correlationID)
	}
	if got := rec.Header().Get(HeaderRequestID); got != "edge-proxy-123" {
		t.Errorf("response header = %q", got)
	}
}

func TestRequestID_RejectsUnsafeIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{"too long", strings.Repeat("a", maxIDLength+1)},
		{"contains space", "abc def"},
		{"contains newline", "abc\ndef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header[HeaderRequestID] = []string{tt.id}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get(HeaderRequestID); got == tt.id {
				t.Errorf("unsafe id %q was echoed", tt.id)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	t.Parallel()

	handler := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		id := rec.Header().Get(HeaderRequestID)
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}
