// Package testutil provides common testing utilities and helpers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewMockServer creates a test HTTP server with a predefined response.
// It validates the request path and the Bearer token header, then returns
// the specified response.
func NewMockServer(t *testing.T, expectedPath, token, responseBody string, statusCode int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Validate request path
		assert.Equal(t, expectedPath, r.URL.Path, "Request path should match expected")

		// Validate token header if provided
		if token != "" {
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"), "Authorization header should carry the token")
		}

		// Write response
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(responseBody))
		require.NoError(t, err, "Failed to write response body")
	}))
}

// NewMockServerWithHandler creates a test HTTP server with custom handler.
// Use this for more complex test scenarios that need custom request handling.
func NewMockServerWithHandler(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

// NewMockServerMulti creates a test HTTP server with multiple path handlers.
// The handlers map keys are URL paths, values are handler functions.
func NewMockServerMulti(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
}

// RequestLog records the requests a mock server received, in order.
// Useful for asserting how many calls a lazy sequence has issued so far.
type RequestLog struct {
	mu       sync.Mutex
	requests []string
}

// Add records one "METHOD /path" entry.
func (l *RequestLog) Add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, r.Method+" "+r.URL.Path)
}

// Requests returns a copy of the recorded entries.
func (l *RequestLog) Requests() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.requests))
	copy(out, l.requests)
	return out
}

// Len returns the number of recorded requests.
func (l *RequestLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// NewRecordingServer wraps NewMockServerMulti with a RequestLog that
// records every request before dispatching to the path handlers.
func NewRecordingServer(t *testing.T, handlers map[string]http.HandlerFunc) (*httptest.Server, *RequestLog) {
	t.Helper()

	log := &RequestLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Add(r)
		handler, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
	return server, log
}

// JSONResponse returns a handler that writes the given JSON body with the
// given status code.
func JSONResponse(t *testing.T, statusCode int, body string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(body))
		require.NoError(t, err, "Failed to write response body")
	}
}
