package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relayr/go-relayr/internal/middleware"
	"github.com/relayr/go-relayr/observability"
)

func TestTLSConfig(t *testing.T) {
	t.Parallel()

	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	transport := middleware.TLSConfig(config)(http.DefaultTransport)

	// Verify it's an HTTP transport with TLS config
	httpTransport, ok := transport.(*http.Transport)
	if !ok {
		t.Fatal("Transport is not *http.Transport")
	}

	if httpTransport.TLSClientConfig == nil {
		t.Fatal("TLSClientConfig is nil")
	}

	if httpTransport.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %d, want %d", httpTransport.TLSClientConfig.MinVersion, tls.VersionTLS12)
	}
}

func TestInsecureSkipVerify(t *testing.T) {
	t.Parallel()

	config := middleware.InsecureSkipVerify()

	if config == nil {
		t.Fatal("InsecureSkipVerify() returned nil")
	}

	if !config.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be true")
	}
}

func TestObservability(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := observability.NoopLogger()
	metrics := observability.NoopMetricsRecorder()

	transport := middleware.Observability(logger, metrics)(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestObservabilityWithNilParams(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Should use no-op implementations
	transport := middleware.Observability(nil, nil)(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	defer resp.Body.Close()
}
