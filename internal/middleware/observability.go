package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/relayr/go-relayr/observability"
)

// Observability returns a middleware that logs and records metrics for HTTP requests.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// Compute URL string once to avoid multiple allocations
	urlStr := req.URL.String()

	// Log request
	t.logger.Debug("http request started",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "url", Value: urlStr},
		observability.Field{Key: "path", Value: req.URL.Path},
	)

	// Make request
	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		// Log error
		t.logger.Error("http request failed",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "url", Value: urlStr},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)

		t.metrics.RecordError("http_request", "NetworkError")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	// Log response
	fields := []observability.Field{
		{Key: "method", Value: req.Method},
		{Key: "url", Value: urlStr},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: duration},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	// Record metrics with normalized path to avoid unbounded cardinality
	normalizedPath := normalizePath(req.URL.Path)
	t.metrics.RecordHTTPRequest(req.Method, normalizedPath, resp.StatusCode, duration)

	return resp, nil
}

var (
	// idPattern matches the resource IDs that appear in relayr paths:
	// UUIDs for most resources and 16+ hex digits for transmitter
	// hardware IDs. UUID first, it is the more specific form.
	idPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|[0-9a-fA-F]{16,}`)

	// normalizedPathCache caches normalized paths to avoid repeated regex
	// operations. Clients hit a limited set of endpoints, so the cache
	// stays small and nearly always hits.
	normalizedPathCache sync.Map
)

// normalizePath replaces dynamic path segments (resource IDs) with a
// placeholder to prevent unbounded cardinality in metrics.
//
// Examples:
//   - /devices/9b6b5bc4-.../apps → /devices/:id/apps
//   - /users/3f2c.../transmitters → /users/:id/transmitters
func normalizePath(path string) string {
	// Fast path: check cache
	if cached, ok := normalizedPathCache.Load(path); ok {
		//nolint:forcetypeassert // Cache only stores strings, type assertion is safe
		return cached.(string)
	}

	normalized := idPattern.ReplaceAllString(path, ":id")

	// Store in cache for future requests
	normalizedPathCache.Store(path, normalized)

	return normalized
}
