package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/relayr/go-relayr/observability"
)

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	Limiter *rate.Limiter
	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// RateLimit returns a middleware that applies client-side rate limiting
// to all outgoing requests. With a nil limiter requests pass through.
func RateLimit(cfg RateLimitConfig) func(http.RoundTripper) http.RoundTripper {
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &rateLimitTransport{
			next:    next,
			limiter: cfg.Limiter,
			logger:  cfg.Logger,
			metrics: cfg.Metrics,
		}
	}
}

type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter == nil {
		return t.next.RoundTrip(req)
	}

	if err := t.waitWithObservability(req.Context(), req.URL.Path); err != nil {
		return nil, err
	}

	return t.next.RoundTrip(req)
}

func (t *rateLimitTransport) waitWithObservability(ctx context.Context, path string) error {
	reservation := t.limiter.Reserve()
	if !reservation.OK() {
		return errors.New("rate limit reservation failed")
	}

	delay := reservation.Delay()
	if delay > 0 {
		t.logger.Debug("rate limit delay",
			observability.Field{Key: "delay", Value: delay},
			observability.Field{Key: "path", Value: path},
		)

		t.metrics.RecordRateLimit(path, delay)

		// Wait with context cancellation support
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			// Rate limit satisfied
		case <-ctx.Done():
			reservation.Cancel()
			return errors.Wrap(ctx.Err(), "context canceled during rate limit wait")
		}
	}

	return nil
}
