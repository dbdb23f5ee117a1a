// Package observability provides interfaces for logging and metrics
// collection in the go-relayr library.
//
// This package defines standard interfaces that allow users to integrate
// their own logging and metrics implementations with the relayr client.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := myCustomLogger{} // implements observability.Logger
//	client, err := relayr.NewWithConfig(&relayr.ClientConfig{
//		Token:  token,
//		Logger: logger,
//	})
//
// A ready-made adapter for logrus is provided:
//
//	client, err := relayr.NewWithConfig(&relayr.ClientConfig{
//		Token:  token,
//		Logger: observability.NewLogrusLogger(logrus.StandardLogger()),
//	})
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks API client metrics:
//
//	metrics := myMetricsRecorder{} // implements observability.MetricsRecorder
//	client, err := relayr.NewWithConfig(&relayr.ClientConfig{
//		Token:   token,
//		Metrics: metrics,
//	})
//
// Tracked metrics include HTTP request count, status codes and duration,
// rate limiting events and wait times, and error occurrences by type.
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, the client uses no-op
// implementations that discard all events. This ensures zero overhead
// when observability is not needed.
package observability
