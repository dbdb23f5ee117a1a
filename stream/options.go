package stream

import (
	"crypto/tls"
	"time"

	"github.com/relayr/go-relayr/observability"
)

const (
	// DefaultBroker is the relayr cloud MQTT endpoint.
	DefaultBroker = "ssl://mqtt.relayr.io:8883"

	// defaultConnectTimeout is the maximum time to wait for the initial
	// connection and for the subscription acknowledgment.
	defaultConnectTimeout = 10 * time.Second

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2
)

type options struct {
	broker         string
	connectTimeout time.Duration
	qos            byte
	tlsConfig      *tls.Config
	logger         observability.Logger
}

// Option customizes how a stream connection is established.
type Option func(*options)

// WithBroker overrides the broker URL, e.g. for self-hosted endpoints
// or plain-TCP test brokers.
func WithBroker(url string) Option {
	return func(o *options) {
		if url != "" {
			o.broker = url
		}
	}
}

// WithConnectTimeout overrides the connect/subscribe timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithQoS sets the subscription QoS level (0, 1 or 2; default 0).
func WithQoS(qos byte) Option {
	return func(o *options) {
		o.qos = qos
	}
}

// WithTLSConfig sets a custom TLS configuration for the broker
// connection.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithLogger attaches a logger to the connection lifecycle events.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		broker:         DefaultBroker,
		connectTimeout: defaultConnectTimeout,
		logger:         observability.NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
