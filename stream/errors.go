package stream

import "github.com/cockroachdb/errors"

var (
	// ErrConnectionFailed indicates the broker connection could not be
	// established within the connect timeout.
	ErrConnectionFailed = errors.New("stream: connection failed")

	// ErrSubscribeFailed indicates the channel subscription was not
	// acknowledged by the broker.
	ErrSubscribeFailed = errors.New("stream: subscribe failed")

	// ErrMissingChannel indicates credentials without a channel name.
	ErrMissingChannel = errors.New("stream: credentials carry no channel")

	// ErrNilHandler indicates Open was called without a handler.
	ErrNilHandler = errors.New("stream: handler is nil")

	// ErrInvalidQoS indicates a QoS level outside 0..2.
	ErrInvalidQoS = errors.New("stream: invalid QoS level")
)
