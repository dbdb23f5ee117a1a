package stream_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayr/go-relayr/stream"
)

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	handler := func(string, []byte) {}

	tests := []struct {
		name    string
		creds   stream.Credentials
		handler stream.Handler
		opts    []stream.Option
		wantErr error
	}{
		{
			name:    "nil handler",
			creds:   stream.Credentials{Channel: "dev:123"},
			handler: nil,
			wantErr: stream.ErrNilHandler,
		},
		{
			name:    "missing channel",
			creds:   stream.Credentials{AuthKey: "auth", SubscribeKey: "sub"},
			handler: handler,
			wantErr: stream.ErrMissingChannel,
		},
		{
			name:    "invalid qos",
			creds:   stream.Credentials{Channel: "dev:123"},
			handler: handler,
			opts:    []stream.Option{stream.WithQoS(3)},
			wantErr: stream.ErrInvalidQoS,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn, err := stream.Open(tt.creds, tt.handler, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, conn)
		})
	}
}

func TestOpenConnectTimeout(t *testing.T) {
	t.Parallel()

	// Nothing listens on this address; the connect attempt must fail
	// within the configured timeout.
	creds := stream.Credentials{
		Channel:      "dev:123",
		AuthKey:      "auth",
		SubscribeKey: "sub",
	}

	start := time.Now()
	conn, err := stream.Open(creds, func(string, []byte) {},
		stream.WithBroker("tcp://127.0.0.1:1"),
		stream.WithConnectTimeout(500*time.Millisecond),
	)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, stream.ErrConnectionFailed)
	assert.Nil(t, conn)
	assert.Less(t, elapsed, 5*time.Second, "connect should give up within the timeout")
}
