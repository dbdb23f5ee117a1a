package observability_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayr/go-relayr/observability"
)

func TestNoopLogger(t *testing.T) {
	t.Parallel()

	logger := observability.NoopLogger()

	// All methods should execute without panicking
	logger.Debug("test debug")
	logger.Info("test info")
	logger.Warn("test warn")
	logger.Error("test error")

	// With should return a logger
	newLogger := logger.With(observability.Field{Key: "key", Value: "value"})
	require.NotNil(t, newLogger)

	// With'd logger should also work
	newLogger.Info("test with logger")
}

func TestField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field observability.Field
		key   string
		value any
	}{
		{
			name:  "string value",
			field: observability.Field{Key: "name", Value: "test"},
			key:   "name",
			value: "test",
		},
		{
			name:  "int value",
			field: observability.Field{Key: "count", Value: 42},
			key:   "count",
			value: 42,
		},
		{
			name:  "nil value",
			field: observability.Field{Key: "null", Value: nil},
			key:   "null",
			value: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.key, tt.field.Key)
			assert.Equal(t, tt.value, tt.field.Value)
		})
	}
}

func TestLogrusLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})

	logger := observability.NewLogrusLogger(l)
	logger.Info("hello", observability.Field{Key: "device", Value: "abc"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"device":"abc"`)
}

func TestLogrusLoggerWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	logger := observability.NewLogrusLogger(l).
		With(observability.Field{Key: "component", Value: "transport"})
	logger.Warn("slow response")

	out := buf.String()
	assert.Contains(t, out, `"component":"transport"`)
	assert.Contains(t, out, `"msg":"slow response"`)
}

// BenchmarkNoopLogger measures the overhead of noop logger calls.
func BenchmarkNoopLogger(b *testing.B) {
	logger := observability.NoopLogger()

	b.Run("Info", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("test message")
		}
	})

	b.Run("InfoWithFields", func(b *testing.B) {
		fields := []observability.Field{
			{Key: "key1", Value: "value1"},
			{Key: "key2", Value: 42},
		}

		for i := 0; i < b.N; i++ {
			logger.Info("test message", fields...)
		}
	})

	b.Run("With", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.With(observability.Field{Key: "key", Value: "value"})
		}
	})
}
