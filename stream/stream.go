package stream

import (
	"crypto/tls"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relayr/go-relayr/observability"
)

// Credentials are the channel credentials issued by a device
// subscription call. The REST API mints them; this package only
// consumes them.
type Credentials struct {
	AuthKey      string `json:"authKey"`
	CipherKey    string `json:"cipherKey"`
	Channel      string `json:"channel"`
	SubscribeKey string `json:"subscribeKey"`
}

// Handler receives one published reading. It is invoked on the broker
// client's goroutines; channel is the topic the payload arrived on.
type Handler func(channel string, payload []byte)

// Connection is an open push channel for one device's telemetry.
type Connection struct {
	client  pahomqtt.Client
	channel string
	logger  observability.Logger

	closeOnce sync.Once
}

// disconnectQuiesce is how long Close waits for in-flight work, in
// milliseconds.
const disconnectQuiesce = 250

// Open connects to the broker and subscribes handler to the channel
// named in creds. The returned Connection keeps receiving until Close.
func Open(creds Credentials, handler Handler, opts ...Option) (*Connection, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if creds.Channel == "" {
		return nil, ErrMissingChannel
	}

	o := buildOptions(opts)
	if o.qos > maxQoS {
		return nil, ErrInvalidQoS
	}

	clientOpts := pahomqtt.NewClientOptions()
	clientOpts.AddBroker(o.broker)
	clientOpts.SetClientID("go-relayr-" + uuid.NewString())
	clientOpts.SetCleanSession(true)
	clientOpts.SetConnectTimeout(o.connectTimeout)
	clientOpts.SetKeepAlive(defaultKeepAlive)

	// The subscription credentials double as broker credentials.
	if creds.SubscribeKey != "" {
		clientOpts.SetUsername(creds.SubscribeKey)
		clientOpts.SetPassword(creds.AuthKey)
	}

	if o.tlsConfig != nil {
		clientOpts.SetTLSConfig(o.tlsConfig)
	} else if strings.HasPrefix(o.broker, "ssl://") {
		clientOpts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	logger := o.logger
	clientOpts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("stream connection lost",
			observability.Field{Key: "channel", Value: creds.Channel},
			observability.Field{Key: "error", Value: err.Error()},
		)
	})

	client := pahomqtt.NewClient(clientOpts)

	token := client.Connect()
	if !token.WaitTimeout(o.connectTimeout) {
		return nil, errors.Wrapf(ErrConnectionFailed, "timeout after %v", o.connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, errors.WithSecondaryError(ErrConnectionFailed, err)
	}

	subToken := client.Subscribe(creds.Channel, o.qos, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !subToken.WaitTimeout(o.connectTimeout) {
		client.Disconnect(disconnectQuiesce)
		return nil, errors.Wrapf(ErrSubscribeFailed, "timeout after %v", o.connectTimeout)
	}
	if err := subToken.Error(); err != nil {
		client.Disconnect(disconnectQuiesce)
		return nil, errors.WithSecondaryError(ErrSubscribeFailed, err)
	}

	logger.Debug("stream opened",
		observability.Field{Key: "channel", Value: creds.Channel},
		observability.Field{Key: "broker", Value: o.broker},
	)

	return &Connection{
		client:  client,
		channel: creds.Channel,
		logger:  logger,
	}, nil
}

// Channel returns the subscribed channel name.
func (c *Connection) Channel() string {
	return c.channel
}

// Close unsubscribes and disconnects. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		if token := c.client.Unsubscribe(c.channel); !token.WaitTimeout(defaultConnectTimeout) {
			c.logger.Warn("stream unsubscribe timed out",
				observability.Field{Key: "channel", Value: c.channel},
			)
		}
		c.client.Disconnect(disconnectQuiesce)

		c.logger.Debug("stream closed",
			observability.Field{Key: "channel", Value: c.channel},
		)
	})
}
