package relayr

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"

	"github.com/relayr/go-relayr/internal/httpclient"
	"github.com/relayr/go-relayr/internal/middleware"
	"github.com/relayr/go-relayr/internal/ratelimit"
	"github.com/relayr/go-relayr/observability"
)

const (
	// DefaultBaseURL is the production relayr API host.
	DefaultBaseURL = "https://api.relayr.io"

	// Version is the library version reported in the user-agent.
	Version = "1.0.0"
)

func defaultUserAgent() string {
	return fmt.Sprintf("go-relayr/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// ClientConfig holds configuration for the relayr API client.
type ClientConfig struct {
	// Token is the OAuth token authorizing requests. It may be empty;
	// public endpoints work anonymously.
	Token string

	// BaseURL is the API host (defaults to https://api.relayr.io).
	BaseURL string

	// UserAgent overrides the default user-agent string.
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *http.Client

	// Timeout sets an HTTP client timeout. Zero means no timeout is
	// imposed; long polls stay open.
	Timeout time.Duration

	// RateLimitPerMinute caps outgoing requests when set. Zero disables
	// client-side rate limiting.
	RateLimitPerMinute int

	// TLS customizes the TLS configuration, e.g. for self-hosted
	// endpoints with private certificates (optional).
	TLS *tls.Config

	// DebugMode emits a warning whenever a success response carries a
	// body that is not valid JSON and is degraded to a nil value.
	DebugMode bool

	// LogCalls records every call as a replayable curl command through
	// the logger.
	LogCalls bool

	// Logger for observability (optional, noop if nil).
	Logger observability.Logger

	// Metrics recorder for observability (optional, noop if nil).
	Metrics observability.MetricsRecorder
}

// Client is a relayr API client. It is the factory for resource
// proxies, which all share the client's single transport.
type Client struct {
	api *API
}

// New creates a client with default settings. The token may be empty
// for anonymous access to the public endpoints.
func New(token string) (*Client, error) {
	return NewWithConfig(&ClientConfig{Token: token})
}

// NewWithConfig creates a client with custom configuration.
func NewWithConfig(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	// Middleware order, outside in: observability first, then the
	// optional rate limiter. There is no retry layer; failures surface
	// exactly once.
	mw := []httpclient.Middleware{
		middleware.Observability(logger, metrics),
	}
	if cfg.RateLimitPerMinute > 0 {
		mw = append(mw, middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: ratelimit.NewRateLimiter(cfg.RateLimitPerMinute),
			Logger:  logger,
			Metrics: metrics,
		}))
	}
	if cfg.TLS != nil {
		mw = append(mw, middleware.TLSConfig(cfg.TLS))
	}

	opts := []httpclient.Option{httpclient.WithMiddleware(mw...)}
	if cfg.HTTPClient != nil {
		opts = append(opts, httpclient.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}

	api := &API{
		host:      strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		token:     cfg.Token,
		http:      httpclient.New(opts...),
		logger:    logger,
		debug:     cfg.DebugMode,
		logCalls:  cfg.LogCalls,
	}
	return &Client{api: api}, nil
}

// envConfig mirrors the RELAYR_* environment variables.
type envConfig struct {
	Token    string `env:"RELAYR_TOKEN,default="`
	BaseURL  string `env:"RELAYR_HOST,default="`
	Debug    bool   `env:"RELAYR_DEBUG,default=false"`
	LogCalls bool   `env:"RELAYR_LOG,default=false"`
}

// NewFromEnv creates a client configured from the environment:
// RELAYR_TOKEN, RELAYR_HOST, RELAYR_DEBUG and RELAYR_LOG.
func NewFromEnv() (*Client, error) {
	var env envConfig
	if err := envdecode.Decode(&env); err != nil {
		return nil, errors.Wrap(err, "decode environment")
	}
	return NewWithConfig(&ClientConfig{
		Token:     env.Token,
		BaseURL:   env.BaseURL,
		DebugMode: env.Debug,
		LogCalls:  env.LogCalls,
	})
}

// API exposes the endpoint-level interface backing the proxies.
func (c *Client) API() *API {
	return c.api
}

// ...........................................................................
// Proxy constructors. Each proxy starts with just its ID and is
// populated by an explicit hydrate; two proxies for the same ID are
// independent snapshots.
// ...........................................................................

// User returns a proxy for the user with the given ID.
func (c *Client) User(id string) *User {
	return &User{ID: id, client: c}
}

// Publisher returns a proxy for the publisher with the given ID.
func (c *Client) Publisher(id string) *Publisher {
	return &Publisher{ID: id, client: c}
}

// App returns a proxy for the app with the given ID.
func (c *Client) App(id string) *App {
	return &App{ID: id, client: c}
}

// Device returns a proxy for the device with the given ID.
func (c *Client) Device(id string) *Device {
	return &Device{ID: id, client: c}
}

// DeviceModel returns a proxy for the device model with the given ID.
func (c *Client) DeviceModel(id string) *DeviceModel {
	return &DeviceModel{ID: id, client: c}
}

// Transmitter returns a proxy for the transmitter with the given ID.
func (c *Client) Transmitter(id string) *Transmitter {
	return &Transmitter{ID: id, client: c}
}

// ...........................................................................
// Top-level calls
// ...........................................................................

// ServerStatus checks the API server status, e.g. {"database": "ok"}.
func (c *Client) ServerStatus(ctx context.Context) (map[string]any, error) {
	raw, err := c.api.GetServerStatus(ctx)
	if err != nil {
		return nil, err
	}
	var status map[string]any
	if err := decodeInto("status", raw, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// ValidateEmail reports whether a user with the given email address
// exists.
func (c *Client) ValidateEmail(ctx context.Context, email string) (bool, error) {
	raw, err := c.api.GetUsersValidate(ctx, email)
	if err != nil {
		return false, err
	}
	var result struct {
		Exists bool `json:"exists"`
	}
	if err := decodeInto("validate", raw, &result); err != nil {
		return false, err
	}
	return result.Exists, nil
}

// CurrentUser returns a hydrated proxy for the user behind the client's
// token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return c.User("").Hydrate(ctx)
}

// CurrentApp returns a proxy for the app behind the client's token,
// populated from its oauth app-info representation.
func (c *Client) CurrentApp(ctx context.Context) (*App, error) {
	raw, err := c.api.GetOAuth2AppInfo(ctx)
	if err != nil {
		return nil, err
	}
	app := c.App("")
	if err := app.merge(raw); err != nil {
		return nil, err
	}
	return app, nil
}

// TokenInfo describes an application/developer token.
type TokenInfo struct {
	Token      string `json:"token"`
	ExpiryDate string `json:"expiryDate"`
}

// AppDevToken returns the token for the given app and the requesting
// developer.
func (c *Client) AppDevToken(ctx context.Context, appID string) (*TokenInfo, error) {
	raw, err := c.api.GetOAuth2AppDevToken(ctx, appID)
	if err != nil {
		return nil, err
	}
	return decodeTokenInfo(raw)
}

// GenerateAppDevToken generates a new token for the given app and the
// requesting developer.
func (c *Client) GenerateAppDevToken(ctx context.Context, appID string) (*TokenInfo, error) {
	raw, err := c.api.PostOAuth2AppDevToken(ctx, appID)
	if err != nil {
		return nil, err
	}
	return decodeTokenInfo(raw)
}

// RevokeAppDevToken revokes the app/developer token.
func (c *Client) RevokeAppDevToken(ctx context.Context, appID string) error {
	_, err := c.api.DeleteOAuth2AppDevToken(ctx, appID)
	return err
}

func decodeTokenInfo(raw json.RawMessage) (*TokenInfo, error) {
	var info TokenInfo
	if err := decodeInto("token", raw, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ExchangeAuthorizationCode exchanges an OAuth authorization code for a
// token payload.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (map[string]any, error) {
	raw, err := c.api.PostOAuth2Token(ctx, clientID, clientSecret, code, redirectURI)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := decodeInto("token", raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// PublicApps lists all applications. No credentials needed.
func (c *Client) PublicApps(ctx context.Context) ([]AppSummary, error) {
	raw, err := c.api.GetPublicApps(ctx)
	if err != nil {
		return nil, err
	}
	var apps []AppSummary
	if len(raw) > 0 {
		if err := decodeInto("apps", raw, &apps); err != nil {
			return nil, err
		}
	}
	return apps, nil
}

// PublicPublishers lists all publishers as proxies populated from their
// listing entries. No credentials needed.
func (c *Client) PublicPublishers(ctx context.Context) ([]*Publisher, error) {
	raw, err := c.api.GetPublicPublishers(ctx)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if len(raw) > 0 {
		if err := decodeInto("publishers", raw, &entries); err != nil {
			return nil, err
		}
	}
	publishers := make([]*Publisher, 0, len(entries))
	for _, entry := range entries {
		p := c.Publisher("")
		if err := p.merge(entry); err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}
	return publishers, nil
}

// PublicDevices lists all public devices in their raw summary form,
// optionally filtered by meaning. No credentials needed.
func (c *Client) PublicDevices(ctx context.Context, meaning string) ([]map[string]any, error) {
	raw, err := c.api.GetPublicDevices(ctx, meaning)
	if err != nil {
		return nil, err
	}
	var devices []map[string]any
	if len(raw) > 0 {
		if err := decodeInto("devices", raw, &devices); err != nil {
			return nil, err
		}
	}
	return devices, nil
}

// DeviceModels lists all device models as proxies populated from their
// listing entries. No credentials needed.
func (c *Client) DeviceModels(ctx context.Context) ([]*DeviceModel, error) {
	raw, err := c.api.GetPublicDeviceModels(ctx)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if len(raw) > 0 {
		if err := decodeInto("device models", raw, &entries); err != nil {
			return nil, err
		}
	}
	models := make([]*DeviceModel, 0, len(entries))
	for _, entry := range entries {
		m := c.DeviceModel("")
		if err := m.merge(entry); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// Meaning is one entry of the device model meaning catalogue.
type Meaning struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DeviceModelMeanings lists all device model meanings. No credentials
// needed.
func (c *Client) DeviceModelMeanings(ctx context.Context) ([]Meaning, error) {
	raw, err := c.api.GetPublicDeviceModelMeanings(ctx)
	if err != nil {
		return nil, err
	}
	var meanings []Meaning
	if len(raw) > 0 {
		if err := decodeInto("meanings", raw, &meanings); err != nil {
			return nil, err
		}
	}
	return meanings, nil
}

// ...........................................................................
// Registration
// ...........................................................................

// RegisterPublisher registers a new publisher owned by the given user
// and returns its proxy, populated from the server's response.
func (c *Client) RegisterPublisher(ctx context.Context, userID, name string) (*Publisher, error) {
	raw, err := c.api.PostPublisher(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	p := c.Publisher("")
	if err := p.merge(raw); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterApp registers a new app and returns its proxy, populated from
// the server's response.
func (c *Client) RegisterApp(ctx context.Context, name, publisherID, redirectURI, description string) (*App, error) {
	raw, err := c.api.PostApp(ctx, name, publisherID, redirectURI, description)
	if err != nil {
		return nil, err
	}
	app := c.App("")
	if err := app.merge(raw); err != nil {
		return nil, err
	}
	return app, nil
}

// RegisterDevice registers a new device and returns its proxy,
// populated from the server's response.
func (c *Client) RegisterDevice(ctx context.Context, name, ownerID, modelID, firmwareVersion string) (*Device, error) {
	raw, err := c.api.PostDevice(ctx, name, ownerID, modelID, firmwareVersion)
	if err != nil {
		return nil, err
	}
	d := c.Device("")
	if err := d.merge(ctx, raw); err != nil {
		return nil, err
	}
	return d, nil
}

// RegisterTransmitter registers a transmitter under its hardware ID and
// returns its proxy, populated from the server's response.
func (c *Client) RegisterTransmitter(ctx context.Context, transmitterID string, ownerID, name *string) (*Transmitter, error) {
	fields := make(map[string]any)
	if ownerID != nil {
		fields["owner"] = *ownerID
	}
	if name != nil {
		fields["name"] = *name
	}
	raw, err := c.api.PostTransmitter(ctx, transmitterID, fields)
	if err != nil {
		return nil, err
	}
	t := c.Transmitter(transmitterID)
	if err := t.merge(raw); err != nil {
		return nil, err
	}
	return t, nil
}
