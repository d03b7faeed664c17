package ubeu

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/ubeu-platform/ubeu-go/internal/auth"
	"github.com/ubeu-platform/ubeu-go/internal/events"
	"github.com/ubeu-platform/ubeu-go/internal/logging"
	"github.com/ubeu-platform/ubeu-go/internal/metrics"
	"github.com/ubeu-platform/ubeu-go/internal/session"
	"github.com/ubeu-platform/ubeu-go/internal/trace"
	"github.com/ubeu-platform/ubeu-go/internal/transport"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

const (
	// DefaultBaseURL is the default UBeU API base URL
	DefaultBaseURL = types.DefaultBaseURL

	// DefaultTimeout bounds a single attempt
	DefaultTimeout = types.DefaultTimeout

	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = types.DefaultMaxRetries

	// Version is the SDK version
	Version = types.Version

	// UserAgent is the user agent string
	UserAgent = types.UserAgent

	apiKeyHeader = "X-API-Key"
	healthPath   = "/health"
)

// SessionPersister stores the session between process runs
type SessionPersister = session.Persister

// Client is the main UBeU platform client
type Client struct {
	// Service interfaces
	Identity    IdentityService
	Credentials CredentialService
	Issuers     IssuerService
	Enterprise  EnterpriseService
	OpenID4     OpenID4Service
	Wallet      WalletService

	// Internal fields
	transport Transport
	options   *ClientOptions
	persister SessionPersister
	auth      *auth.Service
	sessions  *session.Store
	events    *events.Bus
	tracer    *trace.Tracer
	logger    Logger
	ownLogger *logrus.Logger

	initialized  atomic.Bool
	lastActivity atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient supplies the round tripper used for every attempt
	HTTPClient *http.Client

	// Timeout bounds a single attempt
	Timeout time.Duration

	// RetryConfig configures retry behavior. Nil uses DefaultMaxRetries with a
	// one second base delay.
	RetryConfig *RetryConfig

	// Debug enables per-attempt debug logging
	Debug bool

	// Environment is reported in status and Sentry events
	Environment string

	// APIKey is sent as X-API-Key on every request
	APIKey string

	// Headers are added to every request
	Headers map[string]string

	// Token provides direct authentication token
	Token string

	// SessionFile path for session persistence
	SessionFile string

	// SessionPersister overrides SessionFile, e.g. a Redis persister.
	// Client.Close closes it when it implements io.Closer.
	SessionPersister SessionPersister

	// Logger receives client logs. Nil uses an SDK-owned logrus logger that
	// logs warnings, or everything when Debug is set.
	Logger Logger

	// RateLimiter is waited on before every attempt
	RateLimiter RateLimiter

	// Hooks for observability
	Hooks *Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions

	// MetricsRegisterer enables Prometheus metrics when set
	MetricsRegisterer prometheus.Registerer

	// QueueLimit bounds the in-flight request registry
	QueueLimit int
}

// NewClient creates a new UBeU client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	logger := opts.Logger
	var ownLogger *logrus.Logger
	if logger == nil {
		ownLogger = logrus.New()
		ownLogger.SetLevel(levelFor(opts.Debug))
		logger = logging.NewLogrus(ownLogger)
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = opts.Environment
		}
		if sentryOpts.Release == "" {
			sentryOpts.Release = UserAgent
		}

		// Log error but don't fail client creation
		if err := sentry.Init(sentryOpts); err != nil {
			logger.Error("Failed to initialize Sentry", "error", err)
		}
	}

	// Set defaults
	cfg := types.Config{
		BaseURL:     opts.BaseURL,
		Timeout:     opts.Timeout,
		MaxRetries:  DefaultMaxRetries,
		Debug:       opts.Debug,
		Environment: opts.Environment,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Environment == "" {
		cfg.Environment = EnvironmentDevelopment
	}
	if opts.RetryConfig != nil {
		cfg.MaxRetries = opts.RetryConfig.MaxRetries
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if opts.APIKey != "" {
		headers[apiKeyHeader] = opts.APIKey
	}

	bus := events.NewBus(logger)
	store := session.NewStore()
	tracer := trace.NewTracer(opts.QueueLimit)

	var collector *metrics.Collector
	if opts.MetricsRegisterer != nil {
		collector = metrics.New(opts.MetricsRegisterer)
	}

	// Create transport using the internal package
	trans := transport.NewRESTTransport(&transport.Options{
		Config:      cfg,
		HTTPClient:  opts.HTTPClient,
		Headers:     headers,
		RetryConfig: opts.RetryConfig,
		Sessions:    store,
		Events:      bus,
		Tracer:      tracer,
		Metrics:     collector,
		RateLimiter: opts.RateLimiter,
		Logger:      logger,
		Hooks:       opts.Hooks,
	})

	persister := opts.SessionPersister
	if persister == nil && opts.SessionFile != "" {
		persister = session.NewFilePersister(opts.SessionFile)
	}

	c := &Client{
		transport: trans,
		options:   opts,
		persister: persister,
		auth:      auth.NewService(trans, store, persister, bus, logger),
		sessions:  store,
		events:    bus,
		tracer:    tracer,
		logger:    logger,
		ownLogger: ownLogger,
	}

	// Initialize services
	c.initServices()

	if opts.Token != "" {
		c.auth.SetToken(context.Background(), opts.Token)
	} else if persister != nil {
		if _, err := c.auth.Restore(context.Background()); err != nil {
			logger.Warn("Failed to load session", "error", err)
		}
	}

	return c, nil
}

// NewClientWithToken creates a client with an auth token
func NewClientWithToken(token string) (*Client, error) {
	return NewClient(&ClientOptions{
		Token: token,
	})
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.Identity = &identityService{client: c}
	c.Credentials = &credentialService{client: c}
	c.Issuers = &issuerService{client: c}
	c.Enterprise = &enterpriseService{client: c}
	c.OpenID4 = &openID4Service{client: c}
	c.Wallet = &walletService{client: c}
}

// Initialize checks that the platform is reachable and marks the client ready
func (c *Client) Initialize(ctx context.Context) error {
	if err := c.execute(ctx, &transport.Request{Method: http.MethodGet, Path: healthPath}, nil); err != nil {
		return types.NewError(CodeInitializationFailed, "Failed to initialize UBeU client", err)
	}

	c.initialized.Store(true)
	c.emit(events.Initialized, nil)
	return nil
}

// IsInitialized reports whether Initialize succeeded
func (c *Client) IsInitialized() bool {
	return c.initialized.Load()
}

// GetConfig returns a snapshot of the current configuration
func (c *Client) GetConfig() Config {
	return c.transport.Config()
}

// UpdateConfig applies opts atomically. An invalid result is rejected and
// the previous configuration stays in place.
func (c *Client) UpdateConfig(opts ...ConfigOption) error {
	err := c.transport.UpdateConfig(func(cfg *types.Config) {
		for _, opt := range opts {
			opt(cfg)
		}
	})
	if err != nil {
		return err
	}

	if c.ownLogger != nil {
		c.ownLogger.SetLevel(levelFor(c.transport.Config().Debug))
	}
	return nil
}

// SetBaseURL points the client at another platform instance
func (c *Client) SetBaseURL(baseURL string) error {
	return c.UpdateConfig(WithBaseURL(baseURL))
}

// EnableDebug turns on debug logging
func (c *Client) EnableDebug() {
	_ = c.UpdateConfig(WithDebug(true))
}

// DisableDebug turns off debug logging
func (c *Client) DisableDebug() {
	_ = c.UpdateConfig(WithDebug(false))
}

// QueueSize returns the number of requests in flight
func (c *Client) QueueSize() int {
	if c.tracer == nil {
		return 0
	}
	return c.tracer.InFlight()
}

// ClearQueue empties the in-flight registry. Running requests are not cancelled.
func (c *Client) ClearQueue() {
	if c.tracer != nil {
		c.tracer.Clear()
	}
}

// Close flushes pending Sentry events and closes the session persister
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.options != nil && (c.options.SentryDSN != "" || c.options.SentryOptions != nil) {
			sentry.Flush(2 * time.Second)
		}
		if closer, ok := c.persister.(io.Closer); ok {
			c.closeErr = errors.Wrap(closer.Close(), "failed to close session persister")
		}
	})
	return c.closeErr
}

// Do dispatches an arbitrary request and decodes the body into result
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}, opts ...RequestOption) error {
	req := &transport.Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(req)
	}
	return c.execute(ctx, req, result)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, result, opts...)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, result, opts...)
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body, result interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, result, opts...)
}

// Patch performs a PATCH request
func (c *Client) Patch(ctx context.Context, path string, body, result interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, result, opts...)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, result interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, result, opts...)
}

// execute dispatches through the transport and records the activity time
func (c *Client) execute(ctx context.Context, req *transport.Request, result interface{}) error {
	c.lastActivity.Store(time.Now().UnixNano())
	return c.transport.Execute(ctx, req, result)
}

func (c *Client) emit(t events.Type, data interface{}) {
	if c.events != nil {
		c.events.Emit(t, data)
	}
}

// call dispatches req and unwraps the platform envelope
func call[T any](ctx context.Context, c *Client, req *transport.Request) (T, error) {
	var resp APIResponse[T]
	req.Envelope = true
	if err := c.execute(ctx, req, &resp); err != nil {
		var zero T
		return zero, err
	}
	return resp.Data, nil
}

// callPage dispatches req and returns the paginated envelope
func callPage[T any](ctx context.Context, c *Client, req *transport.Request) (*PaginatedResponse[T], error) {
	var resp PaginatedResponse[T]
	req.Envelope = true
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// annotate adds context to err unless it already is a typed dispatch error,
// which is returned verbatim
func annotate(err error, format string, args ...interface{}) error {
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return errors.Wrapf(err, format, args...)
}

func get(path string, query url.Values) *transport.Request {
	return &transport.Request{Method: http.MethodGet, Path: path, Query: query}
}

func post(path string, body interface{}) *transport.Request {
	return &transport.Request{Method: http.MethodPost, Path: path, Body: body}
}

func put(path string, body interface{}) *transport.Request {
	return &transport.Request{Method: http.MethodPut, Path: path, Body: body}
}

func del(path string, body interface{}) *transport.Request {
	return &transport.Request{Method: http.MethodDelete, Path: path, Body: body}
}

func checkConfig(cfg types.Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Wrapf(transport.ErrInvalidConfig, "base URL %q", cfg.BaseURL)
	}
	if cfg.MaxRetries < 0 {
		return errors.Wrapf(transport.ErrInvalidConfig, "max retries %d", cfg.MaxRetries)
	}
	return nil
}

func levelFor(debug bool) logrus.Level {
	if debug {
		return logrus.DebugLevel
	}
	return logrus.WarnLevel
}
