package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/events"
	"github.com/ubeu-platform/ubeu-go/internal/metrics"
	"github.com/ubeu-platform/ubeu-go/internal/trace"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

const (
	requestIDHeader = "X-Request-ID"
	authHeaderKey   = "Authorization"
	contentType     = "application/json"
)

// ErrInvalidConfig is returned when a configuration update is rejected
var ErrInvalidConfig = errors.New("invalid configuration")

// SessionSource supplies the Authorization header for a dispatch
type SessionSource interface {
	AuthHeader() (string, bool)
}

// Emitter publishes lifecycle events
type Emitter interface {
	Emit(t events.Type, data interface{})
}

// RateLimiter throttles attempts
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Options for the REST transport
type Options struct {
	Config      types.Config
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Sessions    SessionSource
	Events      Emitter
	Tracer      *trace.Tracer
	Metrics     *metrics.Collector
	RateLimiter RateLimiter
	Logger      types.Logger
	Hooks       *types.Hooks
}

// RESTTransport dispatches requests with tracing, retries and failure reporting
type RESTTransport struct {
	mu     sync.RWMutex
	config types.Config

	roundTripper http.RoundTripper
	headers      map[string]string
	backoff      Backoff

	sessions SessionSource
	events   Emitter
	tracer   *trace.Tracer
	metrics  *metrics.Collector
	logger   types.Logger
	hooks    *types.Hooks
}

// NewRESTTransport creates a new REST transport
func NewRESTTransport(opts *Options) *RESTTransport {
	if opts == nil {
		opts = &Options{}
	}

	cfg := opts.Config
	if cfg.BaseURL == "" {
		cfg.BaseURL = types.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = types.DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Environment == "" {
		cfg.Environment = types.EnvironmentDevelopment
	}

	backoff := Backoff{Base: types.DefaultRetryWait}
	if opts.RetryConfig != nil {
		if opts.RetryConfig.RetryWait > 0 {
			backoff.Base = opts.RetryConfig.RetryWait
		}
		backoff.Max = opts.RetryConfig.MaxWait
	}

	var rt http.RoundTripper
	if opts.HTTPClient != nil && opts.HTTPClient.Transport != nil {
		rt = opts.HTTPClient.Transport
	} else {
		rt = cleanhttp.DefaultPooledTransport()
	}

	// Set default headers
	headers := map[string]string{
		"Accept":       contentType,
		"Content-Type": contentType,
		"User-Agent":   types.UserAgent,
	}

	// Merge custom headers
	for k, v := range opts.Headers {
		headers[k] = v
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.NewTracer(0)
	}

	return &RESTTransport{
		config:       cfg,
		roundTripper: &attemptTransport{next: rt, limiter: opts.RateLimiter},
		headers:      headers,
		backoff:      backoff,
		sessions:     opts.Sessions,
		events:       opts.Events,
		tracer:       tracer,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		hooks:        opts.Hooks,
	}
}

// Config returns a snapshot of the current configuration
func (t *RESTTransport) Config() types.Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config
}

// UpdateConfig applies fn to a copy of the configuration and installs it if
// valid. Dispatches already running keep the snapshot they started with.
func (t *RESTTransport) UpdateConfig(fn func(*types.Config)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.config
	fn(&next)

	if err := validateConfig(next); err != nil {
		return err
	}
	t.config = next
	return nil
}

// Tracer returns the request tracer
func (t *RESTTransport) Tracer() *trace.Tracer {
	return t.tracer
}

func validateConfig(cfg types.Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Wrapf(ErrInvalidConfig, "base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "timeout %s", cfg.Timeout)
	}
	if cfg.MaxRetries < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max retries %d", cfg.MaxRetries)
	}
	return nil
}

// Execute dispatches req and decodes a successful body into result. result
// may be nil, a *[]byte for the raw body, or any JSON target.
func (t *RESTTransport) Execute(ctx context.Context, req *Request, result interface{}) error {
	if err := req.Validate(); err != nil {
		return types.NewError(types.CodeInvalidRequest, "Invalid request", errors.Wrap(types.ErrInvalidRequest, err.Error()))
	}

	cfg := t.Config()
	span := t.tracer.Start(req.Method, req.Path)
	defer t.tracer.Finish(span)
	t.metrics.Started()

	policy := Policy{
		MaxRetries: req.retryBudget(cfg.MaxRetries),
		Backoff:    t.backoff,
	}

	httpReq, err := t.newRequest(ctx, cfg, req, span.TraceID)
	if err != nil {
		return t.fail(ctx, cfg, req, span, err)
	}

	resp, err := t.newRetryClient(cfg, policy, span).Do(httpReq)
	if err != nil {
		return t.fail(ctx, cfg, req, span, networkError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return t.fail(ctx, cfg, req, span, networkError(errors.Wrap(err, "failed to read response")))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return t.fail(ctx, cfg, req, span, handleHTTPError(resp.StatusCode, body))
	}

	if req.Envelope {
		if rejected := checkEnvelope(resp.StatusCode, body); rejected != nil {
			return t.fail(ctx, cfg, req, span, rejected)
		}
	}

	if err := decode(body, result); err != nil {
		return t.fail(ctx, cfg, req, span, err)
	}

	duration := span.Elapsed()
	t.metrics.Finished(req.Method, "", duration)
	if cfg.Debug && t.logger != nil {
		t.logger.Debug("Request completed",
			"trace_id", span.TraceID,
			"method", req.Method,
			"path", req.Path,
			"status", resp.StatusCode,
			"attempts", span.Attempts(),
			"duration", duration,
			"size", len(body),
		)
	}
	return nil
}

// newRequest builds the HTTP request shared by every attempt
func (t *RESTTransport) newRequest(ctx context.Context, cfg types.Config, req *Request, traceID string) (*retryablehttp.Request, error) {
	target, err := req.targetURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	var body interface{}
	switch {
	case req.RawBody != nil:
		body = req.RawBody
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request")
		}
		body = data
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	// Set headers
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	if req.RawBody != nil && req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	// Set auth header
	if t.sessions != nil {
		if header, ok := t.sessions.AuthHeader(); ok {
			httpReq.Header.Set(authHeaderKey, header)
		}
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set(requestIDHeader, traceID)

	return httpReq, nil
}

// newRetryClient wires the retry policy into a client used for one dispatch.
// CheckRetry produces the tagged decision and Backoff returns its delay.
func (t *RESTTransport) newRetryClient(cfg types.Config, policy Policy, span *trace.Span) *retryablehttp.Client {
	var pending Decision

	client := &retryablehttp.Client{
		HTTPClient: &http.Client{
			Transport: t.roundTripper,
			Timeout:   cfg.Timeout,
		},
		RetryMax:     policy.MaxRetries,
		RetryWaitMin: policy.Backoff.Base,
		RetryWaitMax: policy.Backoff.Max,

		RequestLogHook: func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			span.RecordAttempt()
			t.metrics.Attempt(span.Method)
			if t.hooks != nil && t.hooks.OnRequest != nil {
				t.hooks.OnRequest(req.Context(), req)
			}
			if cfg.Debug && t.logger != nil {
				t.logger.Debug("Sending request",
					"trace_id", span.TraceID,
					"method", span.Method,
					"path", span.Path,
					"attempt", attempt+1,
				)
			}
		},

		ResponseLogHook: func(_ retryablehttp.Logger, resp *http.Response) {
			span.RecordStatus(resp.StatusCode)
			if t.hooks != nil && t.hooks.OnResponse != nil {
				t.hooks.OnResponse(resp.Request.Context(), resp, span.Elapsed())
			}
			if cfg.Debug && t.logger != nil {
				t.logger.Debug("Received response",
					"trace_id", span.TraceID,
					"status", resp.StatusCode,
					"attempt", span.Attempts(),
				)
			}
		},

		CheckRetry: func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			pending = policy.Decide(ctx, span.Attempts()-1, resp, err)
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if pending.Outcome != OutcomeRetry {
				return false, nil
			}

			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			t.metrics.Retry(span.Method, status)
			if cfg.Debug && t.logger != nil {
				t.logger.Debug("Retrying request",
					"trace_id", span.TraceID,
					"status", status,
					"error", err,
					"attempt", span.Attempts(),
					"delay", pending.Delay,
				)
			}
			return true, nil
		},

		Backoff: func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
			return pending.Delay
		},

		ErrorHandler: func(resp *http.Response, err error, _ int) (*http.Response, error) {
			if err == nil {
				return resp, nil
			}
			if resp != nil {
				_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
				resp.Body.Close()
			}
			return nil, err
		},
	}

	if cfg.Debug && t.logger != nil {
		client.Logger = &retryLogger{logger: t.logger}
	}
	return client
}

// fail reports a terminal failure once per dispatch and returns the typed error
func (t *RESTTransport) fail(ctx context.Context, cfg types.Config, req *Request, span *trace.Span, cause error) error {
	typed := types.NewError(types.CodeRequestFailed, "Request failed", cause)
	typed.TraceID = span.TraceID

	var httpErr *types.HTTPError
	if errors.As(cause, &httpErr) {
		typed.StatusCode = httpErr.StatusCode
	}
	var rejected *types.RejectedError
	if errors.As(cause, &rejected) {
		typed.StatusCode = rejected.StatusCode
		if rejected.RequestID != "" {
			typed.Details = map[string]interface{}{"requestId": rejected.RequestID}
		}
	}

	duration := span.Elapsed()
	t.metrics.Finished(req.Method, causeLabel(cause), duration)

	if t.logger != nil && cfg.Debug {
		t.logger.Debug("Request failed",
			"trace_id", span.TraceID,
			"method", req.Method,
			"path", req.Path,
			"attempts", span.Attempts(),
			"duration", duration,
			"error", cause,
		)
	}

	if t.events != nil {
		t.events.Emit(events.Error, events.ErrorData{
			Method:  req.Method,
			Path:    req.Path,
			Message: cause.Error(),
			TraceID: span.TraceID,
		})
	}

	if t.hooks != nil && t.hooks.OnError != nil {
		t.hooks.OnError(ctx, typed)
	}

	t.capture(ctx, cfg, req, span, typed)
	return typed
}

// capture reports a terminal failure to Sentry
func (t *RESTTransport) capture(ctx context.Context, cfg types.Config, req *Request, span *trace.Span, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("trace_id", span.TraceID)
		scope.SetTag("http.method", req.Method)
		scope.SetTag("http.path", req.Path)
		scope.SetTag("environment", cfg.Environment)
		scope.SetContext("request", map[string]interface{}{
			"attempts":    span.Attempts(),
			"last_status": span.LastStatus(),
			"duration":    span.Elapsed().String(),
		})
		hub.CaptureException(err)
	})
}

// decode stores a successful body in result
func decode(body []byte, result interface{}) error {
	if result == nil {
		return nil
	}
	if raw, ok := result.(*[]byte); ok {
		*raw = body
		return nil
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

// attemptTransport waits on the rate limiter before each attempt
type attemptTransport struct {
	next    http.RoundTripper
	limiter RateLimiter
}

func (a *attemptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(req.Context()); err != nil {
			return nil, errors.Wrap(err, "rate limiter")
		}
	}
	return a.next.RoundTrip(req)
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
