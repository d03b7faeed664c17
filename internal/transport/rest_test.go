package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubeu-platform/ubeu-go/internal/events"
	"github.com/ubeu-platform/ubeu-go/internal/metrics"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// recorder collects error events
type recorder struct {
	mu     sync.Mutex
	errors []events.ErrorData
}

func (r *recorder) subscribe(t *testing.T, bus *events.Bus) {
	t.Helper()
	_, err := bus.Subscribe(events.Error, func(evt events.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errors = append(r.errors, evt.Data.(events.ErrorData))
	})
	require.NoError(t, err)
}

func (r *recorder) all() []events.ErrorData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.ErrorData(nil), r.errors...)
}

type staticSession string

func (s staticSession) AuthHeader() (string, bool) {
	if s == "" {
		return "", false
	}
	return "Bearer " + string(s), true
}

func newTestTransport(t *testing.T, baseURL string, maxRetries int, mutate ...func(*Options)) (*RESTTransport, *recorder) {
	t.Helper()

	bus := events.NewBus(nil)
	rec := &recorder{}
	rec.subscribe(t, bus)

	opts := &Options{
		Config: types.Config{
			BaseURL:    baseURL,
			Timeout:    5 * time.Second,
			MaxRetries: maxRetries,
		},
		RetryConfig: &types.RetryConfig{RetryWait: time.Millisecond},
		Events:      bus,
	}
	for _, fn := range mutate {
		fn(opts)
	}
	return NewRESTTransport(opts), rec
}

func requireTypedError(t *testing.T, err error) *types.Error {
	t.Helper()
	var typed *types.Error
	require.True(t, errors.As(err, &typed), "expected *types.Error, got %T", err)
	return typed
}

func TestExecute_SuccessDecodesAndSetsHeaders(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		assert.Equal(t, "/api/v1/identity/did:ubeu:1", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("view"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"did:ubeu:1"}}`))
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 3, func(o *Options) {
		o.Sessions = staticSession("tok-123")
		o.Headers = map[string]string{"X-Client": "tests"}
	})

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := tr.Execute(context.Background(), &Request{
		Method: http.MethodGet,
		Path:   "/api/v1/identity/did:ubeu:1",
		Query:  map[string][]string{"view": {"full"}},
	}, &result)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "did:ubeu:1", result.Data.ID)
	assert.Equal(t, "Bearer tok-123", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
	assert.Equal(t, types.UserAgent, gotHeaders.Get("User-Agent"))
	assert.Equal(t, "tests", gotHeaders.Get("X-Client"))
	assert.NotEmpty(t, gotHeaders.Get("X-Request-ID"))
	assert.Empty(t, rec.all())
	assert.Equal(t, 0, tr.Tracer().InFlight())
}

func TestExecute_NoSessionOmitsAuthorization(t *testing.T) {
	var auth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	tr, _ := newTestTransport(t, server.URL, 0, func(o *Options) {
		o.Sessions = staticSession("")
	})

	require.NoError(t, tr.Execute(context.Background(), &Request{Method: http.MethodDelete, Path: "/x"}, nil))
	assert.Equal(t, "", auth.Load())
}

func TestExecute_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["name"])
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr, _ := newTestTransport(t, server.URL, 0)
	err := tr.Execute(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/api/v1/identity",
		Body:   map[string]string{"name": "alice"},
	}, nil)
	require.NoError(t, err)
}

func TestExecute_RawResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer server.Close()

	tr, _ := newTestTransport(t, server.URL, 0)

	var raw []byte
	require.NoError(t, tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/files/1"}, &raw))
	assert.Equal(t, "%PDF-1.7", string(raw))
}

func TestExecute_RetriesAreBounded(t *testing.T) {
	var hits atomic.Int32
	var mu sync.Mutex
	requestIDs := map[string]bool{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mu.Lock()
		requestIDs[r.Header.Get("X-Request-ID")] = true
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"maintenance"}`))
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 3)

	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/api/v1/wallet/health"}, nil)
	require.Error(t, err)

	assert.Equal(t, int32(4), hits.Load())

	typed := requireTypedError(t, err)
	assert.Equal(t, types.CodeRequestFailed, typed.Code)
	assert.Equal(t, http.StatusServiceUnavailable, typed.StatusCode)
	assert.ErrorIs(t, err, types.ErrServerError)
	assert.Contains(t, err.Error(), "maintenance")

	// One trace identifier across every attempt, the event and the error
	require.Len(t, requestIDs, 1)
	assert.True(t, requestIDs[typed.TraceID])

	emitted := rec.all()
	require.Len(t, emitted, 1)
	assert.Equal(t, typed.TraceID, emitted[0].TraceID)
	assert.Equal(t, http.MethodGet, emitted[0].Method)
	assert.Equal(t, "/api/v1/wallet/health", emitted[0].Path)
}

func TestExecute_NonRetryableStatusShortCircuits(t *testing.T) {
	statuses := []int{400, 401, 403, 404, 409}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(status)
			}))
			defer server.Close()

			tr, rec := newTestTransport(t, server.URL, 3)
			err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/missing"}, nil)

			require.Error(t, err)
			assert.Equal(t, int32(1), hits.Load())
			assert.Equal(t, status, requireTypedError(t, err).StatusCode)
			assert.Len(t, rec.all(), 1)
		})
	}
}

func TestExecute_RecoversAfterTransientFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 3)

	var result map[string]bool
	require.NoError(t, tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/flaky"}, &result))
	assert.True(t, result["ok"])
	assert.Equal(t, int32(3), hits.Load())
	assert.Empty(t, rec.all())
}

func TestExecute_PerRequestRetryOverride(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tr, _ := newTestTransport(t, server.URL, 3)

	zero := 0
	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/health", Retries: &zero}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())

	hits.Store(0)
	one := 1
	err = tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/health", Retries: &one}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestExecute_AttemptTimeoutIsRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 1, func(o *Options) {
		o.Config.Timeout = 50 * time.Millisecond
	})

	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/slow"}, nil)
	require.Error(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.ErrorIs(t, err, types.ErrTimeout)

	var netErr *types.NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Len(t, rec.all(), 1)
}

func TestExecute_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	var attempts atomic.Int32
	tr, rec := newTestTransport(t, baseURL, 2, func(o *Options) {
		o.Hooks = &types.Hooks{
			OnRequest: func(context.Context, *http.Request) { attempts.Add(1) },
		}
	})

	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/down"}, nil)
	require.Error(t, err)

	var netErr *types.NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Equal(t, int32(3), attempts.Load())
	assert.Zero(t, requireTypedError(t, err).StatusCode)
	assert.Len(t, rec.all(), 1)
}

func TestExecute_CanceledContextStopsRetrying(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr, _ := newTestTransport(t, server.URL, 5, func(o *Options) {
		o.RetryConfig = &types.RetryConfig{RetryWait: time.Hour}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tr.Execute(ctx, &Request{Method: http.MethodGet, Path: "/down"}, nil)
	require.Error(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), hits.Load())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecute_InvalidRequestIsNotDispatched(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 3)

	tests := []*Request{
		nil,
		{Method: "TRACE", Path: "/x"},
		{Method: http.MethodGet, Path: ""},
		{Method: http.MethodGet, Path: "relative"},
	}
	for _, req := range tests {
		err := tr.Execute(context.Background(), req, nil)
		require.Error(t, err)
		assert.Equal(t, types.CodeInvalidRequest, requireTypedError(t, err).Code)
		assert.ErrorIs(t, err, types.ErrInvalidRequest)
	}

	assert.Zero(t, hits.Load())
	assert.Empty(t, rec.all())
}

func TestExecute_DecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 0)

	var result map[string]interface{}
	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/html"}, &result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
	assert.Len(t, rec.all(), 1)
}

func TestExecute_EnvelopeRejectionFails(t *testing.T) {
	var sentID atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sentID.Store(r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"success":false,"error":"already revoked"}`))
	}))
	defer server.Close()

	collector := metrics.New(prometheus.NewRegistry())
	tr, rec := newTestTransport(t, server.URL, 3, func(o *Options) {
		o.Metrics = collector
	})

	var result map[string]interface{}
	err := tr.Execute(context.Background(), &Request{
		Method:   http.MethodPost,
		Path:     "/api/v1/credential/revoke",
		Envelope: true,
	}, &result)
	require.Error(t, err)

	typed := requireTypedError(t, err)
	assert.Equal(t, types.CodeRequestFailed, typed.Code)
	assert.Equal(t, http.StatusOK, typed.StatusCode)
	assert.Equal(t, sentID.Load(), typed.TraceID)
	assert.Nil(t, typed.Details)
	assert.Contains(t, err.Error(), "already revoked")

	var rejected *types.RejectedError
	require.True(t, errors.As(err, &rejected))

	errs := rec.all()
	require.Len(t, errs, 1)
	assert.Equal(t, typed.TraceID, errs[0].TraceID)
	assert.Equal(t, "/api/v1/credential/revoke", errs[0].Path)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Failures.WithLabelValues(http.MethodPost, "rejected")))
}

func TestExecute_EnvelopeRejectionKeepsServerRequestID(t *testing.T) {
	var sentID atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sentID.Store(r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"success":false,"message":"DID not found","requestId":"req-9"}`))
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 0)

	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/did", Envelope: true}, nil)
	typed := requireTypedError(t, err)
	assert.Equal(t, sentID.Load(), typed.TraceID)
	assert.NotEqual(t, "req-9", typed.TraceID)
	assert.Equal(t, "req-9", typed.Details["requestId"])
	assert.Contains(t, err.Error(), "DID not found")
	assert.Len(t, rec.all(), 1)
}

func TestExecute_EnvelopeIgnoredUnlessRequested(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid credentials"}`))
	}))
	defer server.Close()

	tr, rec := newTestTransport(t, server.URL, 0)

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, tr.Execute(context.Background(), &Request{Method: http.MethodPost, Path: "/login"}, &result))
	assert.False(t, result.Success)
	assert.Equal(t, "invalid credentials", result.Error)
	assert.Empty(t, rec.all())
}

func TestExecute_HooksAndMetrics(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var requests, responses, failures atomic.Int32
	collector := metrics.New(prometheus.NewRegistry())

	tr, _ := newTestTransport(t, server.URL, 3, func(o *Options) {
		o.Metrics = collector
		o.Hooks = &types.Hooks{
			OnRequest:  func(context.Context, *http.Request) { requests.Add(1) },
			OnResponse: func(context.Context, *http.Response, time.Duration) { responses.Add(1) },
			OnError:    func(context.Context, error) { failures.Add(1) },
		}
	})

	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/thing"}, nil)
	require.Error(t, err)

	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int32(2), responses.Load())
	assert.Equal(t, int32(1), failures.Load())

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.Attempts.WithLabelValues(http.MethodGet)))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Retries.WithLabelValues(http.MethodGet, "503")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Failures.WithLabelValues(http.MethodGet, "http_404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.InFlight))
}

type countingLimiter struct {
	calls atomic.Int32
	err   error
}

func (l *countingLimiter) Wait(context.Context) error {
	l.calls.Add(1)
	return l.err
}

func TestExecute_RateLimiterGatesEveryAttempt(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	tr, _ := newTestTransport(t, server.URL, 2, func(o *Options) {
		o.RateLimiter = limiter
	})

	require.Error(t, tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/limited"}, nil))
	assert.Equal(t, int32(3), limiter.calls.Load())
	assert.Equal(t, int32(3), hits.Load())

	hits.Store(0)
	blocked := &countingLimiter{err: errors.New("quota exhausted")}
	tr, _ = newTestTransport(t, server.URL, 0, func(o *Options) {
		o.RateLimiter = blocked
	})

	err := tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/limited"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
	assert.Zero(t, hits.Load())
}

func TestUpdateConfig_SwitchesBaseURL(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"server":"first"}`))
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"server":"second"}`))
	}))
	defer second.Close()

	tr, _ := newTestTransport(t, first.URL, 0)

	var result map[string]string
	require.NoError(t, tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/who"}, &result))
	assert.Equal(t, "first", result["server"])

	require.NoError(t, tr.UpdateConfig(func(c *types.Config) { c.BaseURL = second.URL }))
	require.NoError(t, tr.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/who"}, &result))
	assert.Equal(t, "second", result["server"])
}

func TestUpdateConfig_RejectsInvalid(t *testing.T) {
	tr, _ := newTestTransport(t, "http://localhost:3000", 3)

	assert.ErrorIs(t, tr.UpdateConfig(func(c *types.Config) { c.BaseURL = "not a url" }), ErrInvalidConfig)
	assert.ErrorIs(t, tr.UpdateConfig(func(c *types.Config) { c.Timeout = 0 }), ErrInvalidConfig)
	assert.ErrorIs(t, tr.UpdateConfig(func(c *types.Config) { c.MaxRetries = -1 }), ErrInvalidConfig)

	cfg := tr.Config()
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 3, cfg.MaxRetries)

	require.NoError(t, tr.UpdateConfig(func(c *types.Config) { c.Debug = true }))
	assert.True(t, tr.Config().Debug)
}

func TestNewRESTTransport_Defaults(t *testing.T) {
	tr := NewRESTTransport(nil)

	cfg := tr.Config()
	assert.Equal(t, types.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, types.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, types.EnvironmentDevelopment, cfg.Environment)
	assert.Equal(t, types.DefaultRetryWait, tr.backoff.Base)
	assert.Equal(t, time.Second, tr.backoff.DelayFor(0))
	assert.Equal(t, 2*time.Second, tr.backoff.DelayFor(1))
	assert.NotNil(t, tr.Tracer())
}
