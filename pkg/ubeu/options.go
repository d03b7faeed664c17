package ubeu

import (
	"net/url"
	"time"

	"github.com/ubeu-platform/ubeu-go/internal/transport"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// RequestOption customizes a single request
type RequestOption func(*transport.Request)

// WithRetries overrides the retry budget for one request. Zero disables retries.
func WithRetries(n int) RequestOption {
	return func(r *transport.Request) {
		r.Retries = &n
	}
}

// WithHeader sets a header on one request
func WithHeader(key, value string) RequestOption {
	return func(r *transport.Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithQuery adds query parameters to one request
func WithQuery(query url.Values) RequestOption {
	return func(r *transport.Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		for k, vs := range query {
			for _, v := range vs {
				r.Query.Add(k, v)
			}
		}
	}
}

// ConfigOption changes one field of the client configuration
type ConfigOption func(*types.Config)

// WithBaseURL sets the API base URL
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *types.Config) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *types.Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the number of retries after the first attempt
func WithMaxRetries(n int) ConfigOption {
	return func(c *types.Config) {
		c.MaxRetries = n
	}
}

// WithDebug toggles debug logging
func WithDebug(debug bool) ConfigOption {
	return func(c *types.Config) {
		c.Debug = debug
	}
}

// WithEnvironment sets the reported environment
func WithEnvironment(env string) ConfigOption {
	return func(c *types.Config) {
		c.Environment = env
	}
}

// queryOf builds query parameters from pairs, skipping empty values
func queryOf(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	return q
}
