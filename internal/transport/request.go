package transport

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// Request describes one logical call. It is not modified by the dispatcher,
// so every attempt sends the same descriptor.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is JSON-encoded when RawBody is nil
	Body interface{}

	// RawBody is sent verbatim with ContentType, e.g. a multipart form
	RawBody     []byte
	ContentType string

	Headers map[string]string

	// Retries overrides the configured retry budget when non-nil and >= 0
	Retries *int

	// Envelope marks a platform envelope body; a 2xx reply with
	// success:false is then a terminal failure
	Envelope bool
}

// Validate checks the method and path
func (r *Request) Validate() error {
	if r == nil {
		return errors.New("nil request")
	}
	if !allowedMethods[r.Method] {
		return errors.Errorf("unsupported method %q", r.Method)
	}
	if r.Path == "" {
		return errors.New("empty path")
	}
	if !strings.HasPrefix(r.Path, "/") {
		return errors.Errorf("path %q must start with /", r.Path)
	}
	return nil
}

// retryBudget returns the effective number of retries
func (r *Request) retryBudget(configured int) int {
	if r.Retries != nil && *r.Retries >= 0 {
		return *r.Retries
	}
	if configured < 0 {
		return 0
	}
	return configured
}

// targetURL joins the base URL, path and query
func (r *Request) targetURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + r.Path)
	if err != nil {
		return "", errors.Wrap(err, "invalid request URL")
	}

	if len(r.Query) > 0 {
		q := u.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
