package ubeu

import (
	"context"
	"errors"
	"strings"

	"github.com/ubeu-platform/ubeu-go/internal/transport"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// Error is the typed error returned by every client operation. TraceID
// matches the X-Request-ID header sent with the failed request.
type Error = types.Error

// HTTPError is the cause of a failure that received an HTTP response
type HTTPError = types.HTTPError

// NetworkError is the cause of a failure that received no response
type NetworkError = types.NetworkError

// Error codes
const (
	CodeInitializationFailed = types.CodeInitializationFailed
	CodeAuthenticationFailed = types.CodeAuthenticationFailed
	CodeLogoutFailed         = types.CodeLogoutFailed
	CodeRequestFailed        = types.CodeRequestFailed
	CodeInvalidRequest       = types.CodeInvalidRequest
)

var (
	// ErrInitializationFailed matches errors returned by Initialize
	ErrInitializationFailed = &Error{Code: CodeInitializationFailed}

	// ErrAuthenticationFailed matches errors returned by Authenticate
	ErrAuthenticationFailed = &Error{Code: CodeAuthenticationFailed}

	// ErrLogoutFailed matches errors returned by Logout
	ErrLogoutFailed = &Error{Code: CodeLogoutFailed}

	// ErrRequestFailed matches any failed dispatch
	ErrRequestFailed = &Error{Code: CodeRequestFailed}

	// ErrInvalidRequest is returned for requests rejected before dispatch
	ErrInvalidRequest = types.ErrInvalidRequest
)

var (
	// ErrNotAuthenticated is returned for 401 and 403 responses
	ErrNotAuthenticated = types.ErrNotAuthenticated

	// ErrBadRequest is returned for 400 responses
	ErrBadRequest = types.ErrBadRequest

	// ErrNotFound is returned when resource not found
	ErrNotFound = types.ErrNotFound

	// ErrConflict is returned for 409 responses
	ErrConflict = types.ErrConflict

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = types.ErrRateLimited

	// ErrTimeout is returned on timeout
	ErrTimeout = types.ErrTimeout

	// ErrServerError is returned for server errors
	ErrServerError = types.ErrServerError

	// ErrBatchTimeout is returned when a batch job does not finish in time
	ErrBatchTimeout = errors.New("batch job timeout")

	// ErrBatchCancelled is returned when a batch job is cancelled while waiting
	ErrBatchCancelled = errors.New("batch job cancelled")

	// ErrBatchFailed is returned when a batch transaction failed
	ErrBatchFailed = errors.New("batch job failed")
)

// ValidationError describes a request rejected by a local shape check
type ValidationError struct {
	Errors []string `json:"errors"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrAuthenticationFailed)
}

// IsRetryable checks if error is retryable. A response status decides
// before any sentinel, so a 408 is not retried even though it maps to
// ErrTimeout.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return transport.IsRetryableStatus(httpErr.StatusCode)
	}

	var rejected *types.RejectedError
	if errors.As(err, &rejected) {
		return false
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return transport.IsRetryableStatus(apiErr.StatusCode)
	}

	return false
}

// TraceID returns the trace identifier carried by err, if any
func TraceID(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.TraceID
	}
	return ""
}
