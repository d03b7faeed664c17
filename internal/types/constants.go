package types

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the default UBeU API base URL
	DefaultBaseURL = "http://localhost:3000"

	// DefaultTimeout bounds a single attempt
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = 3

	// DefaultRetryWait is the base of the exponential backoff schedule
	DefaultRetryWait = time.Second

	// DefaultSessionTTL applies to tokens that carry no expiry claim
	DefaultSessionTTL = 24 * time.Hour

	// Version is the SDK version
	Version = "1.0.0"

	// UserAgent is the user agent string
	UserAgent = "ubeu-go/" + Version
)

// Environments
const (
	EnvironmentDevelopment = "development"
	EnvironmentStaging     = "staging"
	EnvironmentProduction  = "production"
)

// Error codes carried by Error
const (
	CodeInitializationFailed = "INITIALIZATION_FAILED"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeLogoutFailed         = "LOGOUT_FAILED"
	CodeRequestFailed        = "REQUEST_FAILED"
	CodeInvalidRequest       = "INVALID_REQUEST"
)

// Common errors
var (
	// ErrNotAuthenticated is returned for 401 and 403 responses
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrBadRequest is returned for 400 responses
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound is returned when resource not found
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned for 409 responses
	ErrConflict = errors.New("conflict")

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout is returned on timeout
	ErrTimeout = errors.New("request timeout")

	// ErrServerError is returned for server errors
	ErrServerError = errors.New("server error")

	// ErrInvalidRequest is returned for descriptors rejected before dispatch
	ErrInvalidRequest = errors.New("invalid request")
)
