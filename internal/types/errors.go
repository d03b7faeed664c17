package types

import (
	"errors"
	"fmt"
	"time"
)

// Error is the typed error returned across the dispatcher boundary
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"statusCode,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	TraceID    string                 `json:"requestId,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Err        error                  `json:"-"`
}

// NewError creates a typed error stamped with the current time
func NewError(code, message string, cause error) *Error {
	e := &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Err:       cause,
	}

	// Carry the trace identifier and status of a wrapped typed error
	var inner *Error
	if errors.As(cause, &inner) {
		e.TraceID = inner.TraceID
		e.StatusCode = inner.StatusCode
	}
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPError is the cause of a failure that produced an HTTP response
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel mapped from the status code
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// RejectedError is the cause of a 2xx reply whose envelope reports failure
type RejectedError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *RejectedError) Error() string {
	return "request rejected: " + e.Message
}

// NetworkError is the cause of a failure that produced no response
type NetworkError struct {
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("network timeout: %v", e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports ErrTimeout for timed out attempts
func (e *NetworkError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}
