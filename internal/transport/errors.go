package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ubeu-platform/ubeu-go/internal/types"
)

const maxErrorBody = 512

// handleHTTPError builds the cause of a failed response, mapping the status to
// one of the package sentinels
func handleHTTPError(statusCode int, body []byte) *types.HTTPError {
	// Try to parse the error envelope
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}

	httpErr := &types.HTTPError{
		StatusCode: statusCode,
		Body:       body,
	}

	switch statusCode {
	case http.StatusBadRequest:
		httpErr.Err = types.ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		httpErr.Err = types.ErrNotAuthenticated
	case http.StatusNotFound:
		httpErr.Err = types.ErrNotFound
	case http.StatusConflict:
		httpErr.Err = types.ErrConflict
	case http.StatusTooManyRequests:
		httpErr.Err = types.ErrRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		httpErr.Err = types.ErrTimeout
	default:
		if statusCode >= 500 {
			httpErr.Err = types.ErrServerError
		}
	}

	// Create base message with status code and description
	kind := "HTTP error"
	if statusCode >= 500 {
		kind = "server error"
	}
	base := fmt.Sprintf("%s: %d", kind, statusCode)
	if desc := httpStatusDescription(statusCode); desc != "" {
		base = fmt.Sprintf("%s: %d (%s)", kind, statusCode, desc)
	}

	// Append parsed error message, or a snippet of a non-JSON body
	switch {
	case msg != "":
		base = fmt.Sprintf("%s: %s", base, msg)
	case len(body) > 0 && !json.Valid(body):
		base = fmt.Sprintf("%s: %s", base, snippet(body))
	}
	httpErr.Message = base

	return httpErr
}

// checkEnvelope returns the rejection carried by a 2xx envelope, or nil when
// the body is not an envelope or reports success
func checkEnvelope(statusCode int, body []byte) *types.RejectedError {
	var env struct {
		Success   *bool  `json:"success"`
		Error     string `json:"error"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Success == nil || *env.Success {
		return nil
	}

	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	if msg == "" {
		msg = "no reason given"
	}
	return &types.RejectedError{
		StatusCode: statusCode,
		Message:    msg,
		RequestID:  env.RequestID,
	}
}

// httpStatusDescription returns a human-readable description for common HTTP status codes.
// This helps users understand errors like 525 (SSL Handshake Failed) which are Cloudflare-specific.
func httpStatusDescription(statusCode int) string {
	descriptions := map[int]string{
		400: "Bad Request",
		401: "Unauthorized",
		403: "Forbidden",
		404: "Not Found",
		409: "Conflict",
		422: "Unprocessable Entity",
		429: "Too Many Requests",
		500: "Internal Server Error",
		501: "Not Implemented",
		502: "Bad Gateway",
		503: "Service Unavailable",
		504: "Gateway Timeout",
		520: "Web Server Error",
		521: "Web Server Is Down",
		522: "Connection Timed Out",
		523: "Origin Is Unreachable",
		524: "A Timeout Occurred",
		525: "SSL Handshake Failed",
		526: "Invalid SSL Certificate",
		527: "Railgun Error",
		530: "Origin DNS Error",
	}
	return descriptions[statusCode]
}

// networkError wraps an attempt that produced no response
func networkError(err error) *types.NetworkError {
	var timeout interface{ Timeout() bool }
	isTimeout := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &timeout) && timeout.Timeout())
	return &types.NetworkError{Err: err, Timeout: isTimeout}
}

// causeLabel names a failure cause for metrics
func causeLabel(err error) string {
	var httpErr *types.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("http_%d", httpErr.StatusCode)
	}
	var rejected *types.RejectedError
	if errors.As(err, &rejected) {
		return "rejected"
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, types.ErrTimeout):
		return "timeout"
	}
	var netErr *types.NetworkError
	if errors.As(err, &netErr) {
		return "network"
	}
	return "decode"
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
