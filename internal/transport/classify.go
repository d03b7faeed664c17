package transport

import (
	"context"
	"math"
	"net/http"
	"time"
)

// IsRetryable classifies the result of one attempt. A missing response is a
// network-level failure and always retryable; otherwise only 429 and 5xx are.
func IsRetryable(resp *http.Response, err error) bool {
	if resp == nil {
		return true
	}
	return IsRetryableStatus(resp.StatusCode)
}

// IsRetryableStatus applies the status-class policy
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Backoff computes the delay before a retry: Base * 2^attempt, where attempt
// 0 precedes the first retry. Max caps a single delay when positive.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DelayFor returns the delay before retry number attempt+1
func (b Backoff) DelayFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	limit := time.Duration(math.MaxInt64)
	if b.Max > 0 {
		limit = b.Max
	}

	// Shifting past the limit would overflow
	if attempt >= 62 || b.Base > limit>>uint(attempt) {
		return limit
	}
	return b.Base << uint(attempt)
}

// Outcome is the tagged result of classifying one attempt
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRetry
	OutcomeFail
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetry:
		return "retry"
	default:
		return "fail"
	}
}

// Decision is what the dispatcher does after an attempt
type Decision struct {
	Outcome Outcome
	Delay   time.Duration
}

// Policy combines the classifier, the retry budget and the backoff schedule
type Policy struct {
	MaxRetries int
	Backoff    Backoff
}

// Decide classifies attempt (zero-based) of a dispatch. A done context is
// always terminal.
func (p Policy) Decide(ctx context.Context, attempt int, resp *http.Response, err error) Decision {
	if ctx.Err() != nil {
		return Decision{Outcome: OutcomeFail}
	}
	if err == nil && resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Decision{Outcome: OutcomeSuccess}
	}
	if !IsRetryable(resp, err) || attempt >= p.MaxRetries {
		return Decision{Outcome: OutcomeFail}
	}
	return Decision{Outcome: OutcomeRetry, Delay: p.Backoff.DelayFor(attempt)}
}
