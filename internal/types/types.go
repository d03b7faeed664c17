package types

import (
	"context"
	"net/http"
	"time"
)

// Session represents an authenticated session
type Session struct {
	SessionID    string    `json:"id"`
	UserID       string    `json:"userId"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ValidAt reports whether the session is usable at the given instant.
func (s *Session) ValidAt(now time.Time) bool {
	return s != nil && s.ExpiresAt.After(now)
}

// Config is the runtime configuration of one client instance
type Config struct {
	BaseURL     string        `json:"baseUrl" koanf:"baseurl"`
	Timeout     time.Duration `json:"timeout" koanf:"timeout"`
	MaxRetries  int           `json:"maxRetries" koanf:"maxretries"`
	Debug       bool          `json:"debug" koanf:"debug"`
	Environment string        `json:"environment" koanf:"environment"`
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RetryConfig configures retry behavior. RetryWait is the base delay of the
// exponential schedule, MaxWait caps a single delay (zero leaves it uncapped).
type RetryConfig struct {
	MaxRetries int           `json:"maxRetries"`
	RetryWait  time.Duration `json:"retryWait"`
	MaxWait    time.Duration `json:"maxWait"`
}

// Hooks provides lifecycle hooks for requests
type Hooks struct {
	OnRequest  func(ctx context.Context, req *http.Request)
	OnResponse func(ctx context.Context, resp *http.Response, duration time.Duration)
	OnError    func(ctx context.Context, err error)
}
