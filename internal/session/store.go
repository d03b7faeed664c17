// Package session holds the authenticated session of one client instance and
// the bearer header derived from it.
package session

import (
	"sync"
	"time"

	"github.com/ubeu-platform/ubeu-go/internal/types"
)

const bearerPrefix = "Bearer "

// Store guards the current session and its authorization header. Both are
// replaced in the same critical section, so readers never observe a header
// from one session paired with another session's expiry.
type Store struct {
	mu      sync.RWMutex
	session *types.Session
	header  string
	now     func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{now: time.Now}
}

// WithClock replaces the clock used for validity checks
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

// Set replaces the session wholesale. A nil session clears the store.
func (s *Store) Set(session *types.Session) {
	if session == nil {
		s.Clear()
		return
	}

	cp := *session
	header := ""
	if cp.Token != "" {
		header = bearerPrefix + cp.Token
	}

	s.mu.Lock()
	s.session = &cp
	s.header = header
	s.mu.Unlock()
}

// Get returns a copy of the current session, or nil
func (s *Store) Get() *types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Clear removes the session and the authorization header
func (s *Store) Clear() {
	s.mu.Lock()
	s.session = nil
	s.header = ""
	s.mu.Unlock()
}

// IsAuthenticated reports whether a session is present and not expired
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.ValidAt(s.now())
}

// AuthHeader returns the Authorization header value while the session is valid
func (s *Store) AuthHeader() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.header == "" || !s.session.ValidAt(s.now()) {
		return "", false
	}
	return s.header, true
}
