package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ubeu-platform/ubeu-go/internal/events"
	"github.com/ubeu-platform/ubeu-go/internal/session"
	"github.com/ubeu-platform/ubeu-go/internal/transport"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

const (
	loginEndpoint  = "/auth/login"
	logoutEndpoint = "/auth/logout"
)

// Credentials identify the user logging in
type Credentials struct {
	Type       string                 `json:"type"`
	Identifier string                 `json:"identifier"`
	Secret     string                 `json:"secret"`
	Options    map[string]interface{} `json:"options,omitempty"`
}

// Result is the body returned by the login endpoint
type Result struct {
	Success bool            `json:"success"`
	Session *types.Session  `json:"session,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Executor dispatches requests
type Executor interface {
	Execute(ctx context.Context, req *transport.Request, result interface{}) error
}

// Service handles authentication operations
type Service struct {
	transport Executor
	store     *session.Store
	persister session.Persister
	events    transport.Emitter
	logger    types.Logger
}

// NewService creates a new auth service. persister, emitter and logger may be nil.
func NewService(t Executor, store *session.Store, persister session.Persister, emitter transport.Emitter, logger types.Logger) *Service {
	return &Service{
		transport: t,
		store:     store,
		persister: persister,
		events:    emitter,
		logger:    logger,
	}
}

// Login performs authentication. A successful result carrying a session
// replaces the current session; any other result leaves it untouched.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Result, error) {
	var result Result
	err := s.transport.Execute(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   loginEndpoint,
		Body:   creds,
	}, &result)
	if err != nil {
		return nil, types.NewError(types.CodeAuthenticationFailed, "Authentication failed", err)
	}

	if !result.Success || result.Session == nil {
		if s.logger != nil {
			s.logger.Debug("Login rejected", "type", creds.Type, "error", result.Error)
		}
		return &result, nil
	}

	s.store.Set(result.Session)
	s.save(ctx, result.Session)

	if s.logger != nil {
		s.logger.Info("Login successful", "user_id", result.Session.UserID, "expires_at", result.Session.ExpiresAt)
	}
	if s.events != nil {
		s.events.Emit(events.Authenticated, &result)
	}
	return &result, nil
}

// Logout ends the current session. It does nothing when no session is held.
// On failure the session is kept.
func (s *Service) Logout(ctx context.Context) error {
	if s.store.Get() == nil {
		return nil
	}

	err := s.transport.Execute(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   logoutEndpoint,
	}, nil)
	if err != nil {
		return types.NewError(types.CodeLogoutFailed, "Logout failed", err)
	}

	s.store.Clear()
	s.forget(ctx)

	if s.logger != nil {
		s.logger.Info("Logged out")
	}
	if s.events != nil {
		s.events.Emit(events.Logout, nil)
	}
	return nil
}

// SetToken installs a session derived from a bearer token
func (s *Service) SetToken(ctx context.Context, token string) *types.Session {
	sess := SessionFromToken(token)
	s.store.Set(sess)
	s.save(ctx, sess)
	return sess
}

// ClearToken drops the current session without contacting the server
func (s *Service) ClearToken(ctx context.Context) {
	s.store.Clear()
	s.forget(ctx)
}

// Restore loads a persisted session into the store. It reports whether a
// usable session was found.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}

	sess, err := s.persister.Load(ctx)
	switch {
	case err == nil:
	case isMissing(err):
		return false, nil
	default:
		return false, err
	}

	s.store.Set(sess)
	if s.logger != nil {
		s.logger.Info("Session restored", "user_id", sess.UserID, "expires_at", sess.ExpiresAt)
	}
	return true, nil
}

func (s *Service) save(ctx context.Context, sess *types.Session) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, sess); err != nil && s.logger != nil {
		s.logger.Warn("Failed to persist session", "error", err)
	}
}

func (s *Service) forget(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Delete(ctx); err != nil && s.logger != nil {
		s.logger.Warn("Failed to delete persisted session", "error", err)
	}
}
