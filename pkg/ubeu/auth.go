package ubeu

import (
	"context"
	"time"
)

// Authenticate logs in and installs the returned session
func (c *Client) Authenticate(ctx context.Context, creds AuthCredentials) (*AuthResult, error) {
	c.lastActivity.Store(time.Now().UnixNano())
	return c.auth.Login(ctx, creds)
}

// Logout ends the current session. It is a no-op when not authenticated.
func (c *Client) Logout(ctx context.Context) error {
	c.lastActivity.Store(time.Now().UnixNano())
	return c.auth.Logout(ctx)
}

// IsAuthenticated reports whether a valid session is installed
func (c *Client) IsAuthenticated() bool {
	return c.sessions != nil && c.sessions.IsAuthenticated()
}

// GetCurrentSession returns a copy of the installed session, or nil
func (c *Client) GetCurrentSession() *Session {
	if c.sessions == nil {
		return nil
	}
	return c.sessions.Get()
}

// SetAuthToken installs a session for token. Claims of a JWT token fill in
// the expiry and subject.
func (c *Client) SetAuthToken(token string) *Session {
	return c.auth.SetToken(context.Background(), token)
}

// ClearAuthToken removes the session and its persisted copy
func (c *Client) ClearAuthToken() {
	c.auth.ClearToken(context.Background())
}
