package ubeu

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authServer(t *testing.T, mutate ...func(*ClientOptions)) *Client {
	expires := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	return newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var creds AuthCredentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds.Secret != "correct" {
				w.Write([]byte(`{"success":false,"error":"invalid credentials"}`))
				return
			}
			w.Write([]byte(`{"success":true,"session":{"id":"sess-1","userId":"user-1","token":"tok-1","expiresAt":"` + expires + `"}}`))
		case "/auth/logout":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"success":true}`))
		case "/whoami":
			json.NewEncoder(w).Encode(map[string]string{"authorization": r.Header.Get("Authorization")})
		default:
			http.NotFound(w, r)
		}
	}, mutate...)
}

// sentAuthorization returns the Authorization header the server received
func sentAuthorization(t *testing.T, client *Client) string {
	t.Helper()
	var echo struct {
		Authorization string `json:"authorization"`
	}
	require.NoError(t, client.Get(context.Background(), "/whoami", &echo))
	return echo.Authorization
}

func TestClient_AuthenticateAndLogout(t *testing.T) {
	client := authServer(t)
	authenticated := recordEvents(t, client, EventAuthenticated)
	loggedOut := recordEvents(t, client, EventLogout)

	assert.Empty(t, sentAuthorization(t, client))

	result, err := client.Authenticate(context.Background(), AuthCredentials{
		Type:       AuthTypePassword,
		Identifier: "alice@example.com",
		Secret:     "correct",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, client.IsAuthenticated())
	assert.Equal(t, "user-1", client.GetCurrentSession().UserID)
	assert.Len(t, authenticated(), 1)
	assert.Equal(t, "Bearer tok-1", sentAuthorization(t, client))

	require.NoError(t, client.Logout(context.Background()))
	assert.False(t, client.IsAuthenticated())
	assert.Nil(t, client.GetCurrentSession())
	assert.Len(t, loggedOut(), 1)
	assert.Empty(t, sentAuthorization(t, client))
}

func TestClient_AuthenticateRejected(t *testing.T) {
	client := authServer(t)

	result, err := client.Authenticate(context.Background(), AuthCredentials{
		Type:       AuthTypePassword,
		Identifier: "alice@example.com",
		Secret:     "wrong",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "invalid credentials", result.Error)
	assert.False(t, client.IsAuthenticated())
}

func TestClient_LogoutWithoutSession(t *testing.T) {
	client := authServer(t)
	assert.NoError(t, client.Logout(context.Background()))
}

func TestClient_SessionFileRestores(t *testing.T) {
	file := filepath.Join(t.TempDir(), "session.json")
	withFile := func(o *ClientOptions) { o.SessionFile = file }

	first := authServer(t, withFile)
	_, err := first.Authenticate(context.Background(), AuthCredentials{
		Type:       AuthTypePassword,
		Identifier: "alice@example.com",
		Secret:     "correct",
	})
	require.NoError(t, err)

	second := authServer(t, withFile)
	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, "tok-1", second.GetCurrentSession().Token)

	second.ClearAuthToken()
	third := authServer(t, withFile)
	assert.False(t, third.IsAuthenticated())
}
