package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/session"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

var now = time.Now

// SessionFromToken builds a session for a bearer token. Claims of a JWT fill
// in the expiry, subject and identifiers; the signature is not verified.
func SessionFromToken(token string) *types.Session {
	issued := now()
	sess := &types.Session{
		SessionID: uuid.NewString(),
		Token:     token,
		CreatedAt: issued,
		ExpiresAt: issued.Add(types.DefaultSessionTTL),
	}

	claims, err := jwt.Parse([]byte(token), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return sess
	}

	if exp := claims.Expiration(); !exp.IsZero() {
		sess.ExpiresAt = exp
	}
	if iat := claims.IssuedAt(); !iat.IsZero() {
		sess.CreatedAt = iat
	}
	sess.UserID = claims.Subject()

	if jti := claims.JwtID(); jti != "" {
		sess.SessionID = jti
	} else if sid, ok := claims.Get("sid"); ok {
		if s, ok := sid.(string); ok && s != "" {
			sess.SessionID = s
		}
	}
	return sess
}

func isMissing(err error) bool {
	return errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrSessionExpired)
}
