package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// DefaultRedisKey is the key sessions are stored under when none is configured
const DefaultRedisKey = "ubeu:session"

var (
	// ErrNoSession is returned when nothing has been persisted
	ErrNoSession = errors.New("no persisted session")

	// ErrSessionExpired is returned when the persisted session has expired
	ErrSessionExpired = errors.New("session expired")
)

// Persister saves sessions across client instances
type Persister interface {
	Save(ctx context.Context, session *types.Session) error
	Load(ctx context.Context) (*types.Session, error)
	Delete(ctx context.Context) error
}

// FilePersister stores the session as JSON in a file readable only by the owner
type FilePersister struct {
	Path string
}

// NewFilePersister creates a file persister
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// Save writes the session file
func (p *FilePersister) Save(_ context.Context, session *types.Session) error {
	if session == nil {
		return errors.New("not authenticated")
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	if err := os.WriteFile(p.Path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}
	return nil
}

// Load reads the session file
func (p *FilePersister) Load(_ context.Context) (*types.Session, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, errors.Wrap(err, "failed to read session file")
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	if !session.ValidAt(time.Now()) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Delete removes the session file
func (p *FilePersister) Delete(_ context.Context) error {
	if err := os.Remove(p.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}
	return nil
}

// RedisPersister stores the session in Redis with a TTL matching its expiry
type RedisPersister struct {
	client redis.UniversalClient
	key    string
}

// NewRedisPersister creates a Redis persister. An empty key uses DefaultRedisKey.
func NewRedisPersister(client redis.UniversalClient, key string) *RedisPersister {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisPersister{client: client, key: key}
}

// Save stores the session until it expires
func (p *RedisPersister) Save(ctx context.Context, session *types.Session) error {
	if session == nil {
		return errors.New("not authenticated")
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	if err := p.client.Set(ctx, p.key, data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to store session under %s", p.key)
	}
	return nil
}

// Load fetches the session
func (p *RedisPersister) Load(ctx context.Context) (*types.Session, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, errors.Wrapf(err, "failed to load session from %s", p.key)
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	if !session.ValidAt(time.Now()) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Delete removes the session key
func (p *RedisPersister) Delete(ctx context.Context) error {
	if err := p.client.Del(ctx, p.key).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete session %s", p.key)
	}
	return nil
}

// Close releases the Redis connection pool
func (p *RedisPersister) Close() error {
	return p.client.Close()
}
