package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/clickbrilhe/storefront-backend/pkg/redis"
)

// DefaultSessionTTL bounds how long an abandoned checkout survives.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore persists checkout sessions.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// RedisSessionStore keeps sessions in Redis under namespaced keys with a
// sliding TTL renewed on every save.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore builds a session store. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal checkout session")
	}
	return s.client.Set(ctx, s.client.SessionKey(session.ID.String()), payload, s.ttl)
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	payload, err := s.client.Get(ctx, s.client.SessionKey(sessionID.String()))
	if redis.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout session")
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Del(ctx, s.client.SessionKey(sessionID.String()))
}

// MemorySessionStore backs tests and local development.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewMemorySessionStore returns an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]*Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	clone := *session
	return &clone, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
