package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionData is what a session cookie resolves to
type SessionData struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists login sessions
type SessionStore interface {
	CreateSession(ctx context.Context, userID string) (*SessionData, error)
	GetSession(ctx context.Context, sessionID string) (*SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

func newSession(userID string, ttl time.Duration) SessionData {
	now := time.Now()
	return SessionData{
		SessionID: uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// SessionService manages user sessions in Redis
type SessionService struct {
	redis *redis.Client
	ttl   time.Duration
}

var _ SessionStore = (*SessionService)(nil)

func NewSessionService(redis *redis.Client, ttl time.Duration) *SessionService {
	return &SessionService{redis: redis, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

func (s *SessionService) CreateSession(ctx context.Context, userID string) (*SessionData, error) {
	session := newSession(userID, s.ttl)

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.SessionID), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &session, nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.DeleteSession(ctx, sessionID)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MemorySessionStore keeps sessions in process. Used when Redis is disabled.
type MemorySessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{cache: cache.New(ttl, 10*time.Minute), ttl: ttl}
}

func (m *MemorySessionStore) CreateSession(_ context.Context, userID string) (*SessionData, error) {
	session := newSession(userID, m.ttl)
	m.cache.Set(sessionKey(session.SessionID), session, m.ttl)
	return &session, nil
}

func (m *MemorySessionStore) GetSession(_ context.Context, sessionID string) (*SessionData, error) {
	val, found := m.cache.Get(sessionKey(sessionID))
	if !found {
		return nil, ErrSessionNotFound
	}
	session := val.(SessionData)
	return &session, nil
}

func (m *MemorySessionStore) DeleteSession(_ context.Context, sessionID string) error {
	m.cache.Delete(sessionKey(sessionID))
	return nil
}
