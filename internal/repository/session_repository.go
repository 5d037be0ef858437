package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classtrack/classtrack-api/internal/models"
)

const sessionKeyPrefix = "classtrack:session:"

// SessionRepository stores session contexts in redis, TTL-bound. The session
// context is the only piece of state not living in the document store.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

// Save writes the session context, refreshing its TTL.
func (r *SessionRepository) Save(ctx context.Context, session models.SessionContext) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(session.SessionID), payload, r.ttl).Err()
}

// Find loads a session context by id.
func (r *SessionRepository) Find(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	payload, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var session models.SessionContext
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a session context. Deleting an absent session is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
