package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps authenticated sessions in Redis with a TTL.
type SessionRepository struct {
	client redis.Cmdable
}

// NewSessionRepository constructs repository.
func NewSessionRepository(client redis.Cmdable) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create stores a session until ttl elapses.
func (r *SessionRepository) Create(ctx context.Context, session models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Validate returns the live session for id.
func (r *SessionRepository) Validate(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Expire deletes the session immediately.
func (r *SessionRepository) Expire(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}
