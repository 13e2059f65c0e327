package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps browser sessions in Redis.
// Key format: session:<uuid>, value is the JSON-encoded ports.Session.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionStore creates a SessionStore whose entries expire after ttl.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionStore) Create(ctx context.Context, userID string) (*ports.Session, error) {
	sess := &ports.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), payload, s.ttl).Err(); err != nil {
		return nil, domain.NewUnavailableError("session store unavailable", err)
	}
	return sess, nil
}

// Get returns the session or (nil, nil) when it is unknown or expired.
func (s *SessionStore) Get(ctx context.Context, id string) (*ports.Session, error) {
	if id == "" {
		return nil, nil
	}
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, domain.NewUnavailableError("session store unavailable", err)
	}

	var sess ports.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		// A corrupt entry is treated as a missing session.
		_ = s.client.Del(ctx, s.key(id)).Err()
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return domain.NewUnavailableError("session store unavailable", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return domain.NewUnavailableError("session store unavailable", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return sessionKeyPrefix + id
}
