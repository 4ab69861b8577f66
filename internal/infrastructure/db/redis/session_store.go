package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/apoclyps/cr8s/internal/core/domain"
)

// keyPrefix namespaces session entries in the cache.
// Wire format: "sessions/<token>" → numeric user id.
const keyPrefix = "sessions/"

// SessionStore maps session tokens to user ids in Redis. Expiry is enforced
// by Redis itself through the TTL attached at write time.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Put stores token → userID with the given TTL.
func (s *SessionStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

// Get resolves a token to a user id. An absent or expired key is
// domain.ErrSessionNotFound; any other failure is a transport error and is
// reported as such, never as a miss.
func (s *SessionStore) Get(ctx context.Context, token string) (int64, error) {
	userID, err := s.client.Get(ctx, keyPrefix+token).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrSessionNotFound
		}
		return 0, fmt.Errorf("session get: %w", err)
	}
	return userID, nil
}
