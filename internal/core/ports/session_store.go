package ports

import (
	"context"
	"time"
)

// SessionStore maps opaque session tokens to user ids with per-entry expiry.
// Expiry is enforced by the store itself; callers never re-check timestamps.
//
// Get distinguishes a miss (domain.ErrSessionNotFound: the token is absent
// or expired) from a transport failure (any other error). Callers map the
// former to an authentication rejection and the latter to a server-side
// failure, so an unreachable store is never reported as "session invalid".
type SessionStore interface {
	Put(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Get(ctx context.Context, token string) (int64, error)
}
