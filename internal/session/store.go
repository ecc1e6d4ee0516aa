package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for tokens that are unknown, deleted
// or past their TTL. All three look identical to callers.
var ErrSessionNotFound = errors.New("session not found")

// Store persists session tokens with a TTL. Expiry is enforced by the
// store; an expired entry behaves exactly like a missing one.
type Store interface {
	Save(ctx context.Context, key string, userID int64, ttl time.Duration) error
	Get(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}
