package cache

import (
	"context"
	"time"
)

// StatusTTL is how long a status lookup is served from cache.
const StatusTTL = 5 * time.Minute

// Cache stores opaque payloads with a per entry time to live.
type Cache interface {
	// returns the payload for key; ok is false on a miss or expired entry
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// builds the cache key for an applicant's status
func StatusKey(email string) string {
	return "status:" + email
}
