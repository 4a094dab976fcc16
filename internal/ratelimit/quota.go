package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	// status lookups allowed per email in one window
	StatusLimit = 5

	// window length; the window opens with the first counted request
	StatusWindow = 15 * time.Minute

	redisKeyPrefix = "ratelimit:status"
)

// Decision is the outcome of counting one request against a quota.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter int // seconds until the window resets, 0 when allowed
}

// Quota is a fixed-window request counter keyed by an arbitrary string
// (the applicant's email for status lookups).
type Quota struct {
	limiter *limiter.Limiter
	now     func() time.Time
}

// creates a quota counted in process memory
func NewMemoryQuota(limit int64, period time.Duration) *Quota {
	return newQuota(memory.NewStore(), limit, period)
}

// creates a quota shared by every instance pointing at the same Redis
func NewRedisQuota(client *redis.Client, limit int64, period time.Duration) (*Quota, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   redisKeyPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}

	return newQuota(store, limit, period), nil
}

func newQuota(store limiter.Store, limit int64, period time.Duration) *Quota {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}

	return &Quota{
		limiter: limiter.New(store, rate),
		now:     time.Now,
	}
}

// counts one request for key and reports whether it may proceed
func (q *Quota) Take(ctx context.Context, key string) (Decision, error) {
	lctx, err := q.limiter.Get(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count request: %w", err)
	}

	if !lctx.Reached {
		return Decision{Allowed: true, Remaining: lctx.Remaining}, nil
	}

	return Decision{
		Allowed:    false,
		RetryAfter: retryAfterSeconds(time.Unix(lctx.Reset, 0), q.now()),
	}, nil
}

// clears the counter for key
func (q *Quota) Reset(ctx context.Context, key string) error {
	if _, err := q.limiter.Reset(ctx, key); err != nil {
		return fmt.Errorf("failed to reset quota: %w", err)
	}

	return nil
}

func retryAfterSeconds(reset, now time.Time) int {
	seconds := int(reset.Sub(now).Round(time.Second) / time.Second)
	if seconds < 1 {
		return 1
	}

	return seconds
}
