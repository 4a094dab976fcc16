package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisQuota(t *testing.T) (*miniredis.Miniredis, *Quota) {
	t.Helper()

	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	quota, err := NewRedisQuota(client, StatusLimit, StatusWindow)
	require.NoError(t, err)

	return m, quota
}

func TestRedisQuota_SixthRequestRejected(t *testing.T) {
	ctx := context.Background()
	m, quota := newRedisQuota(t)

	for i := 1; i <= 5; i++ {
		decision, err := quota.Take(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d should be allowed", i)
	}

	decision, err := quota.Take(ctx, "alice@example.com")
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, 0)
	assert.LessOrEqual(t, decision.RetryAfter, int(StatusWindow.Seconds())+1)

	assert.Equal(t, []string{"ratelimit:status:alice@example.com"}, m.Keys())

	other, err := quota.Take(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are counted independently")
}

func TestRedisQuota_WindowAndReset(t *testing.T) {
	ctx := context.Background()
	m, quota := newRedisQuota(t)

	for range StatusLimit + 1 {
		_, err := quota.Take(ctx, "alice@example.com")
		require.NoError(t, err)
	}

	m.FastForward(StatusWindow)

	decision, err := quota.Take(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "counter expires with the window")

	require.NoError(t, quota.Reset(ctx, "alice@example.com"))
	assert.False(t, m.Exists("ratelimit:status:alice@example.com"))
}

func TestRedisQuota_StoreUnavailable(t *testing.T) {
	m, quota := newRedisQuota(t)
	m.Close()

	_, err := quota.Take(context.Background(), "alice@example.com")
	assert.Error(t, err)
}
