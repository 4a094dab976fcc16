package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return m, client
}

func TestRedisCache_GetSetExpiry(t *testing.T) {
	ctx := context.Background()
	m, client := newTestRedis(t)
	c := NewRedisCache(client)

	_, ok, err := c.Get(ctx, StatusKey("alice@example.com"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, StatusKey("alice@example.com"), []byte("payload"), StatusTTL))

	assert.True(t, m.Exists("recruitportal:status:alice@example.com"))
	assert.Equal(t, StatusTTL, m.TTL("recruitportal:status:alice@example.com"))

	value, ok, err := c.Get(ctx, StatusKey("alice@example.com"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), value)

	m.FastForward(StatusTTL)

	_, ok, err = c.Get(ctx, StatusKey("alice@example.com"))
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire with its TTL")
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := context.Background()
	m, client := newTestRedis(t)
	c := NewRedisCache(client)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), StatusTTL))
	require.NoError(t, c.Delete(ctx, "k"))

	assert.False(t, m.Exists("recruitportal:k"))
	require.NoError(t, c.Delete(ctx, "k"), "deleting a missing key is not an error")
}

func TestRedisCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	m, client := newTestRedis(t)
	c := NewRedisCache(client)

	m.Close()

	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "k", []byte("v"), StatusTTL))
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()
	m := miniredis.RunT(t)
	url := "redis://" + m.Addr()

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = NewRedisClient(ctx, "not-a-url")
	assert.Error(t, err)

	m.Close()
	_, err = NewRedisClient(ctx, url)
	assert.Error(t, err)
}
