package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache().WithClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, StatusKey("alice@example.com"), []byte("payload"), StatusTTL))

	now = now.Add(StatusTTL - time.Second)
	_, ok, err := c.Get(ctx, StatusKey("alice@example.com"))
	require.NoError(t, err)
	assert.True(t, ok, "entry should live until its TTL")

	now = now.Add(time.Second)
	_, ok, err = c.Get(ctx, StatusKey("alice@example.com"))
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at its TTL")
	assert.Equal(t, 0, c.len())
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'x'

	stored, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), stored)
}

func TestMemoryCache_DeleteAndCleanup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache().WithClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, c.Delete(ctx, "b"))
	assert.Equal(t, 1, c.len())

	now = now.Add(2 * time.Minute)
	c.cleanup()
	assert.Equal(t, 0, c.len())
}

func TestStatusKey(t *testing.T) {
	assert.Equal(t, "status:alice@example.com", StatusKey("alice@example.com"))
}
