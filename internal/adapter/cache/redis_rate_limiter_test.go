package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisRateLimiter_BlocksOverLimit(t *testing.T) {
	l := NewRedisRateLimiter(newTestRedis(t), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRateLimiter_AllowsAfterWindow(t *testing.T) {
	l := NewRedisRateLimiter(newTestRedis(t), 2, 100*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	time.Sleep(120 * time.Millisecond)

	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	l := NewRedisRateLimiter(newTestRedis(t), 1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiter_ErrorWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedisRateLimiter(rdb, 5, time.Minute)

	mr.Close()

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err, "callers decide whether to fail open")
}
