package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

// RedisRateLimiter implements the sliding window as a per-key sorted set
// of request timestamps, so the bound holds across process instances.
type RedisRateLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, max int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, max: max, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + key
	now := time.Now()
	horizon := now.Add(-l.window).UnixNano()

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(horizon, 10))
	count := pipe.ZCard(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if count.Val() >= int64(l.max) {
		return false, nil
	}

	pipe = l.rdb.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

var _ usecase.RateLimiter = (*RedisRateLimiter)(nil)
