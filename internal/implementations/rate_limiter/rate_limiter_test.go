package ratelimiter

import (
	"context"
	"resetme/internal/core/domain/logging"
	ratelimiter "resetme/internal/core/domain/rate_limiter"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/require"
)

var NOW = time.Date(2023, 2, 11, 16, 30, 0, 0, time.UTC)

func setupLimiter(t *testing.T) *Redis {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, logging.NewFakeLogger(), func() time.Time { return NOW })
}

func TestAllowsUpToLimit(t *testing.T) {
	limiter := setupLimiter(t)
	limit := ratelimiter.Limit{Value: 3, Interval: ratelimiter.Hour}

	for i := 0; i < 3; i++ {
		result := limiter.CheckLimit(context.Background(), "test-key", limit)
		require.True(t, result.IsAllowed)
	}

	result := limiter.CheckLimit(context.Background(), "test-key", limit)
	require.False(t, result.IsAllowed)
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := setupLimiter(t)
	limit := ratelimiter.Limit{Value: 1, Interval: ratelimiter.Minute}

	require.True(t, limiter.CheckLimit(context.Background(), "key-a", limit).IsAllowed)
	require.False(t, limiter.CheckLimit(context.Background(), "key-a", limit).IsAllowed)
	require.True(t, limiter.CheckLimit(context.Background(), "key-b", limit).IsAllowed)
}

func TestFailsOpenOnRedisError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	limiter := NewRedis(client, logging.NewFakeLogger(), func() time.Time { return NOW })

	server.Close()

	result := limiter.CheckLimit(
		context.Background(), "test-key",
		ratelimiter.Limit{Value: 1, Interval: ratelimiter.Hour},
	)
	require.True(t, result.IsAllowed)
}
