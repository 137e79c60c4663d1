//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/sandyurl/shortener/internal/cache"
	"github.com/sandyurl/shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheIntegration(t *testing.T) {
	ctx := context.Background()
	conn := startRedis(t)
	c := store.NewRedisCache(conn)

	t.Run("set, get and ttl", func(t *testing.T) {
		require.NoError(t, c.SetWithTTL(ctx, cache.CodeKey("abc123"), []byte(`{"x":1}`), cache.TTL))

		raw, err := c.Get(ctx, cache.CodeKey("abc123"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"x":1}`, string(raw))

		ttl, err := conn.Client().TTL(ctx, cache.CodeKey("abc123")).Result()
		require.NoError(t, err)
		assert.InDelta(t, cache.TTL.Seconds(), ttl.Seconds(), 5)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := c.Get(ctx, cache.CodeKey("nope00"))

		assert.ErrorIs(t, err, cache.ErrMiss)
	})

	t.Run("delete counts removed keys", func(t *testing.T) {
		_ = c.SetWithTTL(ctx, "code:a", []byte("1"), time.Minute)
		_ = c.SetWithTTL(ctx, "user:a", []byte("1"), time.Minute)

		n, err := c.Delete(ctx, "code:a", "user:a", "code:missing")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = c.Delete(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	ctx := context.Background()
	s := store.NewRateLimitRedisStore(startRedis(t))

	t.Run("counts requests per key", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			count, err := s.Record(ctx, "rl:client", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, int64(i), count)
		}

		count, err := s.Record(ctx, "rl:other", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("forgets requests outside the window", func(t *testing.T) {
		_, _ = s.Record(ctx, "rl:window", 50*time.Millisecond)
		_, _ = s.Record(ctx, "rl:window", 50*time.Millisecond)

		time.Sleep(80 * time.Millisecond)

		count, err := s.Record(ctx, "rl:window", 50*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
