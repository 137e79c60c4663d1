package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sandyurl/shortener/internal/ratelimit"
)

// RateLimitRedisStore keeps one sorted set of request timestamps per key, so the
// limits hold across every server instance sharing the Redis.
type RateLimitRedisStore struct {
	client redis.Cmdable
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store.
func NewRateLimitRedisStore(conn *RedisConn) *RateLimitRedisStore {
	return &RateLimitRedisStore{client: conn.Client()}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-window).UnixMicro()

	var card *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
		card = pipe.ZCard(ctx, key)
		pipe.PExpire(ctx, key, window)

		return nil
	})
	if err != nil {
		return 0, err
	}

	return card.Val(), nil
}

// Compile-time check.
var _ ratelimit.Store = (*RateLimitRedisStore)(nil)
