package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sandyurl/shortener/internal/cache"
)

// RedisCache is a Redis implementation of cache.Cache.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a new Redis-backed cache on the shared connection.
func NewRedisCache(conn *RedisConn) *RedisCache {
	return &RedisCache{client: conn.Client()}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrMiss
		}

		return nil, err
	}

	return raw, nil
}

func (r *RedisCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	return r.client.Del(ctx, keys...).Result()
}

// Compile-time check.
var _ cache.Cache = (*RedisCache)(nil)
