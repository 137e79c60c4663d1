package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach Redis.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// RedisConn owns the process-wide Redis client. It is connected once at startup,
// shared by every Redis-backed component, and closed by Shutdown.
type RedisConn struct {
	client *redis.Client
}

// ConnectRedis dials Redis and verifies the connection with a PING.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*RedisConn, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	return &RedisConn{client: client}, nil
}

// NewRedisConn wraps an already configured client.
func NewRedisConn(client *redis.Client) *RedisConn {
	return &RedisConn{client: client}
}

// Client returns the shared client.
func (c *RedisConn) Client() *redis.Client {
	return c.client
}

// Ping checks Redis connectivity.
func (c *RedisConn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Shutdown closes the client.
func (c *RedisConn) Shutdown() error {
	return c.client.Close()
}
