// Package cache defines the advisory key-value cache that sits in front of the
// persistent stores. Entries are disposable projections of stored records: losing
// any of them only costs a store round-trip.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TTL is the fixed lifetime of every cache entry, counted from its last write.
const TTL = 3600 * time.Second

const (
	codePrefix = "code:"
	userPrefix = "user:"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque values under string keys with a time-to-live.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys and reports how many of them existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
}

// CodeKey is the key under which a URL record is cached by its short code.
func CodeKey(code string) string {
	return codePrefix + code
}

// UserKey is the key under which a user is cached by id.
func UserKey(id string) string {
	return userPrefix + id
}

// GetJSON reads key and decodes it into a new T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (*T, error) {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", key, err)
	}

	return &v, nil
}

// SetJSON encodes v and stores it under key with the given ttl.
func SetJSON[T any](ctx context.Context, c Cache, key string, v *T, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return c.SetWithTTL(ctx, key, raw, ttl)
}
