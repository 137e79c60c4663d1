package store

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sandyurl/shortener/internal/cache"
)

// MemoryCache is an in-process implementation of cache.Cache.
type MemoryCache struct {
	items *gocache.Cache

	// writes orders SetWithTTL against Delete, so a key Delete counts as
	// removed is never one a concurrent populate wrote after the check.
	writes sync.Mutex
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries every
// cleanupInterval.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(cache.TTL, cleanupInterval),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, cache.ErrMiss
	}

	raw, _ := v.([]byte)

	return raw, nil
}

func (m *MemoryCache) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)

	m.writes.Lock()
	defer m.writes.Unlock()

	m.items.Set(key, buf, ttl)

	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) (int64, error) {
	m.writes.Lock()
	defer m.writes.Unlock()

	var removed int64

	for _, key := range keys {
		if _, ok := m.items.Get(key); ok {
			removed++
		}

		m.items.Delete(key)
	}

	return removed, nil
}

// Purge drops every entry, as if they had all expired.
func (m *MemoryCache) Purge() {
	m.items.Flush()
}

// Compile-time check.
var _ cache.Cache = (*MemoryCache)(nil)
