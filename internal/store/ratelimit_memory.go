package store

import (
	"context"
	"sync"
	"time"

	"github.com/sandyurl/shortener/internal/ratelimit"
)

// RateLimitMemoryStore keeps request timestamps per key for a single server
// instance. It backs the limiter when Redis is not the cache.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// RateLimitMemoryOption customises a RateLimitMemoryStore.
type RateLimitMemoryOption func(*RateLimitMemoryStore)

// WithRateLimitClock overrides the time source.
func WithRateLimitClock(now func() time.Time) RateLimitMemoryOption {
	return func(s *RateLimitMemoryStore) { s.now = now }
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore(opts ...RateLimitMemoryOption) *RateLimitMemoryStore {
	s := &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Record adds a request to key and returns how many fall inside window.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	timestamps := s.requests[key]
	valid := timestamps[:0]

	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	valid = append(valid, now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}

// Compile-time check.
var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
