package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandyurl/shortener/internal/ratelimit"
	"github.com/sandyurl/shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func TestPolicyLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows requests under every limit", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeGlobal, 3, time.Minute).
			Build()
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)

		for range 3 {
			allowed, exceeded, err := limiter.Allow(ctx, "client", []ratelimit.Scope{ratelimit.ScopeGlobal})

			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("reports the exceeded limit", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeAuth, 1, time.Minute).
			Build()
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeAuth}

		_, _, _ = limiter.Allow(ctx, "client", scopes)
		allowed, exceeded, err := limiter.Allow(ctx, "client", scopes)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeAuth, exceeded.Scope)
		assert.Equal(t, int64(2), exceeded.Count)
		assert.Equal(t, int64(1), exceeded.Config.Max)
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeWrite, 1, time.Minute).
			Build()
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeWrite}

		allowed, _, _ := limiter.Allow(ctx, "alice", scopes)
		assert.True(t, allowed)

		allowed, _, _ = limiter.Allow(ctx, "bob", scopes)
		assert.True(t, allowed, "bob has his own counter")

		allowed, _, _ = limiter.Allow(ctx, "alice", scopes)
		assert.False(t, allowed)
	})

	t.Run("enforces every window of a scope", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeWrite, 10, time.Minute).
			AddLimit(ratelimit.ScopeWrite, 2, time.Hour).
			Build()
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeWrite}

		_, _, _ = limiter.Allow(ctx, "client", scopes)
		_, _, _ = limiter.Allow(ctx, "client", scopes)
		allowed, exceeded, err := limiter.Allow(ctx, "client", scopes)

		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, time.Hour, exceeded.Config.Window)
	})

	t.Run("ignores scopes without limits", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicyBuilder().Build())

		allowed, exceeded, err := limiter.Allow(ctx, "client", []ratelimit.Scope{ratelimit.ScopeRead})

		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Nil(t, exceeded)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeGlobal, 1, time.Minute).
			Build()
		limiter := ratelimit.NewPolicyLimiter(failingStore{}, policy)

		allowed, _, err := limiter.Allow(ctx, "client", []ratelimit.Scope{ratelimit.ScopeGlobal})

		require.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestDefaultPolicy(t *testing.T) {
	policy := ratelimit.DefaultPolicy()

	for _, scope := range []ratelimit.Scope{
		ratelimit.ScopeGlobal, ratelimit.ScopeRead, ratelimit.ScopeWrite, ratelimit.ScopeAuth,
	} {
		assert.NotEmpty(t, policy.Limits[scope], "scope %s should be limited", scope)
	}
}

func TestPolicyBuilder_BuildCopiesLimits(t *testing.T) {
	builder := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeRead, 5, time.Minute)
	first := builder.Build()

	builder.AddLimit(ratelimit.ScopeRead, 50, time.Hour)

	assert.Len(t, first.Limits[ratelimit.ScopeRead], 1)
	assert.Len(t, builder.Build().Limits[ratelimit.ScopeRead], 2)
}
