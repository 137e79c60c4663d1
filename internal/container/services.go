package container

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/sandyurl/shortener/internal/auth"
	"github.com/sandyurl/shortener/internal/cache"
	"github.com/sandyurl/shortener/internal/metrics"
	"github.com/sandyurl/shortener/internal/ratelimit"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/store"
	"github.com/sandyurl/shortener/internal/users"
	"go.uber.org/zap"
)

const memoryCacheCleanup = time.Minute

var errMissingJWTSecret = errors.New("--jwt-secret is required")

// RepositoryPackage provides the URL and user repositories for the configured
// storage backend.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		switch opts := do.MustInvoke[*Options](i); opts.Storage {
		case BackendPostgres:
			return store.NewPostgresStore(do.MustInvoke[*store.PostgresConn](i).Pool()), nil
		case BackendMemory:
			return store.NewMemoryStore(), nil
		default:
			return nil, fmt.Errorf("unknown storage %q", opts.Storage)
		}
	})

	do.Provide(i, func(i *do.Injector) (users.Repository, error) {
		switch opts := do.MustInvoke[*Options](i); opts.Storage {
		case BackendPostgres:
			return store.NewPostgresUserStore(do.MustInvoke[*store.PostgresConn](i).Pool()), nil
		case BackendMemory:
			return store.NewMemoryUserStore(), nil
		default:
			return nil, fmt.Errorf("unknown storage %q", opts.Storage)
		}
	})
}

// CachePackage provides the cache layer for the configured cache backend.
func CachePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (cache.Cache, error) {
		switch opts := do.MustInvoke[*Options](i); opts.Cache {
		case BackendRedis:
			return store.NewRedisCache(do.MustInvoke[*store.RedisConn](i)), nil
		case BackendMemory:
			return store.NewMemoryCache(memoryCacheCleanup), nil
		default:
			return nil, fmt.Errorf("unknown cache %q", opts.Cache)
		}
	})
}

// ServicePackage provides the user service and the resolution service.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*users.Service, error) {
		opts := do.MustInvoke[*Options](i)

		return users.NewService(
			do.MustInvoke[users.Repository](i),
			do.MustInvoke[cache.Cache](i),
			users.Config{
				GoogleClientID: opts.GoogleClientID,
				AdminEmails:    opts.AdminEmailList(),
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		generator, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[cache.Cache](i),
			do.MustInvoke[*users.Service](i),
			generator,
			do.MustInvoke[*zap.Logger](i),
			shortener.WithRecorder(do.MustInvoke[*metrics.Metrics](i)),
		), nil
	})
}

// AuthPackage provides session tokens and the request authenticator.
func AuthPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*auth.Sessions, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.JWTSecret == "" {
			return nil, errMissingJWTSecret
		}

		return auth.NewSessions(opts.JWTSecret, opts.SessionTTL)
	})

	do.Provide(i, func(i *do.Injector) (*auth.Authenticator, error) {
		return auth.NewAuthenticator(
			do.MustInvoke[*auth.Sessions](i),
			do.MustInvoke[*users.Service](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the policy limiter. Counters live in Redis when
// Redis is the cache backend so that every replica shares them.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		if do.MustInvoke[*Options](i).Cache == BackendRedis {
			return store.NewRateLimitRedisStore(do.MustInvoke[*store.RedisConn](i)), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})
}
