package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/do"
	"github.com/sandyurl/shortener/internal/analytics"
	"github.com/sandyurl/shortener/internal/auth"
	"github.com/sandyurl/shortener/internal/handlers"
	"github.com/sandyurl/shortener/internal/health"
	"github.com/sandyurl/shortener/internal/metrics"
	"github.com/sandyurl/shortener/internal/middleware"
	"github.com/sandyurl/shortener/internal/ratelimit"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/store"
	"github.com/sandyurl/shortener/internal/users"
	"go.uber.org/zap"
)

// HTTPPackage provides the chi router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)

		router := chi.NewMux()
		router.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)

		if origins := opts.AllowedOrigins(); len(origins) > 0 {
			router.Use(middleware.CORS(origins))
		}

		router.Handle("/metrics", do.MustInvoke[*metrics.Metrics](i).Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		sessions := do.MustInvoke[*auth.Sessions](i)
		authenticator := do.MustInvoke[*auth.Authenticator](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))

		api.UseMiddleware(
			do.MustInvoke[*metrics.Metrics](i).Middleware,
			middleware.RequestMeta(api),
			middleware.PolicyRateLimiter(
				api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				ratelimit.NewOperationScopeResolver(),
				middleware.SessionKey(sessions),
				logger,
			),
		)

		health.RegisterRoutes(api, newHealthHandler(i, opts))

		handlers.RegisterRoutes(api,
			handlers.NewURLHandler(
				do.MustInvoke[*shortener.Service](i),
				do.MustInvoke[*users.Service](i),
				authenticator,
				do.MustInvoke[*analytics.Publishers](i),
				opts.PublicURL(),
				logger,
			),
			handlers.NewSessionHandler(
				do.MustInvoke[*users.Service](i),
				sessions,
				authenticator,
				opts.SecureCookies,
				logger,
			),
		)

		return api, nil
	})
}

func newHealthHandler(i *do.Injector, opts *Options) *health.Handler {
	var redisChecker, postgresChecker health.Checker

	if opts.Cache == BackendRedis || opts.Events == BackendRedis {
		redisChecker = do.MustInvoke[*store.RedisConn](i)
	}

	if opts.Storage == BackendPostgres {
		postgresChecker = do.MustInvoke[*store.PostgresConn](i)
	}

	return health.NewHandler(redisChecker, postgresChecker)
}
