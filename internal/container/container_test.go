package container_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/sandyurl/shortener/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryOptions() *container.Options {
	return &container.Options{
		Port:          4000,
		CodeLength:    6,
		Storage:       container.BackendMemory,
		Cache:         container.BackendMemory,
		Events:        container.BackendMemory,
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
		AllowedOrigin: "http://localhost:5173",
		LogFormat:     "console",
		LogLevel:      "error",
	}
}

func newInjector(t *testing.T, opts *container.Options) *do.Injector {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.MetricsPackage(injector)
	container.RepositoryPackage(injector)
	container.CachePackage(injector)
	container.ServicePackage(injector)
	container.AuthPackage(injector)
	container.RateLimitPackage(injector)
	container.PublisherGroupPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.HTTPPackage(injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func serve(t *testing.T, opts *container.Options) *chi.Mux {
	t.Helper()

	injector := newInjector(t, opts)
	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	return router
}

func TestOptions(t *testing.T) {
	t.Run("public url defaults to localhost", func(t *testing.T) {
		opts := &container.Options{Port: 4000}

		assert.Equal(t, "http://localhost:4000", opts.PublicURL())
	})

	t.Run("public url trims trailing slash", func(t *testing.T) {
		opts := &container.Options{BaseURL: "https://sho.rt/"}

		assert.Equal(t, "https://sho.rt", opts.PublicURL())
	})

	t.Run("splits comma separated lists", func(t *testing.T) {
		opts := &container.Options{AdminEmails: " a@example.com, ,b@example.com ", AllowedOrigin: ""}

		assert.Equal(t, []string{"a@example.com", "b@example.com"}, opts.AdminEmailList())
		assert.Empty(t, opts.AllowedOrigins())
	})
}

func TestNewLogger(t *testing.T) {
	_, err := container.NewLogger("json", "debug")
	require.NoError(t, err)

	_, err = container.NewLogger("xml", "info")
	require.Error(t, err)

	_, err = container.NewLogger("console", "loud")
	require.Error(t, err)
}

func TestHTTPPackage_MemoryBackends(t *testing.T) {
	router := serve(t, memoryOptions())

	t.Run("shortens and redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/shorten",
			strings.NewReader(`{"originalUrl":"https://example.com/page"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		location := w.Header().Get("Location")
		require.True(t, strings.HasPrefix(location, "http://localhost:4000/"), location)

		code := strings.TrimPrefix(location, "http://localhost:4000/")
		assert.Len(t, code, 6)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+code, nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/page", w.Header().Get("Location"))
	})

	t.Run("reports disabled dependencies", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
		assert.Contains(t, w.Body.String(), `"postgres":"disabled"`)
	})

	t.Run("exposes metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "shortener_http_requests_total")
	})

	t.Run("answers CORS preflight for allowed origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/shorten", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestAuthPackage_RequiresSecret(t *testing.T) {
	opts := memoryOptions()
	opts.JWTSecret = ""

	injector := newInjector(t, opts)

	assert.Panics(t, func() { _ = do.MustInvoke[huma.API](injector) })
}
