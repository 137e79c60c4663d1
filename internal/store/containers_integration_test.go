//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/sandyurl/shortener/internal/store"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL, applies migrations and truncates
// the tables when the test ends.
func startPostgres(t *testing.T) *store.PostgresConn {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shortener"),
		tcpostgres.WithUsername("shortener"),
		tcpostgres.WithPassword("shortener"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}

	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := store.ConnectPostgres(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Shutdown() })

	return conn
}

func startRedis(t *testing.T) *store.RedisConn {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}

	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	conn, err := store.ConnectRedis(ctx, store.RedisConfig{Addr: endpoint})
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Shutdown() })

	return conn
}

func truncate(t *testing.T, conn *store.PostgresConn) {
	t.Helper()

	_, err := conn.Pool().Exec(context.Background(), "TRUNCATE short_urls, users, url_events")
	require.NoError(t, err)
}
