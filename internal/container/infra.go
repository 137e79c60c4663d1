package container

import (
	"context"
	"fmt"

	"github.com/samber/do"
	"github.com/sandyurl/shortener/internal/metrics"
	"github.com/sandyurl/shortener/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console or JSON logger at the given level.
func NewLogger(format, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var cfg zap.Config

	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// LoggerPackage provides the process logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

// RedisPackage provides the shared Redis connection. It is connected on first
// use and closed by injector shutdown.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.RedisConn, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		conn, err := store.ConnectRedis(context.Background(), store.RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
		})
		if err != nil {
			return nil, err
		}

		logger.Info("connected to redis", zap.String("addr", opts.RedisAddr))

		return conn, nil
	})
}

// PostgresPackage provides the shared PostgreSQL pool with migrations applied.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.PostgresConn, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		conn, err := store.ConnectPostgres(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, err
		}

		logger.Info("connected to postgres")

		return conn, nil
	})
}

// MetricsPackage provides the prometheus collectors.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}
