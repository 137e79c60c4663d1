// Package store contains analytics.Store implementations.
package store

import (
	"context"

	"github.com/sandyurl/shortener/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs the events it receives.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	n.logger.Info("url created event received",
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.String("createdBy", event.CreatedBy),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	n.logger.Info("url accessed event received",
		zap.String("code", event.Code),
		zap.Time("accessedAt", event.AccessedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

func (n *Noop) SaveURLDeleted(_ context.Context, event *analytics.URLDeletedEvent) error {
	n.logger.Info("url deleted event received",
		zap.String("code", event.Code),
		zap.String("deletedBy", event.DeletedBy),
		zap.String("reason", event.Reason),
	)

	return nil
}
