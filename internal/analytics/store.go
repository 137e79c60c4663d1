package analytics

import "context"

// Store persists analytics events.
type Store interface {
	SaveURLCreated(ctx context.Context, event *URLCreatedEvent) error
	SaveURLAccessed(ctx context.Context, event *URLAccessedEvent) error
	SaveURLDeleted(ctx context.Context, event *URLDeletedEvent) error
}
