package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sandyurl/shortener/internal/messaging"
)

// Publishers holds one typed publish function per topic.
type Publishers struct {
	URLCreated  messaging.Publish[URLCreatedEvent]
	URLAccessed messaging.Publish[URLAccessedEvent]
	URLDeleted  messaging.Publish[URLDeletedEvent]
}

// NewPublishers binds every analytics topic to publisher.
func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		URLCreated:  messaging.NewPublishFunc[URLCreatedEvent](publisher, TopicURLCreated),
		URLAccessed: messaging.NewPublishFunc[URLAccessedEvent](publisher, TopicURLAccessed),
		URLDeleted:  messaging.NewPublishFunc[URLDeletedEvent](publisher, TopicURLDeleted),
	}
}

// NopPublishers discards every event.
func NopPublishers() *Publishers {
	return &Publishers{
		URLCreated:  func(context.Context, *URLCreatedEvent) error { return nil },
		URLAccessed: func(context.Context, *URLAccessedEvent) error { return nil },
		URLDeleted:  func(context.Context, *URLDeletedEvent) error { return nil },
	}
}
