package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sandyurl/shortener/internal/messaging"
	"go.uber.org/zap"
)

// RegisterConsumers adds a consumer for every analytics topic to group, each
// saving its events to store.
func RegisterConsumers(group *messaging.ConsumerGroup, subscriber message.Subscriber, store Store, logger *zap.Logger) {
	group.Add(messaging.NewConsumer(subscriber, TopicURLCreated, store.SaveURLCreated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicURLAccessed, store.SaveURLAccessed, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicURLDeleted, store.SaveURLDeleted, logger))
}
