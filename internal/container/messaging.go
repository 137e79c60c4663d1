package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/sandyurl/shortener/internal/analytics"
	astore "github.com/sandyurl/shortener/internal/analytics/store"
	"github.com/sandyurl/shortener/internal/messaging"
	"github.com/sandyurl/shortener/internal/store"
	"go.uber.org/zap"
)

// ConsumerGroupName is the redis stream consumer group of the analytics consumers.
const ConsumerGroupName = "analytics"

// inProcessBus is shared by publisher and subscriber when Events is memory.
type inProcessBus struct {
	*gochannel.GoChannel
}

// PublisherGroupPackage provides the analytics publishers on top of the
// configured event transport.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*inProcessBus, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return &inProcessBus{gochannel.NewGoChannel(gochannel.Config{}, messaging.NewZapLoggerAdapter(logger))}, nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var publisher message.Publisher

		switch opts.Events {
		case BackendRedis:
			p, err := redisstream.NewPublisher(redisstream.PublisherConfig{
				Client:     do.MustInvoke[*store.RedisConn](i).Client(),
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			}, messaging.NewZapLoggerAdapter(logger))
			if err != nil {
				return nil, fmt.Errorf("create redis stream publisher: %w", err)
			}

			publisher = p
		case BackendMemory:
			publisher = do.MustInvoke[*inProcessBus](i)
		default:
			return nil, fmt.Errorf("unknown events transport %q", opts.Events)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Publishers, error) {
		return analytics.NewPublishers(do.MustInvoke[*messaging.PublisherGroup](i).Publisher()), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers. Events are saved to
// PostgreSQL when it is the storage backend and logged otherwise.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.Storage == BackendPostgres {
			return astore.NewPostgres(do.MustInvoke[*store.PostgresConn](i).Pool()), nil
		}

		return astore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber

		switch opts.Events {
		case BackendRedis:
			s, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*store.RedisConn](i).Client(),
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: ConsumerGroupName,
			}, messaging.NewZapLoggerAdapter(logger))
			if err != nil {
				return nil, fmt.Errorf("create redis stream subscriber: %w", err)
			}

			subscriber = s
		case BackendMemory:
			subscriber = do.MustInvoke[*inProcessBus](i)
		default:
			return nil, fmt.Errorf("unknown events transport %q", opts.Events)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		analytics.RegisterConsumers(group, subscriber, do.MustInvoke[analytics.Store](i), logger)

		return group, nil
	})
}
