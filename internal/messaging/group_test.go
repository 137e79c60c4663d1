package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sandyurl/shortener/internal/analytics"
	"github.com/sandyurl/shortener/internal/analytics/store"
	"github.com/sandyurl/shortener/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// topicSubscriber fails to subscribe to one topic and remembers the context
// every other subscription was made with.
type topicSubscriber struct {
	mu        sync.Mutex
	failTopic string
	contexts  map[string]context.Context
	closed    bool
}

func newTopicSubscriber(failTopic string) *topicSubscriber {
	return &topicSubscriber{failTopic: failTopic, contexts: make(map[string]context.Context)}
}

func (s *topicSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if topic == s.failTopic {
		return nil, errors.New("consumer group analytics: NOGROUP")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.contexts[topic] = ctx

	return make(chan *message.Message), nil
}

func (s *topicSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

type failingRunnable struct {
	shutdownErr error
	shutdown    bool
}

func (f *failingRunnable) Start(_ context.Context) error { return nil }

func (f *failingRunnable) Shutdown() error {
	f.shutdown = true

	return f.shutdownErr
}

func TestConsumerGroup_Start(t *testing.T) {
	t.Run("starts a consumer per analytics topic", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		sub := newTopicSubscriber("")

		group := messaging.NewConsumerGroup(sub, zap.New(core))
		analytics.RegisterConsumers(group, sub, store.NewNoop(zap.NewNop()), zap.NewNop())

		require.NoError(t, group.Start(context.Background()))
		t.Cleanup(func() { _ = group.Shutdown() })

		started := logs.FilterMessage("consumer group started").All()
		require.Len(t, started, 1)
		assert.Equal(t,
			[]any{analytics.TopicURLCreated, analytics.TopicURLAccessed, analytics.TopicURLDeleted},
			started[0].ContextMap()["topics"],
		)
	})

	t.Run("stops started consumers when a topic cannot be subscribed", func(t *testing.T) {
		sub := newTopicSubscriber(analytics.TopicURLDeleted)

		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		analytics.RegisterConsumers(group, sub, store.NewNoop(zap.NewNop()), zap.NewNop())

		err := group.Start(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOGROUP")

		sub.mu.Lock()
		defer sub.mu.Unlock()

		require.Len(t, sub.contexts, 2)

		for topic, ctx := range sub.contexts {
			assert.Error(t, ctx.Err(), "consumer for %s should be stopped", topic)
		}
	})
}

func TestConsumerGroup_Shutdown(t *testing.T) {
	t.Run("stops consumers and closes the subscriber", func(t *testing.T) {
		sub := newTopicSubscriber("")

		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		analytics.RegisterConsumers(group, sub, store.NewNoop(zap.NewNop()), zap.NewNop())
		require.NoError(t, group.Start(context.Background()))

		require.NoError(t, group.Shutdown())

		sub.mu.Lock()
		defer sub.mu.Unlock()

		assert.True(t, sub.closed)

		for _, ctx := range sub.contexts {
			assert.Error(t, ctx.Err())
		}
	})

	t.Run("joins every shutdown error", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newTopicSubscriber(""), zap.NewNop())
		created := &failingRunnable{shutdownErr: errors.New("url.created consumer stuck")}
		deleted := &failingRunnable{shutdownErr: errors.New("url.deleted consumer stuck")}

		group.Add(created)
		group.Add(deleted)
		require.NoError(t, group.Start(context.Background()))

		err := group.Shutdown()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "url.created consumer stuck")
		assert.Contains(t, err.Error(), "url.deleted consumer stuck")
		assert.True(t, created.shutdown)
		assert.True(t, deleted.shutdown)
	})
}
