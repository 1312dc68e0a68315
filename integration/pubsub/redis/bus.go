package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/pkg/async"
)

// Bus is a pubsub.Bus over Redis PUBLISH/SUBSCRIBE carrying JSON-encoded
// pubsub.Message envelopes. Each subscription owns its own *redis.PubSub and
// delivery goroutine, so events for one subscription arrive in order.
type Bus struct {
	client redis.UniversalClient
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[pubsub.SubscriptionID]*subscription
	closed bool
}

type subscription struct {
	id    pubsub.SubscriptionID
	topic string
	ps    *redis.PubSub
	done  chan struct{}
}

var _ pubsub.Bus[pubsub.Message] = (*Bus)(nil)

// New creates a bus on top of client. The bus does not own the client:
// Close releases subscriptions but leaves the client open.
func New(client redis.UniversalClient, opts ...Option) *Bus {
	b := &Bus{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:   make(map[pubsub.SubscriptionID]*subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("pubsub.redis"))
	return b
}

// Subscribe implements pubsub.Subscriber. It returns after Redis confirms
// the subscription. With pubsub.AsPattern the topic is a Redis glob and
// PSUBSCRIBE is used.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler pubsub.Handler[pubsub.Message], opts ...pubsub.SubscribeOption) (pubsub.SubscriptionID, error) {
	if topic == "" {
		return "", pubsub.ErrEmptyTopic
	}
	if handler == nil {
		return "", pubsub.ErrNilHandler
	}
	if b.isClosed() {
		return "", pubsub.ErrBusClosed
	}

	var ps *redis.PubSub
	if pubsub.NewSubscribeOptions(opts...).Pattern {
		ps = b.client.PSubscribe(ctx, topic)
	} else {
		ps = b.client.Subscribe(ctx, topic)
	}

	// The first reply on the connection is the subscription confirmation
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return "", fmt.Errorf("%w: topic %q: %w", ErrSubscribeFailed, topic, err)
	}

	sub := &subscription{
		id:    pubsub.NewSubscriptionID(),
		topic: topic,
		ps:    ps,
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = ps.Close()
		return "", pubsub.ErrBusClosed
	}
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go b.pump(sub, handler)

	b.logger.DebugContext(ctx, "subscribed",
		logger.Topic(topic),
		logger.SubscriptionID(string(sub.id)))

	return sub.id, nil
}

// Unsubscribe implements pubsub.Subscriber. It waits for the delivery
// goroutine to exit, or for ctx to be done.
func (b *Bus) Unsubscribe(ctx context.Context, id pubsub.SubscriptionID) error {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", pubsub.ErrSubscriptionNotFound, id)
	}

	if err := b.release(ctx, sub); err != nil {
		return err
	}

	b.logger.DebugContext(ctx, "unsubscribed",
		logger.Topic(sub.topic),
		logger.SubscriptionID(string(id)))
	return nil
}

// Publish implements pubsub.Publisher. The message ID, timestamp and topic
// are filled in before encoding.
func (b *Bus) Publish(ctx context.Context, topic string, msg pubsub.Message) error {
	if topic == "" {
		return pubsub.ErrEmptyTopic
	}

	data, err := json.Marshal(msg.Prepare(topic))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	if err := b.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("%w: topic %q: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// Close releases every subscription in parallel. Later calls to Subscribe
// return pubsub.ErrBusClosed. Calling Close more than once is safe.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[pubsub.SubscriptionID]*subscription)
	b.mu.Unlock()

	ctx := context.Background()
	futures := make([]*async.ExecFuture, 0, len(subs))
	for _, sub := range subs {
		futures = append(futures, async.Exec(ctx, sub, b.release))
	}

	err := async.ExecAll(futures...)
	b.logger.Info("redis bus closed", logger.Count("subscriptions", len(subs)))
	return err
}

func (b *Bus) release(ctx context.Context, sub *subscription) error {
	err := sub.ps.Close()

	select {
	case <-sub.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err != nil {
		return fmt.Errorf("close subscription %s: %w", sub.id, err)
	}
	return nil
}

// pump decodes messages until the PubSub is closed.
func (b *Bus) pump(sub *subscription, handler pubsub.Handler[pubsub.Message]) {
	defer close(sub.done)

	ctx := context.Background()
	for raw := range sub.ps.Channel() {
		var msg pubsub.Message
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			b.logger.Warn("malformed message skipped",
				logger.Topic(raw.Channel),
				logger.SubscriptionID(string(sub.id)),
				logger.Error(err))
			continue
		}
		if msg.Topic == "" {
			msg.Topic = raw.Channel
		}
		handler(ctx, msg)
	}
}

func (b *Bus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
