package pubsub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"

	"github.com/dmitrymomot/pullstream/core/logger"
)

// MemoryBus is an in-process Bus suitable for single-instance applications and tests.
//
// Publish delivers synchronously in the publisher's goroutine, to subscriptions
// in the order they were created. No lock is held while a handler runs, so a
// handler may call Subscribe, Unsubscribe or Publish on the same bus.
//
// Example:
//
//	bus := pubsub.NewMemoryBus[pubsub.Message](pubsub.WithMemoryLogger(logger))
//	defer bus.Close()
type MemoryBus[T any] struct {
	mu     sync.RWMutex
	subs   []*memorySubscription[T]
	byID   map[SubscriptionID]*memorySubscription[T]
	logger *slog.Logger
	closed bool
}

type memorySubscription[T any] struct {
	id      SubscriptionID
	topic   string
	pattern bool
	handler Handler[T]
}

func (s *memorySubscription[T]) matches(topic string) bool {
	if !s.pattern {
		return s.topic == topic
	}
	ok, _ := path.Match(s.topic, topic)
	return ok
}

// MemoryBusOption configures a MemoryBus.
type MemoryBusOption func(*memoryBusConfig)

type memoryBusConfig struct {
	logger *slog.Logger
}

// WithMemoryLogger configures structured logging for the bus.
func WithMemoryLogger(l *slog.Logger) MemoryBusOption {
	return func(c *memoryBusConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewMemoryBus creates an empty in-memory bus.
func NewMemoryBus[T any](opts ...MemoryBusOption) *MemoryBus[T] {
	cfg := memoryBusConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &MemoryBus[T]{
		byID:   make(map[SubscriptionID]*memorySubscription[T]),
		logger: cfg.logger.With(logger.Component("pubsub.memory")),
	}
}

// Subscribe implements Subscriber.
func (b *MemoryBus[T]) Subscribe(ctx context.Context, topic string, handler Handler[T], opts ...SubscribeOption) (SubscriptionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if topic == "" {
		return "", ErrEmptyTopic
	}
	if handler == nil {
		return "", ErrNilHandler
	}

	o := NewSubscribeOptions(opts...)
	if o.Pattern {
		if _, err := path.Match(topic, ""); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidPattern, topic)
		}
	}

	sub := &memorySubscription[T]{
		id:      NewSubscriptionID(),
		topic:   topic,
		pattern: o.Pattern,
		handler: handler,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", ErrBusClosed
	}

	b.subs = append(b.subs, sub)
	b.byID[sub.id] = sub

	b.logger.DebugContext(ctx, "subscribed",
		logger.Topic(topic),
		logger.SubscriptionID(string(sub.id)))

	return sub.id, nil
}

// Unsubscribe implements Subscriber.
func (b *MemoryBus[T]) Unsubscribe(ctx context.Context, id SubscriptionID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	sub, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	}

	delete(b.byID, id)
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			break
		}
	}

	b.logger.DebugContext(ctx, "unsubscribed",
		logger.Topic(sub.topic),
		logger.SubscriptionID(string(id)))

	return nil
}

// Publish implements Publisher. It returns after every matching handler has run.
func (b *MemoryBus[T]) Publish(ctx context.Context, topic string, event T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrEmptyTopic
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	targets := make([]*memorySubscription[T], 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(topic) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		// Skip subscriptions released by an earlier handler in this loop
		if !b.active(s.id) {
			continue
		}
		s.handler(ctx, event)
	}

	b.logger.DebugContext(ctx, "published",
		logger.Topic(topic),
		logger.Count("receivers", len(targets)))

	return nil
}

func (b *MemoryBus[T]) active(id SubscriptionID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.byID[id]
	return ok
}

// Subscriptions returns the number of active subscriptions.
func (b *MemoryBus[T]) Subscriptions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}

// Close releases every subscription. Later operations return ErrBusClosed.
// Calling Close more than once is safe.
func (b *MemoryBus[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	b.subs = nil
	clear(b.byID)
	b.logger.Info("memory bus closed")
	return nil
}
