package stream_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pullstream/core/pubsub"
)

// recordingBus wraps a MemoryBus, counts calls and injects failures.
type recordingBus[T any] struct {
	*pubsub.MemoryBus[T]

	mu              sync.Mutex
	subscribes      map[string]int
	unsubscribes    map[pubsub.SubscriptionID]int
	failSubscribe   map[string]error
	failUnsubscribe error
	gate            chan struct{}
	handlers        []pubsub.Handler[T]
}

func newRecordingBus[T any]() *recordingBus[T] {
	return &recordingBus[T]{
		MemoryBus:     pubsub.NewMemoryBus[T](),
		subscribes:    make(map[string]int),
		unsubscribes:  make(map[pubsub.SubscriptionID]int),
		failSubscribe: make(map[string]error),
	}
}

func (b *recordingBus[T]) Subscribe(ctx context.Context, topic string, handler pubsub.Handler[T], opts ...pubsub.SubscribeOption) (pubsub.SubscriptionID, error) {
	b.mu.Lock()
	b.subscribes[topic]++
	failure := b.failSubscribe[topic]
	gate := b.gate
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if failure != nil {
		return "", failure
	}

	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()

	return b.MemoryBus.Subscribe(ctx, topic, handler, opts...)
}

func (b *recordingBus[T]) Unsubscribe(ctx context.Context, id pubsub.SubscriptionID) error {
	b.mu.Lock()
	b.unsubscribes[id]++
	failure := b.failUnsubscribe
	b.mu.Unlock()

	if err := b.MemoryBus.Unsubscribe(ctx, id); err != nil {
		return err
	}
	return failure
}

func (b *recordingBus[T]) calls() (subscribes, unsubscribes int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.subscribes {
		subscribes += n
	}
	for _, n := range b.unsubscribes {
		unsubscribes += n
	}
	return subscribes, unsubscribes
}

// unsubscribeCounts returns how many times each subscription was released.
func (b *recordingBus[T]) unsubscribeCounts() []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make([]int, 0, len(b.unsubscribes))
	for _, n := range b.unsubscribes {
		counts = append(counts, n)
	}
	return counts
}

// handler returns the delivery callback passed to the i-th successful Subscribe.
func (b *recordingBus[T]) handler(i int) pubsub.Handler[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlers[i]
}

func (b *recordingBus[T]) failOn(topic string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failSubscribe[topic] = err
}

func (b *recordingBus[T]) failUnsubscribes(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failUnsubscribe = err
}

// hold makes Subscribe block until the returned func is called.
func (b *recordingBus[T]) hold() func() {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gate = gate
	b.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

type subscriptionCounter interface {
	Subscriptions() int
}

func waitSubscriptions(t *testing.T, bus subscriptionCounter, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return bus.Subscriptions() == n
	}, time.Second, time.Millisecond)
}

func publish[T any](t *testing.T, bus pubsub.Publisher[T], topic string, event T) {
	t.Helper()
	require.NoError(t, bus.Publish(context.Background(), topic, event))
}

// pumpBus delivers from one goroutine per subscription and waits for that
// goroutine to exit in Unsubscribe, like the Redis and Postgres buses.
type pumpBus[T any] struct {
	mu       sync.Mutex
	backlog  map[string][]T
	failures map[string]error
	subs     map[pubsub.SubscriptionID]*pumpSubscription

	delivering     chan struct{}
	deliveringOnce sync.Once
}

type pumpSubscription struct {
	quit chan struct{}
	done chan struct{}
}

func newPumpBus[T any]() *pumpBus[T] {
	return &pumpBus[T]{
		backlog:    make(map[string][]T),
		failures:   make(map[string]error),
		subs:       make(map[pubsub.SubscriptionID]*pumpSubscription),
		delivering: make(chan struct{}),
	}
}

// preload queues events delivered as soon as topic is subscribed.
func (b *pumpBus[T]) preload(topic string, events ...T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.backlog[topic] = append(b.backlog[topic], events...)
}

// failAfterDelivery makes Subscribe on topic fail once another subscription
// has started delivering.
func (b *pumpBus[T]) failAfterDelivery(topic string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[topic] = err
}

func (b *pumpBus[T]) Subscribe(_ context.Context, topic string, handler pubsub.Handler[T], _ ...pubsub.SubscribeOption) (pubsub.SubscriptionID, error) {
	b.mu.Lock()
	failure := b.failures[topic]
	events := b.backlog[topic]
	b.mu.Unlock()

	if failure != nil {
		select {
		case <-b.delivering:
		case <-time.After(time.Second):
		}
		return "", failure
	}

	sub := &pumpSubscription{quit: make(chan struct{}), done: make(chan struct{})}
	id := pubsub.NewSubscriptionID()

	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		defer close(sub.done)
		for _, event := range events {
			b.deliveringOnce.Do(func() { close(b.delivering) })
			handler(context.Background(), event)
		}
		<-sub.quit
	}()

	return id, nil
}

func (b *pumpBus[T]) Unsubscribe(_ context.Context, id pubsub.SubscriptionID) error {
	b.mu.Lock()
	sub, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()

	if !ok {
		return pubsub.ErrSubscriptionNotFound
	}

	close(sub.quit)
	<-sub.done
	return nil
}

func (b *pumpBus[T]) Subscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
