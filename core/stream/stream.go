package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/pkg/async"
)

// Result is one step of a stream: either the next event or, when Done is
// true, the terminal marker carrying the zero value.
type Result[T any] struct {
	Value T
	Done  bool
}

// Stats is a point-in-time snapshot of a stream's queues and counters.
type Stats struct {
	Topics    int
	Buffered  int    // events waiting for a Next call
	Pending   int    // Next calls waiting for an event
	Delivered uint64 // events handed to Next calls
	Dropped   uint64 // events discarded by the buffer limit
	Live      bool
}

// Stream turns push-based bus deliveries on one or more topics into a
// pull-based sequence. Events are returned by Next in the order the bus
// delivered them, across all topics.
//
// At any moment at most one of the two queues is non-empty: an event that
// arrives while Next calls are waiting goes straight to the oldest of them,
// and a Next call that finds buffered events takes the oldest one.
//
// A Stream is safe for concurrent use. Bus deliveries may run concurrently
// with Next, Close and Fail.
type Stream[T any] struct {
	bus    pubsub.Subscriber[T]
	topics []string
	opts   options
	logger *slog.Logger

	// ready settles once with the subscription handle for each topic, by index.
	ready *async.Future[[]pubsub.SubscriptionID]
	// rolledBack is closed once a failed subscribe has released the topics that did subscribe.
	rolledBack chan struct{}

	mu        sync.Mutex
	pending   []chan Result[T]
	buffered  []T
	live      bool
	delivered uint64
	dropped   uint64
	stopWatch func() bool
}

// New creates a stream over topics and immediately starts subscribing to them
// concurrently. It does not wait for the subscriptions: the first Next, Close
// or Fail call does.
//
// When ctx is done the stream is closed as if Close had been called.
//
// Example:
//
//	s, err := stream.New[pubsub.Message](ctx, bus, []string{"orders", "invoices"}, stream.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//
//	for {
//		res, err := s.Next(ctx)
//		if err != nil || res.Done {
//			break
//		}
//		handle(res.Value)
//	}
func New[T any](ctx context.Context, bus pubsub.Subscriber[T], topics []string, opts ...Option) (*Stream[T], error) {
	if bus == nil {
		return nil, ErrNilBus
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	if slices.Contains(topics, "") {
		return nil, ErrEmptyTopic
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Stream[T]{
		bus:        bus,
		topics:     slices.Clone(topics),
		opts:       o,
		live:       true,
		rolledBack: make(chan struct{}),
	}
	s.logger = o.logger.With(logger.Component("stream"), logger.Topics(s.topics))

	// ready is assigned before any subscription exists, so every delivery sees it
	ready, settle := async.NewPromise[[]pubsub.SubscriptionID]()
	s.ready = ready
	go func() {
		defer close(s.rolledBack)

		ids, err := s.subscribeAll(ctx, s.topics)
		if err != nil {
			s.mu.Lock()
			s.live = false
			s.mu.Unlock()

			// Deliveries blocked in ingest must return before Unsubscribe can wait on them
			settle(nil, err)
			s.rollback(ctx, ids)
			return
		}
		settle(ids, nil)
	}()

	s.mu.Lock()
	s.stopWatch = context.AfterFunc(ctx, s.closeOnCancel)
	s.mu.Unlock()

	return s, nil
}

// Next returns the next event, waiting for one if none is buffered.
// Once the stream is closed or failed it returns the terminal marker
// immediately, without contacting the bus.
//
// If ctx is done while waiting, Next gives up its place in the queue and
// returns ctx.Err(). An event is never lost this way: if one was handed to
// the call at the same moment, Next returns it instead.
func (s *Stream[T]) Next(ctx context.Context) (Result[T], error) {
	if _, err := s.ready.AwaitContext(ctx); err != nil {
		return Result[T]{}, err
	}

	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return Result[T]{Done: true}, nil
	}

	if len(s.buffered) > 0 {
		event := s.popBuffered()
		s.delivered++
		s.mu.Unlock()
		return Result[T]{Value: event}, nil
	}

	wait := make(chan Result[T], 1)
	s.pending = append(s.pending, wait)
	s.mu.Unlock()

	select {
	case res := <-wait:
		return res, nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	removed := s.removePending(wait)
	s.mu.Unlock()

	if removed {
		return Result[T]{}, ctx.Err()
	}

	// Satisfied by ingest or teardown while canceling
	return <-wait, nil
}

// Close unsubscribes from every topic and releases all waiting Next calls
// with the terminal marker. It always returns the terminal marker.
// Calling Close again, or after Fail, does nothing.
//
// The error reports a failed subscription or failed unsubscribe calls
// (wrapped in ErrUnsubscribe). Unsubscribe failures are not retried.
func (s *Stream[T]) Close(ctx context.Context) (Result[T], error) {
	ids, err := s.ready.AwaitContext(ctx)
	if err != nil {
		return Result[T]{Done: true}, s.awaitRollback(ctx, err)
	}

	return Result[T]{Done: true}, s.teardown(ctx, ids)
}

// Fail tears the stream down like Close and then returns cause, so the caller
// can stop consuming with the failure that made it stop. A nil cause is
// replaced by ErrStreamFailed. Unsubscribe failures are joined to cause.
func (s *Stream[T]) Fail(ctx context.Context, cause error) error {
	if cause == nil {
		cause = ErrStreamFailed
	}

	ids, err := s.ready.AwaitContext(ctx)
	if err != nil {
		return s.awaitRollback(ctx, err)
	}

	if err := s.teardown(ctx, ids); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

// Topics returns a copy of the topics the stream subscribes to.
func (s *Stream[T]) Topics() []string {
	return slices.Clone(s.topics)
}

// Stats returns a snapshot of the stream state.
func (s *Stream[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Topics:    len(s.topics),
		Buffered:  len(s.buffered),
		Pending:   len(s.pending),
		Delivered: s.delivered,
		Dropped:   s.dropped,
		Live:      s.live,
	}
}

// ingest is the bus delivery callback bound to every subscription.
func (s *Stream[T]) ingest(ctx context.Context, event T) {
	// Subscription handles must be complete before any queue mutation
	if _, err := s.ready.Await(); err != nil {
		s.logger.DebugContext(ctx, "event dropped, subscriptions not established", logger.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live {
		return
	}

	if len(s.pending) > 0 {
		wait := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.delivered++
		wait <- Result[T]{Value: event}
		return
	}

	if s.opts.bufferLimit > 0 && len(s.buffered) >= s.opts.bufferLimit {
		s.dropped++
		s.logger.WarnContext(ctx, "buffer limit reached, event dropped",
			logger.Count("limit", s.opts.bufferLimit),
			slog.String("policy", s.opts.overflow.String()))

		if s.opts.overflow == DropNewest {
			return
		}
		s.popBuffered()
	}

	s.buffered = append(s.buffered, event)
}

// teardown runs at most once per stream: the live flag is checked and
// cleared under the same lock that guards both queues.
func (s *Stream[T]) teardown(ctx context.Context, ids []pubsub.SubscriptionID) error {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return nil
	}
	s.live = false
	pending := s.pending
	discarded := len(s.buffered)
	s.pending = nil
	s.buffered = nil
	stop := s.stopWatch
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	// Unsubscribing must complete once started, even if the caller gives up
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i, id := range ids {
		if err := s.bus.Unsubscribe(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "unsubscribe failed",
				logger.Topic(s.topics[i]),
				logger.SubscriptionID(string(id)),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("topic %q: %w", s.topics[i], err))
		}
	}

	for _, wait := range pending {
		wait <- Result[T]{Done: true}
	}

	s.logger.DebugContext(ctx, "stream terminated",
		logger.Count("released", len(pending)),
		logger.Count("discarded", discarded))

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrUnsubscribe, errors.Join(errs...))
	}
	return nil
}

func (s *Stream[T]) subscribeAll(ctx context.Context, topics []string) ([]pubsub.SubscriptionID, error) {
	futures := make([]*async.Future[pubsub.SubscriptionID], len(topics))
	for i, topic := range topics {
		futures[i] = async.Async(ctx, topic, s.subscribe)
	}

	ids, err := async.WaitAll(futures...)
	if err != nil {
		s.logger.WarnContext(ctx, "subscribe failed", logger.Error(err))
		return ids, fmt.Errorf("%w: %w", ErrSubscribe, err)
	}

	s.logger.DebugContext(ctx, "subscriptions established")
	return ids, nil
}

// rollback releases the topics that did subscribe when another one failed.
// ids holds an empty handle for every topic that failed.
func (s *Stream[T]) rollback(ctx context.Context, ids []pubsub.SubscriptionID) {
	cleanup := context.WithoutCancel(ctx)
	for i, id := range ids {
		if id == "" {
			continue
		}
		if err := s.bus.Unsubscribe(cleanup, id); err != nil {
			s.logger.WarnContext(ctx, "rollback unsubscribe failed",
				logger.Topic(s.topics[i]),
				logger.SubscriptionID(string(id)),
				logger.Error(err))
		}
	}
}

// awaitRollback waits for a failed subscribe to release its topics and then
// returns the subscribe error, or ctx.Err() if ctx ends first.
// Any other error is returned as is.
func (s *Stream[T]) awaitRollback(ctx context.Context, err error) error {
	if !errors.Is(err, ErrSubscribe) {
		return err
	}
	select {
	case <-s.rolledBack:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Stream[T]) subscribe(ctx context.Context, topic string) (pubsub.SubscriptionID, error) {
	id, err := s.bus.Subscribe(ctx, topic, s.ingest, s.opts.subscribeOpts...)
	if err != nil {
		return "", fmt.Errorf("topic %q: %w", topic, err)
	}
	return id, nil
}

func (s *Stream[T]) closeOnCancel() {
	if _, err := s.Close(context.Background()); err != nil {
		s.logger.Warn("close on context cancellation failed", logger.Error(err))
	}
}

// popBuffered removes the head of the buffer. Callers hold mu.
func (s *Stream[T]) popBuffered() T {
	var zero T
	event := s.buffered[0]
	s.buffered[0] = zero
	s.buffered = s.buffered[1:]
	return event
}

// removePending drops wait from the pending queue. Callers hold mu.
func (s *Stream[T]) removePending(wait chan Result[T]) bool {
	i := slices.Index(s.pending, wait)
	if i < 0 {
		return false
	}
	s.pending = slices.Delete(s.pending, i, i+1)
	return true
}
