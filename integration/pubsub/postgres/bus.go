package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/integration/database/pg"
	"github.com/dmitrymomot/pullstream/pkg/async"
)

// MaxPayloadSize is the largest encoded message NOTIFY accepts by default.
const MaxPayloadSize = 8000

// Bus is a pubsub.Bus over PostgreSQL LISTEN/NOTIFY carrying JSON-encoded
// pubsub.Message envelopes. Topics are channel names and are quoted, so any
// string is a valid topic. Pattern subscriptions are not supported.
type Bus struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[pubsub.SubscriptionID]*listener
	closed    bool
}

type listener struct {
	id      pubsub.SubscriptionID
	topic   string
	channel string
	conn    *pgxpool.Conn
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ pubsub.Bus[pubsub.Message] = (*Bus)(nil)

// New creates a bus on top of pool. The bus does not own the pool.
func New(pool *pgxpool.Pool, opts ...Option) *Bus {
	b := &Bus{
		pool:      pool,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: make(map[pubsub.SubscriptionID]*listener),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("pubsub.postgres"))
	return b
}

// Subscribe implements pubsub.Subscriber. It holds one pooled connection
// until the subscription is released.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler pubsub.Handler[pubsub.Message], opts ...pubsub.SubscribeOption) (pubsub.SubscriptionID, error) {
	if topic == "" {
		return "", pubsub.ErrEmptyTopic
	}
	if handler == nil {
		return "", pubsub.ErrNilHandler
	}
	if pubsub.NewSubscribeOptions(opts...).Pattern {
		return "", fmt.Errorf("%w: postgres channels are exact names", pubsub.ErrPatternUnsupported)
	}
	if b.isClosed() {
		return "", pubsub.ErrBusClosed
	}

	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: topic %q: %w", ErrListenFailed, topic, err)
	}

	channel := pgx.Identifier{topic}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return "", fmt.Errorf("%w: topic %q: %w", ErrListenFailed, topic, err)
	}

	lctx, cancel := context.WithCancel(context.Background())
	l := &listener{
		id:      pubsub.NewSubscriptionID(),
		topic:   topic,
		channel: channel,
		conn:    conn,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		close(l.done)
		_ = b.release(context.WithoutCancel(ctx), l)
		return "", pubsub.ErrBusClosed
	}
	b.listeners[l.id] = l
	b.mu.Unlock()

	go b.listen(lctx, l, handler)

	b.logger.DebugContext(ctx, "listening",
		logger.Topic(topic),
		logger.SubscriptionID(string(l.id)))

	return l.id, nil
}

// Unsubscribe implements pubsub.Subscriber. It stops the listen loop, issues
// UNLISTEN and returns the connection to the pool.
func (b *Bus) Unsubscribe(ctx context.Context, id pubsub.SubscriptionID) error {
	b.mu.Lock()
	l, ok := b.listeners[id]
	if ok {
		delete(b.listeners, id)
	}
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", pubsub.ErrSubscriptionNotFound, id)
	}

	if err := b.release(ctx, l); err != nil {
		return err
	}

	b.logger.DebugContext(ctx, "unlistened",
		logger.Topic(l.topic),
		logger.SubscriptionID(string(id)))
	return nil
}

// Publish implements pubsub.Publisher using pg_notify. When ctx carries a
// transaction (see pg.WithTx) the notification is sent inside it and
// delivered on commit.
func (b *Bus) Publish(ctx context.Context, topic string, msg pubsub.Message) error {
	if topic == "" {
		return pubsub.ErrEmptyTopic
	}

	data, err := json.Marshal(msg.Prepare(topic))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	if len(data) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	const query = "SELECT pg_notify($1, $2)"
	if tx, ok := pg.TxFromContext(ctx); ok {
		_, err = tx.Exec(ctx, query, topic, string(data))
	} else {
		_, err = b.pool.Exec(ctx, query, topic, string(data))
	}
	if err != nil {
		return fmt.Errorf("%w: topic %q: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// Close releases every listener in parallel. Calling it again is a no-op.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	listeners := b.listeners
	b.listeners = make(map[pubsub.SubscriptionID]*listener)
	b.mu.Unlock()

	ctx := context.Background()
	futures := make([]*async.ExecFuture, 0, len(listeners))
	for _, l := range listeners {
		futures = append(futures, async.Exec(ctx, l, b.release))
	}

	err := async.ExecAll(futures...)
	b.logger.Info("postgres bus closed", logger.Count("subscriptions", len(listeners)))
	return err
}

func (b *Bus) release(ctx context.Context, l *listener) error {
	l.cancel()

	select {
	case <-l.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	defer l.conn.Release()

	conn := l.conn.Conn()
	if conn.IsClosed() {
		return nil
	}

	if _, err := conn.Exec(ctx, "UNLISTEN "+l.channel); err != nil {
		// A connection still listening must not go back to the pool
		_ = conn.Close(ctx)
		return fmt.Errorf("unlisten %s: %w", l.topic, err)
	}
	return nil
}

func (b *Bus) listen(ctx context.Context, l *listener, handler pubsub.Handler[pubsub.Message]) {
	defer close(l.done)

	conn := l.conn.Conn()
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				b.logger.Error("listen loop stopped",
					logger.Topic(l.topic),
					logger.SubscriptionID(string(l.id)),
					logger.Error(err))
			}
			return
		}

		var msg pubsub.Message
		if err := json.Unmarshal([]byte(n.Payload), &msg); err != nil {
			b.logger.Warn("malformed notification skipped",
				logger.Topic(l.topic),
				logger.Error(err))
			continue
		}
		if msg.Topic == "" {
			msg.Topic = n.Channel
		}
		handler(ctx, msg)
	}
}

func (b *Bus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
