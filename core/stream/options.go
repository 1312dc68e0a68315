package stream

import (
	"log/slog"

	"github.com/dmitrymomot/pullstream/core/pubsub"
)

// OverflowPolicy decides which event is discarded when the buffer limit is reached.
type OverflowPolicy int

const (
	// DropOldest evicts the oldest buffered event to make room for the new one.
	DropOldest OverflowPolicy = iota

	// DropNewest discards the incoming event and keeps the buffer as is.
	DropNewest
)

func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "drop_oldest"
	case DropNewest:
		return "drop_newest"
	default:
		return "unknown"
	}
}

type options struct {
	logger        *slog.Logger
	subscribeOpts []pubsub.SubscribeOption
	bufferLimit   int
	overflow      OverflowPolicy
}

// Option configures a Stream.
type Option func(*options)

// WithLogger sets the diagnostic sink. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSubscribeOptions forwards opts to every Subscribe call the stream makes.
func WithSubscribeOptions(opts ...pubsub.SubscribeOption) Option {
	return func(o *options) {
		o.subscribeOpts = append(o.subscribeOpts, opts...)
	}
}

// WithBufferLimit bounds the number of buffered events.
// When the limit is reached, policy decides which event is dropped.
// A limit of zero or less keeps the buffer unbounded, which is the default.
func WithBufferLimit(limit int, policy OverflowPolicy) Option {
	return func(o *options) {
		if limit > 0 {
			o.bufferLimit = limit
			o.overflow = policy
		}
	}
}
