package pubsub

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionID identifies a single subscription on a bus.
// It is opaque to callers and only meaningful to the bus that issued it.
type SubscriptionID string

// NewSubscriptionID returns a random subscription identifier.
func NewSubscriptionID() SubscriptionID {
	return SubscriptionID(uuid.NewString())
}

// Handler receives events delivered for a subscription.
// A bus invokes it once per delivered event. Handlers must not block for long:
// most backends deliver from a single goroutine per subscription.
type Handler[T any] func(ctx context.Context, event T)

// Subscriber registers and releases topic subscriptions.
type Subscriber[T any] interface {
	// Subscribe starts delivering events published to topic to handler.
	// It returns once the subscription is established on the backend.
	// Implementations must not invoke handler synchronously from within
	// Subscribe; deliveries may start on another goroutine before it returns.
	Subscribe(ctx context.Context, topic string, handler Handler[T], opts ...SubscribeOption) (SubscriptionID, error)

	// Unsubscribe stops delivery for id. After it returns the handler
	// is not invoked again for that subscription.
	Unsubscribe(ctx context.Context, id SubscriptionID) error
}

// Publisher sends events to topics.
type Publisher[T any] interface {
	Publish(ctx context.Context, topic string, event T) error
}

// Bus is a topic-keyed publish/subscribe primitive.
type Bus[T any] interface {
	Publisher[T]
	Subscriber[T]

	// Close releases every subscription and backend resource.
	Close() error
}

// SubscribeOptions holds per-subscription settings.
type SubscribeOptions struct {
	// Pattern treats the topic as a glob (e.g. "orders.*") instead of an exact name.
	Pattern bool
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*SubscribeOptions)

// AsPattern makes the subscription match every topic the glob matches.
func AsPattern() SubscribeOption {
	return func(o *SubscribeOptions) {
		o.Pattern = true
	}
}

// NewSubscribeOptions applies opts over the defaults.
func NewSubscribeOptions(opts ...SubscribeOption) SubscribeOptions {
	var o SubscribeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
