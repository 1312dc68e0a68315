// Package pubsub defines the topic-keyed publish/subscribe contract used by
// streams and ships an in-memory implementation.
//
// A Bus delivers events through callbacks: Subscribe registers a Handler for a
// topic and returns an opaque SubscriptionID, Unsubscribe releases it. Network
// backends live under integration/pubsub and carry Message envelopes whose
// payload is JSON.
//
// # Usage
//
//	bus := pubsub.NewMemoryBus[pubsub.Message]()
//	defer bus.Close()
//
//	id, err := bus.Subscribe(ctx, "orders", func(ctx context.Context, m pubsub.Message) {
//		order, err := pubsub.Decode[Order](m)
//		// ...
//	})
//	defer bus.Unsubscribe(ctx, id)
//
//	msg, _ := pubsub.NewMessage("orders", Order{ID: "42"})
//	_ = bus.Publish(ctx, "orders", msg)
//
// # Pattern Subscriptions
//
// AsPattern treats the topic as a glob ("orders.*"). MemoryBus matches with
// path.Match, the Redis backend uses PSUBSCRIBE, and the Postgres backend
// rejects patterns with ErrPatternUnsupported.
//
// # Delivery Semantics
//
// The bus gives no ordering promise across topics. MemoryBus delivers
// synchronously within Publish; network backends deliver from one goroutine
// per subscription. Delivery guarantees beyond that belong to the backend.
package pubsub
