// Package redis implements the event bus over Redis PUBLISH/SUBSCRIBE.
//
// Messages travel as JSON-encoded pubsub.Message envelopes. Every Subscribe
// call opens its own *redis.PubSub, waits for Redis to confirm it and starts a
// goroutine that decodes incoming messages and hands them to the handler.
// Payloads that fail to decode are logged and skipped. Unsubscribe closes the
// PubSub and waits for that goroutine, so the handler is not called afterwards.
//
// Subscribing with pubsub.AsPattern uses PSUBSCRIBE; the topic is a Redis glob
// and each message carries the concrete topic it was published to.
//
// Redis pub/sub is fire-and-forget: events published while nobody is
// subscribed are lost, and delivery is at most once.
//
//	client, err := redisdb.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	bus := redis.New(client, redis.WithLogger(log))
//	defer bus.Close()
//
//	s, err := stream.New[pubsub.Message](ctx, bus, []string{"orders"})
package redis
