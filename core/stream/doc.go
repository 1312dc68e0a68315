// Package stream adapts a push-based publish/subscribe bus into a pull-based
// sequence of events.
//
// A Stream subscribes to one or more topics when it is created and keeps two
// FIFO queues: events that arrived before anyone asked for them, and Next
// calls that are waiting for an event. Whichever side comes second is matched
// against the oldest entry of the other, so events come out in the order the
// bus delivered them, whether the producer or the consumer is faster.
//
// # Lifecycle
//
// New returns immediately; subscribing happens in the background, one call per
// topic, all concurrently. The outcome is memoized: every Next, Close, Fail and
// bus delivery waits for the same result and subscribe is never retried. If
// any topic fails to subscribe, the topics that succeeded are released and
// every call reports an error wrapping ErrSubscribe.
//
// Close and Fail tear the stream down exactly once, however many times and
// from however many goroutines they are called: every subscription is released
// on the bus, waiting Next calls receive the terminal marker and buffered
// events are discarded. Afterwards Next returns the terminal marker right away.
// Canceling the context passed to New has the same effect as Close.
//
// # Usage
//
//	bus := pubsub.NewMemoryBus[pubsub.Message]()
//
//	s, err := stream.New[pubsub.Message](ctx, bus, []string{"orders", "invoices"})
//	if err != nil {
//		return err
//	}
//
//	for msg, err := range s.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(msg.Topic, string(msg.Payload))
//	}
//
// The same loop written against the step API:
//
//	for {
//		res, err := s.Next(ctx)
//		if err != nil {
//			return s.Fail(ctx, err)
//		}
//		if res.Done {
//			return nil
//		}
//		fmt.Println(res.Value.Topic)
//	}
//
// # Buffering
//
// The buffer is unbounded by default. WithBufferLimit caps it and picks which
// event to discard on overflow; discarded events are counted in Stats.Dropped.
// There is no backpressure towards publishers.
//
// # Errors
//
// Unsubscribe failures during teardown are logged, not retried, and returned
// wrapped in ErrUnsubscribe to the Close or Fail call that ran the teardown.
// Some subscriptions may stay active on the bus in that case.
package stream
