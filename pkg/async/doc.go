// Package async provides utilities for asynchronous programming with Go generics.
//
// This package implements a Future pattern for non-blocking operations with timeout support
// and coordination utilities for managing multiple asynchronous computations.
//
// # Core Types
//
// Future[U] represents the result of an asynchronous computation. It is settled exactly
// once and memoizes its outcome: every call to Await, whether made before or after
// completion, observes the same value and error. This makes a Future a safe "ready"
// gate shared by many goroutines.
//
// ExecFuture is the error-only variant returned by Exec.
//
// # Usage
//
// Basic asynchronous operation:
//
//	future := async.Async(ctx, "orders", func(ctx context.Context, topic string) (pubsub.SubscriptionID, error) {
//		return bus.Subscribe(ctx, topic, handler)
//	})
//
//	// Do other work...
//
//	id, err := future.Await()
//
// Waiting with a context or a timeout:
//
//	id, err := future.AwaitContext(ctx)
//	id, err = future.AwaitWithTimeout(50 * time.Millisecond)
//	if errors.Is(err, async.ErrTimeout) {
//		log.Println("Operation timed out")
//	}
//
// # Coordination Utilities
//
// WaitAll waits for all futures to complete and returns their results. Unlike a
// fail-fast join it never returns early, so callers can inspect which futures
// succeeded and release what they acquired:
//
//	ids, err := async.WaitAll(futures...)
//
// WaitAny returns as soon as any future completes:
//
//	index, id, err := async.WaitAny(futures...)
//
// ExecAll and ExecAny are the ExecFuture counterparts.
//
// # Error Handling
//
//   - ErrTimeout: returned when AwaitWithTimeout exceeds its duration
//   - ErrNoFutures: returned when WaitAny or ExecAny is called with no futures
//
// # Context Support
//
// If the context passed to Async or Exec is canceled before the function starts,
// the function is skipped and the future is rejected with the context's error.
// AwaitContext abandons only the wait, never the computation.
package async
