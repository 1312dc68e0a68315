package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation.
// It is settled exactly once; every Await call, before or after settlement,
// observes the same value and error.
type Future[U any] struct {
	value U
	err   error
	once  sync.Once
	done  chan struct{}
}

func newFuture[U any]() *Future[U] {
	return &Future[U]{done: make(chan struct{})}
}

// settle stores the outcome. Later calls are ignored.
func (f *Future[U]) settle(value U, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// NewPromise returns an unsettled future together with the function that
// settles it. Only the first call to settle has an effect. Use it when the
// future must be visible before the computation that settles it starts.
func NewPromise[U any]() (*Future[U], func(U, error)) {
	f := newFuture[U]()
	return f, f.settle
}

// Resolved returns a future that is already completed with value.
func Resolved[U any](value U) *Future[U] {
	f := newFuture[U]()
	f.settle(value, nil)
	return f
}

// Rejected returns a future that is already completed with err.
func Rejected[U any](err error) *Future[U] {
	f := newFuture[U]()
	var zero U
	f.settle(zero, err)
	return f
}

// Await blocks until the computation completes and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.value, f.err
}

// AwaitContext blocks until the computation completes or ctx is done.
// Cancelling ctx abandons the wait only; the computation keeps running and
// later callers still observe its outcome.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits for the computation with a timeout.
// Returns ErrTimeout if the timeout elapses before completion.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the future is settled.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// Async runs fn in a new goroutine and returns a future for its result.
// If ctx is already canceled, fn is not invoked and the future is rejected
// with ctx.Err().
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := newFuture[U]()

	go func() {
		// Early exit prevents doing work for a caller that already gave up
		if err := ctx.Err(); err != nil {
			var zero U
			f.settle(zero, err)
			return
		}

		value, err := fn(ctx, param)
		f.settle(value, err)
	}()

	return f
}

// WaitAll waits for every future to complete, even after a failure.
// The returned slice holds the value of each successful future at its index
// and the zero value for failed ones. The error joins all failures in order.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var errs []error

	for i, future := range futures {
		value, err := future.Await()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results[i] = value
	}

	return results, errors.Join(errs...)
}

// WaitAny waits for the first future to complete and returns its index,
// value and error. Returns ErrNoFutures when called with no futures.
func WaitAny[U any](futures ...*Future[U]) (int, U, error) {
	if len(futures) == 0 {
		var zero U
		return -1, zero, ErrNoFutures
	}

	type outcome struct {
		index int
		value U
		err   error
	}

	// Buffered so that late finishers never block after the winner is read
	done := make(chan outcome, len(futures))

	for i, future := range futures {
		go func(index int, f *Future[U]) {
			value, err := f.Await()
			done <- outcome{index: index, value: value, err: err}
		}(i, future)
	}

	res := <-done
	return res.index, res.value, res.err
}
