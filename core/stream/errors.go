package stream

import "errors"

var (
	// ErrNoTopics is returned by New when no topic is given.
	ErrNoTopics = errors.New("stream: at least one topic is required")

	// ErrNilBus is returned by New when the bus is nil.
	ErrNilBus = errors.New("stream: bus is nil")

	// ErrEmptyTopic is returned by New when a topic name is empty.
	ErrEmptyTopic = errors.New("stream: topic is empty")

	// ErrSubscribe wraps a failure to establish the stream's subscriptions.
	// Every Next, Close and Fail call on that stream returns it.
	ErrSubscribe = errors.New("stream: subscribe failed")

	// ErrUnsubscribe wraps failures to release subscriptions during teardown.
	ErrUnsubscribe = errors.New("stream: unsubscribe failed")

	// ErrStreamFailed is what Fail propagates when called with a nil error.
	ErrStreamFailed = errors.New("stream: failed")
)
