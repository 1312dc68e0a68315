package pubsub

import "errors"

var (
	// ErrBusClosed is returned by operations on a closed bus.
	ErrBusClosed = errors.New("pubsub: bus is closed")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown or already released id.
	ErrSubscriptionNotFound = errors.New("pubsub: subscription not found")

	// ErrEmptyTopic is returned when a topic name is empty.
	ErrEmptyTopic = errors.New("pubsub: topic is empty")

	// ErrNilHandler is returned when subscribing without a handler.
	ErrNilHandler = errors.New("pubsub: handler is nil")

	// ErrPatternUnsupported is returned by backends that cannot subscribe by pattern.
	ErrPatternUnsupported = errors.New("pubsub: pattern subscriptions are not supported")

	// ErrInvalidPattern is returned when a pattern subscription uses a malformed glob.
	ErrInvalidPattern = errors.New("pubsub: invalid pattern")
)
