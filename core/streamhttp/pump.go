package streamhttp

import (
	"context"

	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/core/stream"
)

type item struct {
	msg pubsub.Message
	err error
}

// pump pulls from s until it terminates or ctx is done. The returned channel
// is closed when pulling stops; leaving early closes the stream.
func pump(ctx context.Context, s *stream.Stream[pubsub.Message]) <-chan item {
	out := make(chan item)

	go func() {
		defer close(out)
		for msg, err := range s.All(ctx) {
			select {
			case out <- item{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
