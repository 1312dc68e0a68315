package stream

import (
	"context"
	"iter"

	"github.com/dmitrymomot/pullstream/core/logger"
)

// All returns an iterator over the stream's events for use with range.
// Iteration ends when the stream terminates. An error is yielded once and
// ends iteration. Leaving the loop early, or an error, closes the stream.
//
//	for event, err := range s.All(ctx) {
//		if err != nil {
//			return err
//		}
//		handle(event)
//	}
func (s *Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			res, err := s.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				s.closeQuietly(ctx)
				return
			}
			if res.Done {
				return
			}
			if !yield(res.Value, nil) {
				s.closeQuietly(ctx)
				return
			}
		}
	}
}

func (s *Stream[T]) closeQuietly(ctx context.Context) {
	if _, err := s.Close(context.WithoutCancel(ctx)); err != nil {
		s.logger.DebugContext(ctx, "close after iteration failed", logger.Error(err))
	}
}
