package streamhttp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/core/stream"
	"github.com/dmitrymomot/pullstream/core/streamhttp"
)

type streamFunc func(http.ResponseWriter, *http.Request, *stream.Stream[pubsub.Message], ...streamhttp.Option) error

type testServer struct {
	*httptest.Server
	bus     *pubsub.MemoryBus[pubsub.Message]
	streams chan *stream.Stream[pubsub.Message]
	errs    chan error
}

func newTestServer(t *testing.T, bus pubsub.Subscriber[pubsub.Message], serve streamFunc, opts ...streamhttp.Option) *testServer {
	t.Helper()

	ts := &testServer{
		streams: make(chan *stream.Stream[pubsub.Message], 8),
		errs:    make(chan error, 8),
	}
	if mb, ok := bus.(*pubsub.MemoryBus[pubsub.Message]); ok {
		ts.bus = mb
	}

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := stream.New[pubsub.Message](r.Context(), bus, r.URL.Query()["topic"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ts.streams <- s
		ts.errs <- serve(w, r, s, opts...)
	}))
	t.Cleanup(ts.Close)

	return ts
}

func (ts *testServer) waitSubscriptions(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return ts.bus.Subscriptions() == n
	}, 2*time.Second, time.Millisecond)
}

func (ts *testServer) nextStream(t *testing.T) *stream.Stream[pubsub.Message] {
	t.Helper()
	select {
	case s := <-ts.streams:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not create a stream")
		return nil
	}
}

func (ts *testServer) handlerErr(t *testing.T) error {
	t.Helper()
	select {
	case err := <-ts.errs:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return")
		return nil
	}
}

// failingBus refuses every subscription.
type failingBus struct{}

var errRefused = errors.New("subscription refused")

func (failingBus) Subscribe(context.Context, string, pubsub.Handler[pubsub.Message], ...pubsub.SubscribeOption) (pubsub.SubscriptionID, error) {
	return "", errRefused
}

func (failingBus) Unsubscribe(context.Context, pubsub.SubscriptionID) error {
	return nil
}
