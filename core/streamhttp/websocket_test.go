package streamhttp_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/core/stream"
	"github.com/dmitrymomot/pullstream/core/streamhttp"
)

func dial(t *testing.T, ts *testServer, query string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + query
	return websocket.DefaultDialer.Dial(url, header)
}

func TestWebSocket(t *testing.T) {
	t.Parallel()

	t.Run("writes messages as json frames", func(t *testing.T) {
		t.Parallel()

		bus := pubsub.NewMemoryBus[pubsub.Message]()
		ts := newTestServer(t, bus, streamhttp.WebSocket)

		conn, _, err := dial(t, ts, "?topic=orders", nil)
		require.NoError(t, err)
		defer conn.Close()

		ts.waitSubscriptions(t, 1)
		msg, err := pubsub.NewMessage("orders", map[string]int{"id": 7})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), "orders", msg))

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got pubsub.Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, msg.ID, got.ID)
		assert.Equal(t, "orders", got.Topic)
		assert.JSONEq(t, `{"id":7}`, string(got.Payload))
	})

	t.Run("sends a close frame when the stream ends", func(t *testing.T) {
		t.Parallel()

		bus := pubsub.NewMemoryBus[pubsub.Message]()
		ts := newTestServer(t, bus, streamhttp.WebSocket)

		conn, _, err := dial(t, ts, "?topic=orders", nil)
		require.NoError(t, err)
		defer conn.Close()

		s := ts.nextStream(t)
		_, err = s.Close(context.Background())
		require.NoError(t, err)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err = conn.ReadMessage()
		require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
		require.NoError(t, ts.handlerErr(t))
	})

	t.Run("client close releases the stream", func(t *testing.T) {
		t.Parallel()

		bus := pubsub.NewMemoryBus[pubsub.Message]()
		ts := newTestServer(t, bus, streamhttp.WebSocket)

		conn, _, err := dial(t, ts, "?topic=orders&topic=invoices", nil)
		require.NoError(t, err)

		ts.waitSubscriptions(t, 2)
		s := ts.nextStream(t)

		require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye")))
		_ = conn.Close()

		require.NoError(t, ts.handlerErr(t))
		assert.False(t, s.Stats().Live)
		ts.waitSubscriptions(t, 0)
	})

	t.Run("stream failure closes with internal error", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, failingBus{}, streamhttp.WebSocket)

		conn, _, err := dial(t, ts, "?topic=orders", nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err = conn.ReadMessage()
		require.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
		require.ErrorIs(t, ts.handlerErr(t), stream.ErrSubscribe)
	})

	t.Run("origin check", func(t *testing.T) {
		t.Parallel()

		header := http.Header{"Origin": []string{"https://elsewhere.example"}}

		strict := newTestServer(t, pubsub.NewMemoryBus[pubsub.Message](), streamhttp.WebSocket)
		_, resp, err := dial(t, strict, "?topic=orders", header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Error(t, strict.handlerErr(t))

		open := newTestServer(t, pubsub.NewMemoryBus[pubsub.Message](), streamhttp.WebSocket,
			streamhttp.WithOriginCheck(func(*http.Request) bool { return true }))
		conn, _, err := dial(t, open, "?topic=orders", header)
		require.NoError(t, err)
		_ = conn.Close()
	})
}
