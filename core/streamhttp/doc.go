// Package streamhttp serves event streams to HTTP clients.
//
// SSE and WebSocket take a *stream.Stream of pubsub.Message values and drain
// it to one client until either side stops. They own the stream: when the
// client disconnects, the request context ends or writing fails, the stream is
// closed and its subscriptions released. Both return nil when streaming ends
// normally and an error only when the stream itself failed or the connection
// could not be set up.
//
//	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
//		s, err := stream.New[pubsub.Message](r.Context(), bus, r.URL.Query()["topic"])
//		if err != nil {
//			http.Error(w, err.Error(), http.StatusBadRequest)
//			return
//		}
//		_ = streamhttp.SSE(w, r, s, streamhttp.WithKeepAlive(15*time.Second))
//	})
//
// # Server-Sent Events
//
// Each message is written as
//
//	id: <message ID>
//	event: <topic>
//	data: <payload JSON>
//
// Comments keep idle connections open. A failed stream produces a final
// "error" event with a JSON body before the response ends.
//
// # WebSocket
//
// Messages are sent as JSON text frames holding the whole pubsub.Message.
// The server pings at the keep-alive interval. When the stream ends the server
// sends a close frame with code 1000, or 1011 if the stream failed.
//
// Streaming responses must not be cut by the server write timeout; the server
// package disables it by default.
package streamhttp
