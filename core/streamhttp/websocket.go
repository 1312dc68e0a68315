package streamhttp

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/core/stream"
)

// WebSocket upgrades the connection and writes each message of the stream as
// a JSON text frame. A close frame or read error from the client closes the
// stream. When the stream terminates the server sends a normal close frame;
// a stream error is sent as an internal-error close frame and returned.
//
// Inbound data frames are read and discarded.
func WebSocket(w http.ResponseWriter, r *http.Request, s *stream.Stream[pubsub.Message], opts ...Option) error {
	cfg := newConfig(opts)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer closeStream(ctx, s, cfg)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     cfg.checkOrigin,
	}

	// Upgrade replies to the client itself on failure
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cfg.logger.DebugContext(ctx, "websocket upgrade failed", logger.Error(err))
		return err
	}
	defer conn.Close()

	log := cfg.logger.With(logger.Topics(s.Topics()), logger.RemoteAddr(r.RemoteAddr))
	log.DebugContext(ctx, "websocket stream opened")
	start := time.Now()
	defer func() { log.DebugContext(ctx, "websocket stream finished", logger.Elapsed(start)) }()

	// Control frames are only processed while reading
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	var ping <-chan time.Time
	if cfg.keepAlive > 0 {
		ticker := time.NewTicker(cfg.keepAlive)
		defer ticker.Stop()
		ping = ticker.C
	}

	events := pump(ctx, s)
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ping:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}

		case it, ok := <-events:
			if !ok {
				writeClose(conn, websocket.CloseNormalClosure, "stream closed")
				return nil
			}
			if it.err != nil {
				if ctx.Err() != nil {
					return nil
				}
				writeClose(conn, websocket.CloseInternalServerErr, "stream failed")
				log.WarnContext(ctx, "websocket stream failed", logger.Error(it.err))
				return it.err
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(it.msg); err != nil {
				return nil
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text),
		time.Now().Add(writeWait))
}
