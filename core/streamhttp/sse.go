package streamhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/core/stream"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// SSE writes the stream to the client as Server-Sent Events until the stream
// terminates or the client disconnects, then closes the stream.
//
// Each message becomes one event: id is the message ID, event is the topic and
// data is the JSON payload. Keep-alive comments are sent while idle.
// A stream error is sent as an "error" event and returned.
func SSE(w http.ResponseWriter, r *http.Request, s *stream.Stream[pubsub.Message], opts ...Option) error {
	cfg := newConfig(opts)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer closeStream(ctx, s, cfg)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if cfg.reconnect > 0 {
		if _, err := fmt.Fprintf(w, "retry: %d\n\n", cfg.reconnect.Milliseconds()); err != nil {
			return nil
		}
	}
	if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
		return nil
	}
	flusher.Flush()

	log := cfg.logger.With(logger.Topics(s.Topics()), logger.RemoteAddr(r.RemoteAddr))
	log.DebugContext(ctx, "sse stream opened")
	start := time.Now()
	defer func() { log.DebugContext(ctx, "sse stream finished", logger.Elapsed(start)) }()

	var keepAlive <-chan time.Time
	var ticker *time.Ticker
	if cfg.keepAlive > 0 {
		ticker = time.NewTicker(cfg.keepAlive)
		defer ticker.Stop()
		keepAlive = ticker.C
	}

	events := pump(ctx, s)
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-keepAlive:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return nil
			}
			flusher.Flush()

		case it, ok := <-events:
			if !ok {
				return nil
			}
			if it.err != nil {
				if ctx.Err() != nil {
					return nil
				}
				_ = writeSSEError(w, it.err)
				flusher.Flush()
				log.WarnContext(ctx, "sse stream failed", logger.Error(it.err))
				return it.err
			}

			if ticker != nil {
				ticker.Reset(cfg.keepAlive)
			}
			if err := writeSSEEvent(w, it.msg); err != nil {
				// The client is gone; nothing more can be written
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w io.Writer, msg pubsub.Message) error {
	var b strings.Builder
	if msg.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", msg.ID)
	}
	if msg.Topic != "" {
		fmt.Fprintf(&b, "event: %s\n", msg.Topic)
	}
	writeSSEData(&b, msg.Payload)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSSEError(w io.Writer, cause error) error {
	data, err := json.Marshal(map[string]string{"error": cause.Error()})
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("event: error\n")
	writeSSEData(&b, data)
	b.WriteString("\n")

	_, err = io.WriteString(w, b.String())
	return err
}

// writeSSEData emits payload as data lines. Valid JSON is compacted onto one
// line; anything else is split so no line break escapes the field.
func writeSSEData(b *strings.Builder, payload []byte) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err == nil {
		payload = compact.Bytes()
	}

	for line := range strings.Lines(string(payload)) {
		b.WriteString("data: ")
		b.WriteString(strings.TrimRight(line, "\r\n"))
		b.WriteString("\n")
	}
	if len(payload) == 0 {
		b.WriteString("data: \n")
	}
}

func closeStream(ctx context.Context, s *stream.Stream[pubsub.Message], cfg *config) {
	if _, err := s.Close(context.WithoutCancel(ctx)); err != nil {
		cfg.logger.DebugContext(ctx, "stream close failed", logger.Error(err))
	}
}
