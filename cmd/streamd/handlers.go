package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pullstream/core/health"
	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/core/stream"
	"github.com/dmitrymomot/pullstream/core/streamhttp"
	"github.com/dmitrymomot/pullstream/integration/pubsub/postgres"
)

type app struct {
	bus        pubsub.Bus[pubsub.Message]
	log        *slog.Logger
	streamOpts []stream.Option
	httpOpts   []streamhttp.Option
	maxPublish int64
	checks     []func(context.Context) error
}

func newApp(cfg Config, bus pubsub.Bus[pubsub.Message], log *slog.Logger, checks ...func(context.Context) error) *app {
	a := &app{
		bus:        bus,
		log:        log,
		streamOpts: []stream.Option{stream.WithLogger(log)},
		httpOpts: []streamhttp.Option{
			streamhttp.WithLogger(log),
			streamhttp.WithKeepAlive(cfg.KeepAlive),
		},
		maxPublish: cfg.MaxPublishBytes,
		checks:     checks,
	}

	if cfg.BufferLimit > 0 {
		policy := stream.DropOldest
		if cfg.DropNewest {
			policy = stream.DropNewest
		}
		a.streamOpts = append(a.streamOpts, stream.WithBufferLimit(cfg.BufferLimit, policy))
	}
	if cfg.AllowAnyOrigin {
		a.httpOpts = append(a.httpOpts, streamhttp.WithOriginCheck(func(*http.Request) bool { return true }))
	}

	return a
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /streams/sse", a.serveStream(streamhttp.SSE))
	mux.HandleFunc("GET /streams/ws", a.serveStream(streamhttp.WebSocket))
	mux.HandleFunc("POST /topics/{topic}", a.publish)

	mux.HandleFunc("GET /health/live", health.Liveness)
	mux.HandleFunc("GET /health/ready", health.Readiness(a.log, a.checks...))

	return a.logRequests(mux)
}

type streamFunc func(http.ResponseWriter, *http.Request, *stream.Stream[pubsub.Message], ...streamhttp.Option) error

// serveStream opens a stream over the requested topics for the lifetime of
// the request. ?pattern=true subscribes to the topics as globs.
func (a *app) serveStream(serve streamFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		opts := a.streamOpts
		if query.Get("pattern") == "true" {
			opts = append(opts[:len(opts):len(opts)], stream.WithSubscribeOptions(pubsub.AsPattern()))
		}

		s, err := stream.New[pubsub.Message](r.Context(), a.bus, query["topic"], opts...)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		if err := serve(w, r, s, a.httpOpts...); err != nil {
			a.log.WarnContext(r.Context(), "stream ended with error",
				logger.Topics(s.Topics()),
				logger.Error(err))
		}
	}
}

type publishResponse struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
}

// publish sends the JSON request body to a topic.
func (a *app) publish(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxPublish))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	msg, err := pubsub.NewMessage(topic, json.RawMessage(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.bus.Publish(r.Context(), topic, msg); err != nil {
		switch {
		case errors.Is(err, postgres.ErrPayloadTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err)
		case errors.Is(err, pubsub.ErrBusClosed):
			writeError(w, http.StatusServiceUnavailable, err)
		default:
			a.log.ErrorContext(r.Context(), "publish failed", logger.Topic(topic), logger.Error(err))
			writeError(w, http.StatusBadGateway, err)
		}
		return
	}

	a.log.DebugContext(r.Context(), "published", logger.Topic(topic), logger.MessageID(msg.ID))
	writeJSON(w, http.StatusAccepted, publishResponse{ID: msg.ID, Topic: topic})
}

func (a *app) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			logger.RequestPath(r.URL.Path),
			logger.RemoteAddr(r.RemoteAddr),
			logger.Elapsed(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
