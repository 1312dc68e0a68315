package streamhttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pullstream/core/logger"
)

// DefaultKeepAlive is the interval between SSE keep-alive comments and
// WebSocket pings.
const DefaultKeepAlive = 30 * time.Second

// writeWait bounds a single WebSocket frame write.
const writeWait = 10 * time.Second

type config struct {
	keepAlive   time.Duration
	reconnect   time.Duration
	logger      *slog.Logger
	checkOrigin func(*http.Request) bool
}

// Option configures SSE and WebSocket responses.
type Option func(*config)

// WithKeepAlive sets the keep-alive interval. Non-positive values disable it.
func WithKeepAlive(interval time.Duration) Option {
	return func(c *config) {
		c.keepAlive = interval
	}
}

// WithoutKeepAlive disables keep-alive comments and pings.
func WithoutKeepAlive() Option {
	return func(c *config) {
		c.keepAlive = 0
	}
}

// WithReconnectTime tells SSE clients how long to wait before reconnecting.
func WithReconnectTime(d time.Duration) Option {
	return func(c *config) {
		c.reconnect = d
	}
}

// WithLogger sets the logger for connection lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOriginCheck sets the WebSocket origin policy. By default gorilla's
// same-origin check applies.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(c *config) {
		c.checkOrigin = fn
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		keepAlive: DefaultKeepAlive,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = cfg.logger.With(logger.Component("streamhttp"))
	return cfg
}
