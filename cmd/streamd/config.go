package main

import (
	"time"

	"github.com/dmitrymomot/pullstream/core/server"
)

// Config is loaded from the environment and an optional .env file.
// Backend connection settings are loaded separately, only for the selected
// backend.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"streamd"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	Backend         string        `env:"STREAMD_BACKEND" envDefault:"memory"`
	BufferLimit     int           `env:"STREAMD_BUFFER_LIMIT" envDefault:"0"`
	DropNewest      bool          `env:"STREAMD_DROP_NEWEST" envDefault:"false"`
	KeepAlive       time.Duration `env:"STREAMD_KEEPALIVE" envDefault:"30s"`
	MaxPublishBytes int64         `env:"STREAMD_MAX_PUBLISH_BYTES" envDefault:"65536"`
	AllowAnyOrigin  bool          `env:"STREAMD_ALLOW_ANY_ORIGIN" envDefault:"false"`

	Server server.Config
}

const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
)
