package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/pullstream/core/config"
	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/pubsub"
	"github.com/dmitrymomot/pullstream/integration/database/pg"
	redisdb "github.com/dmitrymomot/pullstream/integration/database/redis"
	"github.com/dmitrymomot/pullstream/integration/pubsub/postgres"
	redisbus "github.com/dmitrymomot/pullstream/integration/pubsub/redis"
)

// backend is an opened bus plus what is needed to probe and release it.
type backend struct {
	bus    pubsub.Bus[pubsub.Message]
	checks []func(context.Context) error
	close  func()
}

func openBackend(ctx context.Context, name string, log *slog.Logger) (*backend, error) {
	log = log.With(logger.Backend(name))

	switch name {
	case backendMemory:
		bus := pubsub.NewMemoryBus[pubsub.Message](pubsub.WithMemoryLogger(log))
		return &backend{
			bus:   bus,
			close: func() { _ = bus.Close() },
		}, nil

	case backendRedis:
		var cfg redisdb.Config
		if err := config.Load(&cfg); err != nil {
			return nil, fmt.Errorf("load redis config: %w", err)
		}
		client, err := redisdb.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		bus := redisbus.New(client, redisbus.WithLogger(log))
		return &backend{
			bus:    bus,
			checks: []func(context.Context) error{redisdb.Healthcheck(client)},
			close: func() {
				_ = bus.Close()
				_ = client.Close()
			},
		}, nil

	case backendPostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, fmt.Errorf("load postgres config: %w", err)
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		bus := postgres.New(pool, postgres.WithLogger(log))
		return &backend{
			bus:    bus,
			checks: []func(context.Context) error{pg.Healthcheck(pool)},
			close: func() {
				_ = bus.Close()
				pool.Close()
			},
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
