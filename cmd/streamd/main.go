package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pullstream/core/config"
	"github.com/dmitrymomot/pullstream/core/logger"
	"github.com/dmitrymomot/pullstream/core/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	log := logger.New(logger.ForEnvironment(cfg.Env, cfg.AppName))

	if err := run(ctx, cfg, log, openBackend); err != nil {
		log.Error("Application failed", logger.Error(err))
		stop()
		os.Exit(1)
	}

	log.Info("Application stopped")
}

type backendOpener func(ctx context.Context, name string, log *slog.Logger) (*backend, error)

// run serves until ctx is done or the server fails. The backend is released
// on every return path.
func run(ctx context.Context, cfg Config, log *slog.Logger, open backendOpener) error {
	// Connects with retry for network backends
	be, err := open(ctx, cfg.Backend, log)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer be.close()

	a := newApp(cfg, be.bus, log, be.checks...)

	s, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(s.Run(ctx, a.routes()))

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
