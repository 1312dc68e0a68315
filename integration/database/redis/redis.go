package redis

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client and waits until it answers PING, retrying
// with exponential backoff. The client is closed if Redis never becomes ready.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidConnectionURL, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client := redis.NewClient(opts)
	ping := func() error {
		return client.Ping(ctx).Err()
	}

	if err := backoff.Retry(ping, retryPolicy(ctx, cfg.RetryAttempts, cfg.RetryInterval)); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrNotReady, err)
	}

	return client, nil
}

// Healthcheck returns a probe that pings Redis.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func retryPolicy(ctx context.Context, attempts int, interval time.Duration) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	if interval > 0 {
		exp.InitialInterval = interval
	}
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = exp
	if attempts > 0 {
		// attempts counts the first try
		b = backoff.WithMaxRetries(exp, uint64(attempts-1))
	}
	return backoff.WithContext(b, ctx)
}
