// Package redis connects to Redis for the Redis-backed event bus and exposes a
// health probe for readiness checks.
//
// Connect parses a redis:// or rediss:// URL, creates a client and pings it
// until it answers, retrying with exponential backoff. Configuration is read
// from the environment through the config package:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// RetryAttempts counts the first attempt. RetryInterval is the initial delay;
// later delays grow exponentially. ConnectTimeout bounds the whole process.
//
// # Usage
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	bus := redisbus.New[pubsub.Message](client)
//	ready := health.Readiness(log, redis.Healthcheck(client))
//
// # Errors
//
//   - ErrEmptyConnectionURL: no URL configured
//   - ErrInvalidConnectionURL: the URL is malformed
//   - ErrNotReady: Redis did not answer within the retry budget
//   - ErrHealthcheckFailed: a health probe ping failed
//
// Errors are joined with the underlying go-redis error, so both can be
// matched with errors.Is.
package redis
