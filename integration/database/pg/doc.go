// Package pg opens PostgreSQL connection pools for the LISTEN/NOTIFY event bus.
//
// Connect parses the connection string, applies the pool settings and pings
// the database until it answers, retrying with exponential backoff.
// Healthcheck returns a probe for readiness endpoints.
//
// Configuration is read from the environment:
//
//	type Config struct {
//		ConnectionString  string        `env:"PG_CONN_URL"`
//		MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
//	}
//
// Every active LISTEN subscription pins one pooled connection, so size
// MaxOpenConns for the number of topics streamed at once plus publishers.
//
// # Transactions
//
// WithTx and TxFromContext carry a pgx.Tx through a context. Publishing with
// such a context sends the notification inside the transaction:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	if _, err := tx.Exec(ctx, "UPDATE orders SET status = 'paid' WHERE id = $1", id); err != nil {
//		return err
//	}
//	if err := bus.Publish(pg.WithTx(ctx, tx), "orders", msg); err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
//
// Listeners see the event only after Commit.
package pg
