// Package postgres implements the event bus over PostgreSQL LISTEN/NOTIFY.
//
// Each subscription acquires a connection from the pool, issues LISTEN on the
// quoted topic name and runs a loop that waits for notifications, decodes the
// JSON-encoded pubsub.Message and calls the handler. Unsubscribe stops the
// loop, issues UNLISTEN and releases the connection. A connection that cannot
// be cleanly unlistened is closed instead of returned to the pool.
//
// Publish runs SELECT pg_notify(topic, payload). Encoded messages larger than
// MaxPayloadSize are rejected with ErrPayloadTooLarge. If the context carries a
// transaction from pg.WithTx the notification joins it and is delivered only
// on commit.
//
// Channels are exact names; subscribing with pubsub.AsPattern returns
// pubsub.ErrPatternUnsupported.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	bus := postgres.New(pool, postgres.WithLogger(log))
//	defer bus.Close()
package postgres
