// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	mux.HandleFunc("GET /health/live", health.Liveness)
//	mux.HandleFunc("GET /health/ready", health.Readiness(
//		log,
//		pg.Healthcheck(pool),
//		redis.Healthcheck(client),
//	))
//	mux.HandleFunc("GET /ping", health.NoContent)
//
// Dependency checks must follow func(context.Context) error signature:
//
//	func checkBus(ctx context.Context) error {
//		return client.Ping(ctx).Err()
//	}
package health
