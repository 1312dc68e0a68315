// Package pullstream turns push-based publish/subscribe buses into pull-based
// event streams and serves them over HTTP.
//
// This file is an index of the packages in the module. Each entry gives the
// import path and what the package is for.
//
// # Getting Documentation
//
//	go doc github.com/dmitrymomot/pullstream/core/stream
//	go doc -all github.com/dmitrymomot/pullstream/core/pubsub
//
// # Core Packages
//
//	github.com/dmitrymomot/pullstream/core/stream      - Pull-based stream over one or more bus topics
//	github.com/dmitrymomot/pullstream/core/pubsub      - Bus contract, message envelope and in-memory bus
//	github.com/dmitrymomot/pullstream/core/streamhttp  - Server-Sent Events and WebSocket delivery of streams
//	github.com/dmitrymomot/pullstream/core/server      - HTTP server with graceful shutdown for streaming
//	github.com/dmitrymomot/pullstream/core/health      - Liveness and readiness handlers
//	github.com/dmitrymomot/pullstream/core/config      - Type-safe environment variable loading
//	github.com/dmitrymomot/pullstream/core/logger      - Structured logging presets and attribute helpers
//
// # Integrations
//
//	github.com/dmitrymomot/pullstream/integration/pubsub/redis     - Bus over Redis PUBLISH/SUBSCRIBE
//	github.com/dmitrymomot/pullstream/integration/pubsub/postgres  - Bus over PostgreSQL LISTEN/NOTIFY
//	github.com/dmitrymomot/pullstream/integration/database/redis   - Redis client with retry and health check
//	github.com/dmitrymomot/pullstream/integration/database/pg      - PostgreSQL pool with retry and health check
//
// # Utilities
//
//	github.com/dmitrymomot/pullstream/pkg/async  - Futures, promises and fan-out helpers
//
// # Commands
//
//	github.com/dmitrymomot/pullstream/cmd/streamd  - Daemon exposing streams over SSE and WebSocket
//
// # Quick Start
//
//	bus := pubsub.NewMemoryBus[pubsub.Message]()
//	defer bus.Close()
//
//	s, err := stream.New[pubsub.Message](ctx, bus, []string{"orders"})
//	if err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//
//	go func() {
//		msg, _ := pubsub.NewMessage("orders", map[string]int{"id": 1})
//		_ = bus.Publish(ctx, "orders", msg)
//	}()
//
//	res, err := s.Next(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Value.Topic, string(res.Value.Payload))
package pullstream
