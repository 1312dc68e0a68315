// Package server runs an http.Server with graceful shutdown and defaults
// suited to long-lived streaming responses.
//
// # Basic Usage
//
//	srv := server.New(":8080",
//		server.WithShutdownTimeout(30*time.Second),
//		server.WithLogger(log),
//	)
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, mux))
//	if err := g.Wait(); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Run returns a function suitable for errgroup: it starts the server and,
// when ctx is canceled, shuts it down gracefully and returns nil.
//
// # Configuration
//
// Config maps environment variables to server settings and NewFromConfig
// turns it into a Server:
//
//	var cfg server.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//
// Setting SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE enables HTTPS.
//
// # Streaming
//
// DefaultWriteTimeout is zero. A write deadline applies to the whole response,
// so any non-zero value would cut Server-Sent Events and WebSocket streams.
//
// Every request context derives from a base context that Stop cancels before
// calling http.Server.Shutdown. Streaming handlers that watch their request
// context therefore finish promptly and shutdown does not wait for the
// timeout.
package server
