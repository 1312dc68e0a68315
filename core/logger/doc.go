// Package logger provides structured logging utilities built on Go's standard slog package.
//
// New builds a *slog.Logger from functional options, with presets for
// development (text, debug level) and production/staging (JSON, info level).
// Attribute helpers create consistently named attributes for the things this
// module logs about: topics, subscriptions, messages, errors and timings.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithDevelopment("streamd"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("stream opened",
//		logger.Component("stream"),
//		logger.Topics([]string{"orders", "invoices"}),
//	)
//
// Components in this module accept a logger through an option and default to
// Discard, so logging is opt-in:
//
//	s, err := stream.New[pubsub.Message](ctx, bus, topics, stream.WithLogger(log))
//
// # Nil Safety
//
// Error, SubscriptionID and MessageID return an empty slog.Attr for
// nil or empty input. slog drops empty attributes, so the helpers can be used
// without guarding:
//
//	log.Warn("unsubscribe failed", logger.Error(err))
package logger
