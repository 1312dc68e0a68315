package postgres

import "log/slog"

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger for delivery and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}
