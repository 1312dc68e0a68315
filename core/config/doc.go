// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file on first use and uses the caarlos0/env library
// for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/pullstream/core/config"
//
//	type StreamConfig struct {
//		Backend     string `env:"STREAMD_BACKEND" envDefault:"memory"`
//		BufferLimit int    `env:"STREAMD_BUFFER_LIMIT" envDefault:"0"`
//	}
//
//	func main() {
//		var cfg StreamConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime.
// Different types are cached independently, so integration configs such as
// redis.Config and pg.Config can be loaded lazily, only when the selected
// backend needs them. Reset clears the cache, which is mostly useful in tests.
package config
