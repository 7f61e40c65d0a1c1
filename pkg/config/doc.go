// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 to
// deliver a small API that:
//
//   - Loads values from one or multiple .env files (falling back to the
//     default .env in the current working directory).
//   - Parses the environment into any Go struct using `env` field tags.
//   - Caches each successfully loaded configuration type so it is parsed
//     once per process.
//   - Exposes Must* helpers that panic on failure for configuration the
//     application cannot start without.
//   - Allows explicit cache reset or forced reload, which is handy in tests.
//
// # Usage
//
// Describe the configuration as a struct with env tags:
//
//	type Config struct {
//	    Endpoint          string        `env:"NOTIFY_ENDPOINT,required"`
//	    ReconnectDelay    time.Duration `env:"NOTIFY_RECONNECT_DELAY" envDefault:"5s"`
//	    HeartbeatInterval time.Duration `env:"NOTIFY_HEARTBEAT_INTERVAL" envDefault:"30s"`
//	}
//
// then populate it:
//
//	import "github.com/evalforge/notifykit/pkg/config"
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Subsequent calls to config.Load for the same type are served from the
// in-memory cache without re-parsing.
//
// # Error Handling
//
// The package defines sentinel errors comparable with errors.Is:
// ErrParsingConfig, ErrLoadingEnvFiles and ErrNilPointer.
//
// # Testing Helpers
//
// Use ResetCache to clear the cache between tests, or ForceReloadConfig to
// reload a particular struct after the process environment changes.
package config
