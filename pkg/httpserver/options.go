package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Server. Options are applied in order, so later
// options win on conflict. Invalid values panic: misconfiguration here is
// a programmer error, not a runtime condition.
type Option func(*config)

// WithAddr sets the listen address, e.g. ":8080" or "127.0.0.1:9000".
func WithAddr(addr string) Option {
	return func(c *config) {
		if addr == "" {
			panic("httpserver: empty listen address")
		}
		c.addr = addr
	}
}

// WithReadTimeout bounds how long reading a request may take.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			panic("httpserver: read timeout must be positive")
		}
		c.readTimeout = d
	}
}

// WithWriteTimeout bounds how long writing a response may take.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			panic("httpserver: write timeout must be positive")
		}
		c.writeTimeout = d
	}
}

// WithIdleTimeout bounds how long keep-alive connections may sit idle.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			panic("httpserver: idle timeout must be positive")
		}
		c.idleTimeout = d
	}
}

// WithShutdownTimeout bounds how long Shutdown waits for in-flight
// requests to drain before giving up.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			panic("httpserver: shutdown timeout must be positive")
		}
		c.shutdownTimeout = d
	}
}

// WithServer supplies a preconfigured http.Server. Fields already set on it
// are kept; the Server only fills in what is missing.
func WithServer(srv *http.Server) Option {
	return func(c *config) {
		if srv == nil {
			panic("httpserver: nil http.Server")
		}
		c.server = srv
	}
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log == nil {
			panic("httpserver: nil logger")
		}
		c.log = log
	}
}

// WithStartHook registers a function to run before the listener opens.
// A hook error aborts startup.
func WithStartHook(hook func(ctx context.Context) error) Option {
	return func(c *config) {
		if hook == nil {
			panic("httpserver: nil start hook")
		}
		c.startupHooks = append(c.startupHooks, hook)
	}
}

// WithStopHook registers a function to run after the server has drained.
func WithStopHook(hook func(ctx context.Context) error) Option {
	return func(c *config) {
		if hook == nil {
			panic("httpserver: nil stop hook")
		}
		c.shutdownHooks = append(c.shutdownHooks, hook)
	}
}
