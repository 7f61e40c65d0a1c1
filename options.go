package notifykit

import (
	"log/slog"

	"github.com/evalforge/notifykit/pkg/notifications"
	"github.com/evalforge/notifykit/pkg/notifier"
	"github.com/evalforge/notifykit/pkg/realtime"
	"github.com/evalforge/notifykit/pkg/session"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger shared by every component the manager
// wires together.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = log
	}
}

// WithSessionProvider sets the token source used during the websocket
// handshake.
func WithSessionProvider(p session.Provider) Option {
	return func(m *Manager) {
		m.session = p
	}
}

// WithNotifier sets the platform notifier used for urgent
// notifications. Defaults to notifier.Noop.
func WithNotifier(n notifier.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithStoreCapacity overrides how many notifications the store keeps.
func WithStoreCapacity(capacity int) Option {
	return func(m *Manager) {
		m.storeCapacity = capacity
	}
}

// WithRouterOptions passes options through to the frame router, e.g.
// notifications.WithPolicy to register extra frame types.
func WithRouterOptions(opts ...notifications.RouterOption) Option {
	return func(m *Manager) {
		m.routerOpts = append(m.routerOpts, opts...)
	}
}

// WithStagerOptions passes options through to the toast stager, e.g.
// notifications.WithMaxVisible.
func WithStagerOptions(opts ...notifications.StagerOption) Option {
	return func(m *Manager) {
		m.stagerOpts = append(m.stagerOpts, opts...)
	}
}

// WithDialer replaces the websocket dialer. Tests use it to run the
// full pipeline over an in-memory transport.
func WithDialer(d realtime.Dialer) Option {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithBackoff replaces the reconnect delay policy.
func WithBackoff(b realtime.BackoffStrategy) Option {
	return func(m *Manager) {
		m.backoff = b
	}
}

// WithEventBuffer sets the per-subscriber buffer of the Events stream.
func WithEventBuffer(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.eventBuffer = size
		}
	}
}
