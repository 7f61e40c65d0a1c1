package realtime

import (
	"log/slog"

	"github.com/evalforge/notifykit/pkg/session"
	"github.com/evalforge/notifykit/pkg/wire"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = log
	}
}

// WithDialer replaces the transport dialer. Tests use it to connect
// the manager to an in-memory transport.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithBackoff replaces the reconnect delay policy.
func WithBackoff(b BackoffStrategy) Option {
	return func(m *Manager) {
		m.backoff = b
	}
}

// WithSessionProvider sets the token source for the dial handshake.
// When the provider yields a token, the dial carries it as a bearer
// Authorization header.
func WithSessionProvider(p session.Provider) Option {
	return func(m *Manager) {
		m.session = p
	}
}

// WithStateHook registers fn to run on every state transition, in
// transition order, on the manager's event loop. The hook may call
// Send; it must not block.
func WithStateHook(fn func(State)) Option {
	return func(m *Manager) {
		m.onState = fn
	}
}

// WithEnvelopeHook registers fn to run for every decoded inbound frame,
// in arrival order, on the manager's event loop. The hook may call
// Send; it must not block.
func WithEnvelopeHook(fn func(wire.Envelope)) Option {
	return func(m *Manager) {
		m.onEnvelope = fn
	}
}
