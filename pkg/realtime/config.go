package realtime

import "time"

const (
	// DefaultReconnectDelay is the pause between reconnect attempts.
	DefaultReconnectDelay = 5 * time.Second

	// DefaultHeartbeatInterval is how often the manager pings the server.
	DefaultHeartbeatInterval = 30 * time.Second
)

// Config holds the connection settings for a Manager.
type Config struct {
	// Endpoint is the base server URL, e.g. "wss://api.example.com".
	// The manager derives the per-session URL as {Endpoint}/ws/{sessionID}.
	Endpoint string `env:"NOTIFY_ENDPOINT,required"`

	// ReconnectDelay is the fixed pause before a reconnect attempt.
	// A custom BackoffStrategy overrides it.
	ReconnectDelay time.Duration `env:"NOTIFY_RECONNECT_DELAY" envDefault:"5s"`

	// HeartbeatInterval is the cadence of outbound ping frames while
	// connected.
	HeartbeatInterval time.Duration `env:"NOTIFY_HEARTBEAT_INTERVAL" envDefault:"30s"`

	// PongTimeout recycles the connection when no pong arrives within
	// the window. Zero disables liveness enforcement: heartbeats are
	// still sent but silence is tolerated.
	PongTimeout time.Duration `env:"NOTIFY_PONG_TIMEOUT" envDefault:"0"`

	// DisableAutoReconnect makes connection loss terminal (StateErrored)
	// instead of scheduling retries. Connect may be called again to
	// retry manually.
	DisableAutoReconnect bool `env:"NOTIFY_DISABLE_AUTO_RECONNECT" envDefault:"false"`

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration `env:"NOTIFY_HANDSHAKE_TIMEOUT" envDefault:"10s"`

	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration `env:"NOTIFY_WRITE_TIMEOUT" envDefault:"10s"`
}

// withDefaults fills zero values with the package defaults.
func (c Config) withDefaults() Config {
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}
