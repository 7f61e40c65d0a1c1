package relay

import "time"

// Config holds the relay server settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"RELAY_ADDR" envDefault:":8080"`

	// WriteTimeout bounds each outbound frame write per client.
	WriteTimeout time.Duration `env:"RELAY_WRITE_TIMEOUT" envDefault:"10s"`

	// SendBuffer is the per-client outbound queue depth. A client that
	// falls this far behind starts losing frames rather than stalling
	// the fan-out.
	SendBuffer int `env:"RELAY_SEND_BUFFER" envDefault:"16"`

	// ReadLimit caps the size of an inbound control frame in bytes.
	ReadLimit int64 `env:"RELAY_READ_LIMIT" envDefault:"4096"`

	// ScenarioPath points at a YAML scenario to replay to connected
	// clients. Empty disables the player.
	ScenarioPath string `env:"RELAY_SCENARIO"`

	// RedisChannel is the pub/sub channel the bridge subscribes to when
	// a Redis connection is configured.
	RedisChannel string `env:"RELAY_REDIS_CHANNEL" envDefault:"notifykit:events"`
}

// withDefaults fills zero values with usable settings.
func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 16
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 4096
	}
	return c
}
