package relay

import "errors"

var (
	// ErrMissingEventType is returned for events without a type
	// discriminator; clients have nothing to route them by.
	ErrMissingEventType = errors.New("event has no type")

	// ErrScenarioLoad wraps failures to read or parse a scenario file.
	ErrScenarioLoad = errors.New("failed to load scenario")

	// ErrBridgeClosed wraps the subscription error that ended a Redis
	// bridge run.
	ErrBridgeClosed = errors.New("redis bridge subscription closed")
)
