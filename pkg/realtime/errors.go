package realtime

import "errors"

var (
	// ErrMissingEndpoint is returned by New when the config has no endpoint.
	ErrMissingEndpoint = errors.New("websocket endpoint is required")

	// ErrEmptySessionID is returned by Connect for an empty session id.
	ErrEmptySessionID = errors.New("session id is required")

	// ErrClosed is returned by Connect after the manager was closed.
	ErrClosed = errors.New("manager is closed")
)
