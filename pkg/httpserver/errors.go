package httpserver

import "errors"

var (
	// ErrStart wraps any failure to bring the server up: a second Run call,
	// a failed startup hook, or a listener that could not bind.
	ErrStart = errors.New("failed to start http server")

	// ErrShutdown wraps failures while draining the server or running
	// shutdown hooks.
	ErrShutdown = errors.New("failed to shutdown http server")
)
