// Package realtime maintains the client's single websocket connection
// to the notification endpoint and turns its raw frames into decoded
// envelopes.
//
// # Architecture
//
// A Manager runs one event-loop goroutine that owns the connection
// lifecycle. Public methods (Connect, Disconnect) and helper goroutines
// (the dialer, the per-connection reader, the reconnect timer) post
// events to the loop; the loop alone changes state. Each dial attempt
// carries a generation counter, so events from an abandoned connection
// are recognized as stale and dropped instead of corrupting the
// current one.
//
// Hooks registered with WithStateHook and WithEnvelopeHook run inline
// on the loop, which guarantees they observe transitions and frames in
// order. Send bypasses the loop and writes straight to the connection
// under its own mutex, so hooks can send frames without deadlocking.
//
// # Connection lifecycle
//
// States move Disconnected -> Connecting -> Connected. A lost
// connection or failed dial moves to Reconnecting and arms exactly one
// timer (fixed 5s delay by default); Disconnect at any point cancels
// the timer and settles in Disconnected. A server close with status
// 1000 is honored as final: the manager disconnects and does not retry.
// With DisableAutoReconnect set, failures land in Errored instead and
// a later Connect retries manually.
//
// While connected the manager sends a ping frame every 30 seconds. By
// default missing pongs are tolerated; setting Config.PongTimeout makes
// prolonged silence recycle the connection.
//
// # Usage
//
//	m, err := realtime.New(realtime.Config{
//	    Endpoint: "wss://api.evalforge.io",
//	},
//	    realtime.WithSessionProvider(session.Static(token)),
//	    realtime.WithEnvelopeHook(func(env wire.Envelope) {
//	        // route the envelope
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	if err := m.Connect(sessionID); err != nil {
//	    return err
//	}
package realtime
