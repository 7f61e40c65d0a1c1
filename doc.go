// Package notifykit is the client-side realtime notification manager
// for the EvalForge evaluation platform.
//
// It maintains one websocket connection per session, decodes the
// server's notification frames, keeps a bounded list of recent
// notifications with unread tracking, surfaces the important ones as
// transient toasts, keeps room subscriptions alive across reconnects,
// and raises platform notifications for urgent events.
//
// # Quick start
//
//	m, err := notifykit.New(realtime.Config{
//	    Endpoint: "wss://api.evalforge.io",
//	},
//	    notifykit.WithSessionProvider(session.Static(token)),
//	    notifykit.WithNotifier(notifier.NewLog(nil)),
//	)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	if err := m.Connect(sessionID); err != nil {
//	    return err
//	}
//	m.JoinRoom("project:42")
//
//	for ev := range m.Events(ctx) {
//	    switch ev.Kind {
//	    case notifykit.EventNotificationReceived:
//	        render(ev.Notification)
//	    case notifykit.EventStateChanged:
//	        setBanner(ev.State)
//	    }
//	}
//
// # Package layout
//
//   - pkg/wire: frame vocabulary and JSON codec
//   - pkg/realtime: connection lifecycle (dial, heartbeat, reconnect)
//   - pkg/rooms: room membership with replay on reconnect
//   - pkg/notifications: router, bounded store, toast stager
//   - pkg/notifier: platform notification port
//   - pkg/session: session token source
//   - pkg/relay: reference server endpoint for development and tests
//
// Everything is instance-scoped: construct a Manager, use it, close it.
// No package-level state exists, so tests and multi-account clients can
// run several managers side by side.
package notifykit
