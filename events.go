package notifykit

import (
	"github.com/evalforge/notifykit/pkg/notifications"
	"github.com/evalforge/notifykit/pkg/realtime"
)

// EventKind discriminates the events emitted on the Events stream.
type EventKind string

const (
	// EventStateChanged fires on every connection state transition.
	EventStateChanged EventKind = "state_changed"

	// EventNotificationReceived fires when an inbound frame lands in
	// the store.
	EventNotificationReceived EventKind = "notification_received"

	// EventToastStaged fires when a notification surfaces as a toast.
	EventToastStaged EventKind = "toast_staged"

	// EventToastDismissed fires when a toast leaves the screen, whether
	// by expiry, manual dismissal, or eviction.
	EventToastDismissed EventKind = "toast_dismissed"
)

// Event is one observable change in the manager. Only the fields
// relevant to Kind are populated: State for state changes, Notification
// for received notifications, Toast for toast lifecycle events.
type Event struct {
	Kind         EventKind
	State        realtime.State
	Notification notifications.Notification
	Toast        notifications.Toast
}
