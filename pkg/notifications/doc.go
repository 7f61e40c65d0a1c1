// Package notifications holds the client-side notification state: a
// bounded store of recent notifications, a router that turns inbound
// frames into them, and a stager that surfaces the important ones as
// transient toasts.
//
// # Architecture
//
// The package is split by responsibility:
//
//   - Router: maps inbound envelopes to notifications via a per-type
//     policy table (priority, toast duration)
//   - Store: keeps the most recent notifications, newest first, with
//     idempotent read/remove operations
//   - Stager: shows high and urgent notifications as toasts, capped at
//     a fixed count with automatic expiry
//
// # Basic Usage
//
//	router := notifications.NewRouter()
//	store := notifications.NewStore(notifications.DefaultCapacity)
//	toasts := notifications.NewStager(
//	    notifications.WithDismissHook(func(t notifications.Toast) {
//	        // update the UI
//	    }),
//	)
//
//	// For every decoded envelope:
//	if n, policy, ok := router.Route(ctx, env); ok {
//	    store.Add(n)
//	    toasts.Stage(n, policy.DisplayDuration)
//	}
//
// # Priority Levels
//
// Notifications carry one of four priorities:
//   - PriorityLow: routine, list-only
//   - PriorityMedium: standard updates
//   - PriorityHigh: toast-eligible (deadline reminders)
//   - PriorityUrgent: toast-eligible, longest display (maintenance)
//
// Only high and urgent notifications become toasts; everything routed
// lands in the store regardless of priority.
package notifications
