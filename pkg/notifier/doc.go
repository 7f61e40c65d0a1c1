// Package notifier abstracts the platform's "show a system notification"
// capability behind a small interface.
//
// The core pipeline never talks to a concrete desktop or browser API; it
// receives a Notifier at construction and calls it for notifications that
// warrant an out-of-app alert. Platforms gate system notifications behind a
// user permission, so the interface carries a query/request pair alongside
// Notify.
//
// Two implementations ship with the package: Noop, which reports permission
// denied and swallows every call, and Log, which writes alerts to a
// structured logger. Real desktop integrations implement the same interface
// in the embedding application.
//
// Basic usage:
//
//	n := notifier.NewLog(log)
//	if n.Permission(ctx) == notifier.PermissionGranted {
//	    _ = n.Notify(ctx, "Deadline approaching", "Evaluation closes in 2 hours")
//	}
package notifier
