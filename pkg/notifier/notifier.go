package notifier

import (
	"context"
	"log/slog"
)

// Permission reflects the platform's consent state for system notifications.
type Permission string

const (
	// PermissionGranted means system notifications may be shown.
	PermissionGranted Permission = "granted"
	// PermissionDenied means the user refused system notifications.
	PermissionDenied Permission = "denied"
	// PermissionDefault means the user has not been asked yet.
	PermissionDefault Permission = "default"
)

// Notifier is the platform capability for out-of-app alerts.
// Implementations must be safe for concurrent use.
type Notifier interface {
	// Notify shows a system notification.
	Notify(ctx context.Context, title, body string) error

	// Permission reports the current consent state without prompting.
	Permission(ctx context.Context) Permission

	// RequestPermission prompts the user when consent is still undecided
	// and returns the resulting state.
	RequestPermission(ctx context.Context) (Permission, error)
}

// Noop is a Notifier that does nothing and never has permission.
// Useful for headless environments and tests.
type Noop struct{}

func (Noop) Notify(_ context.Context, _, _ string) error { return nil }

func (Noop) Permission(_ context.Context) Permission { return PermissionDenied }

func (Noop) RequestPermission(_ context.Context) (Permission, error) {
	return PermissionDenied, nil
}

// Log is a Notifier that writes alerts to a structured logger. Permission is
// always granted.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging notifier. A nil logger falls back to slog.Default.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, title, body string) error {
	l.logger.LogAttrs(ctx, slog.LevelInfo, "system notification",
		slog.String("title", title),
		slog.String("body", body),
	)
	return nil
}

func (l *Log) Permission(_ context.Context) Permission { return PermissionGranted }

func (l *Log) RequestPermission(_ context.Context) (Permission, error) {
	return PermissionGranted, nil
}
