package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/wire"
)

// Policy fixes how a frame type presents: the default priority assigned
// to its notifications and how long its toast stays on screen.
type Policy struct {
	Priority        Priority
	DisplayDuration time.Duration
}

// DefaultPolicies returns the built-in presentation policy per inbound
// frame type. Deadline reminders are high priority and maintenance
// windows are urgent with the longest display time; everything else is
// routine.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		wire.TypeConnectionEstablished: {Priority: PriorityLow, DisplayDuration: 3 * time.Second},
		wire.TypeAssignmentUpdate:      {Priority: PriorityMedium, DisplayDuration: 5 * time.Second},
		wire.TypeEvaluationComplete:    {Priority: PriorityMedium, DisplayDuration: 5 * time.Second},
		wire.TypeProjectUpdate:         {Priority: PriorityMedium, DisplayDuration: 5 * time.Second},
		wire.TypeDeadlineReminder:      {Priority: PriorityHigh, DisplayDuration: 7 * time.Second},
		wire.TypeSystemMaintenance:     {Priority: PriorityUrgent, DisplayDuration: 10 * time.Second},
	}
}

// Router converts inbound envelopes into notifications according to a
// per-type policy table. Frames with no policy are dropped with a
// warning; pong frames are dropped silently.
type Router struct {
	policies map[string]Policy
	logger   *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger used for dropped-frame reporting.
func WithRouterLogger(log *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = log
	}
}

// WithPolicy adds or overrides the policy for a frame type.
func WithPolicy(frameType string, p Policy) RouterOption {
	return func(r *Router) {
		r.policies[frameType] = p
	}
}

// NewRouter creates a Router with the default policy table.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		policies: DefaultPolicies(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Route maps env to a notification and the policy governing its
// presentation. It reports false when the frame produces nothing: pong
// frames keep the connection alive and are not user-facing, and frames
// with an unknown type are logged and dropped.
//
// The notification takes title and message verbatim from the envelope
// and the policy's priority, unless the envelope carries a valid
// priority of its own.
func (r *Router) Route(ctx context.Context, env wire.Envelope) (Notification, Policy, bool) {
	if env.Type == wire.TypePong {
		return Notification{}, Policy{}, false
	}

	policy, ok := r.policies[env.Type]
	if !ok {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "dropping frame with unknown type",
			logger.FrameType(env.Type),
		)
		return Notification{}, Policy{}, false
	}

	priority := policy.Priority
	if env.Priority != "" {
		if p, valid := ParsePriority(env.Priority); valid {
			priority = p
		} else {
			r.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring invalid frame priority",
				logger.FrameType(env.Type),
				slog.String("priority", env.Priority),
			)
		}
	}

	n := Notification{
		ID:        newID(),
		Type:      env.Type,
		Title:     env.Title,
		Message:   env.Message,
		Priority:  priority,
		Data:      env.Data,
		Timestamp: time.Now(),
	}

	return n, policy, true
}
