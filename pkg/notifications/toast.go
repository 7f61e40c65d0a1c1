package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/evalforge/notifykit/pkg/logger"
)

const (
	// DefaultToastDuration is how long a toast stays visible when its
	// policy carries no display duration.
	DefaultToastDuration = 5 * time.Second

	// DefaultMaxVisible caps how many toasts show at once.
	DefaultMaxVisible = 3
)

// Toast is a notification staged for transient on-screen display.
type Toast struct {
	Notification Notification
	ExpiresAt    time.Time
}

// Stager decides which notifications surface as toasts and for how
// long. Only high and urgent notifications are eligible, frame types on
// the suppression list never toast, and at most maxVisible toasts show
// at once with the oldest evicted first. Expiry and manual dismissal
// run through the same idempotent path, so double dismissal is safe.
type Stager struct {
	maxVisible      int
	defaultDuration time.Duration
	suppressed      map[string]struct{}
	onDismiss       func(Toast)
	logger          *slog.Logger

	mu     sync.Mutex
	active []Toast // oldest first
	timers map[string]*time.Timer
}

// StagerOption configures a Stager.
type StagerOption func(*Stager)

// WithMaxVisible overrides how many toasts may show at once.
func WithMaxVisible(n int) StagerOption {
	return func(s *Stager) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

// WithToastDuration overrides the fallback display duration.
func WithToastDuration(d time.Duration) StagerOption {
	return func(s *Stager) {
		if d > 0 {
			s.defaultDuration = d
		}
	}
}

// WithSuppressedTypes replaces the set of frame types that never toast.
func WithSuppressedTypes(types ...string) StagerOption {
	return func(s *Stager) {
		s.suppressed = make(map[string]struct{}, len(types))
		for _, t := range types {
			s.suppressed[t] = struct{}{}
		}
	}
}

// WithDismissHook registers fn to run whenever a toast leaves the
// screen, whether by expiry, manual dismissal, or eviction. The hook
// runs outside the stager's lock.
func WithDismissHook(fn func(Toast)) StagerOption {
	return func(s *Stager) {
		s.onDismiss = fn
	}
}

// WithStagerLogger sets the logger for suppression and eviction events.
func WithStagerLogger(log *slog.Logger) StagerOption {
	return func(s *Stager) {
		s.logger = log
	}
}

// NewStager creates a Stager. By default it shows at most
// DefaultMaxVisible toasts for DefaultToastDuration each and suppresses
// connection_established frames, which announce transport state rather
// than anything the user must act on.
func NewStager(opts ...StagerOption) *Stager {
	s := &Stager{
		maxVisible:      DefaultMaxVisible,
		defaultDuration: DefaultToastDuration,
		suppressed:      map[string]struct{}{"connection_established": {}},
		logger:          slog.Default(),
		timers:          make(map[string]*time.Timer),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Stage shows n as a toast for d (or the default duration when d is not
// positive). It reports false when n is not toast-eligible: priority
// below high, or a suppressed frame type. Staging beyond the visible
// cap evicts the oldest toast through the regular dismiss path.
func (s *Stager) Stage(n Notification, d time.Duration) bool {
	if n.Priority < PriorityHigh {
		return false
	}
	if _, ok := s.suppressed[n.Type]; ok {
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "suppressing toast",
			logger.FrameType(n.Type),
			logger.NotificationID(n.ID),
		)
		return false
	}

	if d <= 0 {
		d = s.defaultDuration
	}

	s.mu.Lock()
	var evicted []Toast
	for len(s.active) >= s.maxVisible {
		t, ok := s.removeLocked(s.active[0].Notification.ID)
		if !ok {
			break
		}
		evicted = append(evicted, t)
	}

	id := n.ID
	s.active = append(s.active, Toast{Notification: n, ExpiresAt: time.Now().Add(d)})
	s.timers[id] = time.AfterFunc(d, func() { s.Dismiss(id) })
	s.mu.Unlock()

	for _, t := range evicted {
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "evicting oldest toast",
			logger.ToastID(t.Notification.ID),
		)
		s.notifyDismiss(t)
	}

	return true
}

// Dismiss removes the toast with the given id and cancels its expiry
// timer. Dismissing an id that is not on screen is a no-op, so expiry
// racing a manual dismissal is harmless.
func (s *Stager) Dismiss(id string) {
	s.mu.Lock()
	t, ok := s.removeLocked(id)
	s.mu.Unlock()

	if ok {
		s.notifyDismiss(t)
	}
}

// Clear dismisses every visible toast.
func (s *Stager) Clear() {
	s.mu.Lock()
	removed := make([]Toast, len(s.active))
	copy(removed, s.active)
	for _, t := range removed {
		s.removeLocked(t.Notification.ID)
	}
	s.mu.Unlock()

	for _, t := range removed {
		s.notifyDismiss(t)
	}
}

// Active returns a copy of the visible toasts, oldest first.
func (s *Stager) Active() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Toast, len(s.active))
	copy(out, s.active)
	return out
}

// Len returns the number of visible toasts.
func (s *Stager) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Stager) removeLocked(id string) (Toast, bool) {
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}

	for i, t := range s.active {
		if t.Notification.ID == id {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return t, true
		}
	}
	return Toast{}, false
}

func (s *Stager) notifyDismiss(t Toast) {
	if s.onDismiss != nil {
		s.onDismiss(t)
	}
}
