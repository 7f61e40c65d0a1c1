package notifykit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/evalforge/notifykit/pkg/broadcast"
	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/notifications"
	"github.com/evalforge/notifykit/pkg/notifier"
	"github.com/evalforge/notifykit/pkg/realtime"
	"github.com/evalforge/notifykit/pkg/rooms"
	"github.com/evalforge/notifykit/pkg/session"
	"github.com/evalforge/notifykit/pkg/wire"
)

const defaultEventBuffer = 32

// Manager is the composition root of the notification client. It wires
// the realtime connection to the frame router, the bounded store, the
// toast stager, the room tracker, and the platform notifier, and fans
// observable changes out on the Events stream.
//
// Create one Manager per session scope and dispose of it with Close;
// there is no package-level instance.
type Manager struct {
	conn     *realtime.Manager
	rooms    *rooms.Tracker
	router   *notifications.Router
	store    *notifications.Store
	toasts   *notifications.Stager
	notifier notifier.Notifier
	events   *broadcast.MemoryBroadcaster[Event]
	logger   *slog.Logger

	closeOnce sync.Once

	// construction-time settings, consumed by New
	session       session.Provider
	dialer        realtime.Dialer
	backoff       realtime.BackoffStrategy
	routerOpts    []notifications.RouterOption
	stagerOpts    []notifications.StagerOption
	storeCapacity int
	eventBuffer   int
}

// New assembles a Manager around the given connection config. The
// manager starts disconnected; call Connect to go live.
func New(cfg realtime.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		logger:        slog.Default(),
		notifier:      notifier.Noop{},
		storeCapacity: notifications.DefaultCapacity,
		eventBuffer:   defaultEventBuffer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.store = notifications.NewStore(m.storeCapacity)
	m.router = notifications.NewRouter(append(
		[]notifications.RouterOption{notifications.WithRouterLogger(m.logger)},
		m.routerOpts...,
	)...)
	m.toasts = notifications.NewStager(append(
		[]notifications.StagerOption{
			notifications.WithStagerLogger(m.logger),
			notifications.WithDismissHook(m.handleToastDismiss),
		},
		m.stagerOpts...,
	)...)
	m.events = broadcast.NewMemoryBroadcaster[Event](m.eventBuffer)

	rtOpts := []realtime.Option{
		realtime.WithLogger(m.logger),
		realtime.WithStateHook(m.handleState),
		realtime.WithEnvelopeHook(m.handleEnvelope),
	}
	if m.session != nil {
		rtOpts = append(rtOpts, realtime.WithSessionProvider(m.session))
	}
	if m.dialer != nil {
		rtOpts = append(rtOpts, realtime.WithDialer(m.dialer))
	}
	if m.backoff != nil {
		rtOpts = append(rtOpts, realtime.WithBackoff(m.backoff))
	}

	conn, err := realtime.New(cfg, rtOpts...)
	if err != nil {
		_ = m.events.Close()
		return nil, err
	}
	m.conn = conn
	m.rooms = rooms.NewTracker(conn, rooms.WithLogger(m.logger))

	return m, nil
}

// Connect starts the connection lifecycle for the given session.
func (m *Manager) Connect(sessionID string) error {
	return m.conn.Connect(sessionID)
}

// Disconnect tears the connection down and cancels all pending
// reconnect work. Room membership and stored notifications survive,
// so a later Connect resumes where the client left off.
func (m *Manager) Disconnect() {
	m.conn.Disconnect()
}

// Close disconnects, cancels every timer, and shuts down the Events
// stream. The manager cannot be reused. Close is idempotent.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		err = m.conn.Close()
		m.toasts.Clear()
		_ = m.events.Close()
	})
	return err
}

// State returns the connection state.
func (m *Manager) State() realtime.State {
	return m.conn.State()
}

// Connected reports whether the connection is live.
func (m *Manager) Connected() bool {
	return m.conn.Connected()
}

// Notifications returns the stored notifications, newest first.
func (m *Manager) Notifications() []notifications.Notification {
	return m.store.List()
}

// UnreadCount returns how many stored notifications are unread.
func (m *Manager) UnreadCount() int {
	return m.store.UnreadCount()
}

// MarkRead marks one notification as read. Unknown ids are a no-op.
func (m *Manager) MarkRead(id string) {
	m.store.MarkRead(id)
}

// MarkAllRead marks every stored notification as read.
func (m *Manager) MarkAllRead() {
	m.store.MarkAllRead()
}

// Remove deletes one notification from the store. Unknown ids are a
// no-op.
func (m *Manager) Remove(id string) {
	m.store.Remove(id)
}

// ClearNotifications empties the store and dismisses every visible
// toast.
func (m *Manager) ClearNotifications() {
	m.store.Clear()
	m.toasts.Clear()
}

// Toasts returns the visible toasts, oldest first.
func (m *Manager) Toasts() []notifications.Toast {
	return m.toasts.Active()
}

// DismissToast removes a toast before it expires. Unknown ids are a
// no-op.
func (m *Manager) DismissToast(id string) {
	m.toasts.Dismiss(id)
}

// JoinRoom subscribes to a notification room. The join frame goes out
// immediately when connected and is replayed after every reconnect.
func (m *Manager) JoinRoom(room string) {
	m.rooms.Join(room)
}

// LeaveRoom unsubscribes from a notification room.
func (m *Manager) LeaveRoom(room string) {
	m.rooms.Leave(room)
}

// Rooms returns the joined rooms in join order.
func (m *Manager) Rooms() []string {
	return m.rooms.Rooms()
}

// Events returns a stream of manager events. The stream closes when
// ctx is cancelled or the manager is closed. Slow consumers miss
// events rather than blocking the pipeline.
func (m *Manager) Events(ctx context.Context) <-chan Event {
	sub := m.events.Subscribe(ctx)
	out := make(chan Event, m.eventBuffer)

	go func() {
		defer close(out)
		for msg := range sub.Receive(ctx) {
			select {
			case out <- msg.Data:
			case <-ctx.Done():
				_ = sub.Close()
				return
			}
		}
	}()

	return out
}

func (m *Manager) publish(ev Event) {
	_ = m.events.Broadcast(context.Background(), broadcast.Message[Event]{Data: ev})
}

// handleState runs on the connection's event loop for every state
// transition. Each arrival in the connected state replays the full
// room membership so the server regains its routing picture.
func (m *Manager) handleState(s realtime.State) {
	if s == realtime.StateConnected {
		m.rooms.Replay()
	}
	m.publish(Event{Kind: EventStateChanged, State: s})
}

// handleEnvelope runs on the connection's event loop for every decoded
// frame, in arrival order: route, store, stage, and for urgent
// notifications raise a platform notification when permission was
// granted.
func (m *Manager) handleEnvelope(env wire.Envelope) {
	ctx := context.Background()

	n, policy, ok := m.router.Route(ctx, env)
	if !ok {
		return
	}

	m.store.Add(n)
	m.publish(Event{Kind: EventNotificationReceived, Notification: n})

	if m.toasts.Stage(n, policy.DisplayDuration) {
		m.publish(Event{Kind: EventToastStaged, Notification: n})
	}

	if n.Priority == notifications.PriorityUrgent && m.notifier.Permission(ctx) == notifier.PermissionGranted {
		if err := m.notifier.Notify(ctx, n.Title, n.Message); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelWarn, "platform notification failed",
				logger.NotificationID(n.ID),
				logger.Error(err),
			)
		}
	}
}

func (m *Manager) handleToastDismiss(t notifications.Toast) {
	m.publish(Event{Kind: EventToastDismissed, Toast: t})
}
