package rooms

import (
	"context"
	"log/slog"
	"sync"

	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/wire"
)

// Conn is the transport surface the tracker needs: whether frames can
// be sent right now, and a fire-and-forget send. The realtime manager
// satisfies it.
type Conn interface {
	Connected() bool
	Send(frame any)
}

// Tracker records room membership in insertion order. Membership is
// the source of truth; frames are an optimization sent only while the
// connection is up, and Replay re-announces everything after a connect.
// All methods are safe for concurrent use.
type Tracker struct {
	conn   Conn
	logger *slog.Logger

	mu     sync.Mutex
	rooms  []string
	member map[string]struct{}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the tracker's logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = log
	}
}

// NewTracker creates a Tracker that emits frames over conn.
func NewTracker(conn Conn, opts ...Option) *Tracker {
	t := &Tracker{
		conn:   conn,
		logger: slog.Default(),
		member: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Join records membership in room and emits a join_room frame when the
// connection is up. Joining a room twice, or joining while offline, is
// safe: membership is recorded once and the frame is deferred to the
// next Replay.
func (t *Tracker) Join(room string) {
	if room == "" {
		t.logger.LogAttrs(context.Background(), slog.LevelWarn, "ignoring join with empty room")
		return
	}

	t.mu.Lock()
	if _, ok := t.member[room]; ok {
		t.mu.Unlock()
		return
	}
	t.member[room] = struct{}{}
	t.rooms = append(t.rooms, room)
	connected := t.conn.Connected()
	t.mu.Unlock()

	if connected {
		t.conn.Send(wire.JoinRoom(room))
	}
}

// Leave removes membership in room and emits a leave_room frame when
// the connection is up. Leaving a room that was never joined is a
// no-op. Insertion order of the remaining rooms is preserved.
func (t *Tracker) Leave(room string) {
	t.mu.Lock()
	if _, ok := t.member[room]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.member, room)
	for i, r := range t.rooms {
		if r == room {
			t.rooms = append(t.rooms[:i], t.rooms[i+1:]...)
			break
		}
	}
	connected := t.conn.Connected()
	t.mu.Unlock()

	if connected {
		t.conn.Send(wire.LeaveRoom(room))
	}
}

// Replay emits one join_room frame for every tracked room, in the order
// the rooms were first joined. Call it on every transition to the
// connected state so the server regains the full membership picture.
func (t *Tracker) Replay() {
	t.mu.Lock()
	rooms := make([]string, len(t.rooms))
	copy(rooms, t.rooms)
	t.mu.Unlock()

	for _, room := range rooms {
		t.logger.LogAttrs(context.Background(), slog.LevelDebug, "replaying room subscription",
			logger.Room(room),
		)
		t.conn.Send(wire.JoinRoom(room))
	}
}

// Rooms returns the tracked rooms in insertion order.
func (t *Tracker) Rooms() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.rooms))
	copy(out, t.rooms)
	return out
}

// Len returns how many rooms are tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rooms)
}
