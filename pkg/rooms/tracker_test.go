package rooms_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/rooms"
	"github.com/evalforge/notifykit/pkg/wire"
)

type fakeConn struct {
	mu        sync.Mutex
	connected bool
	frames    []any
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) Send(frame any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
}

func (c *fakeConn) setConnected(up bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = up
}

func (c *fakeConn) sent() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.frames))
	copy(out, c.frames)
	return out
}

func newTracker(connected bool) (*rooms.Tracker, *fakeConn) {
	conn := &fakeConn{connected: connected}
	return rooms.NewTracker(conn, rooms.WithLogger(logger.NewNoop())), conn
}

func TestTracker_JoinEmitsWhenConnected(t *testing.T) {
	tracker, conn := newTracker(true)

	tracker.Join("project:42")

	assert.Equal(t, []any{wire.JoinRoom("project:42")}, conn.sent())
	assert.Equal(t, []string{"project:42"}, tracker.Rooms())
}

func TestTracker_JoinWhileDisconnectedDefers(t *testing.T) {
	tracker, conn := newTracker(false)

	tracker.Join("project:42")
	assert.Empty(t, conn.sent(), "no frame while offline")
	assert.Equal(t, []string{"project:42"}, tracker.Rooms(), "membership recorded anyway")

	conn.setConnected(true)
	tracker.Replay()

	assert.Equal(t, []any{wire.JoinRoom("project:42")}, conn.sent(),
		"exactly one join frame after connecting")
}

func TestTracker_JoinIdempotent(t *testing.T) {
	tracker, conn := newTracker(true)

	tracker.Join("project:42")
	tracker.Join("project:42")

	assert.Len(t, conn.sent(), 1)
	assert.Equal(t, 1, tracker.Len())
}

func TestTracker_JoinEmptyRoomIgnored(t *testing.T) {
	tracker, conn := newTracker(true)

	tracker.Join("")

	assert.Empty(t, conn.sent())
	assert.Equal(t, 0, tracker.Len())
}

func TestTracker_Leave(t *testing.T) {
	tracker, conn := newTracker(true)

	tracker.Join("project:42")
	tracker.Leave("project:42")

	require.Equal(t, []any{
		wire.JoinRoom("project:42"),
		wire.LeaveRoom("project:42"),
	}, conn.sent())
	assert.Empty(t, tracker.Rooms())
}

func TestTracker_LeaveUnknownRoomIsNoOp(t *testing.T) {
	tracker, conn := newTracker(true)

	tracker.Leave("never-joined")

	assert.Empty(t, conn.sent())
}

func TestTracker_LeaveWhileDisconnectedDropsFromReplay(t *testing.T) {
	tracker, conn := newTracker(false)

	tracker.Join("a")
	tracker.Join("b")
	tracker.Leave("a")

	conn.setConnected(true)
	tracker.Replay()

	assert.Equal(t, []any{wire.JoinRoom("b")}, conn.sent())
}

func TestTracker_ReplayPreservesInsertionOrder(t *testing.T) {
	tracker, conn := newTracker(true)

	tracker.Join("a")
	tracker.Join("b")
	tracker.Join("c")
	tracker.Leave("b")

	initial := len(conn.sent())
	tracker.Replay()

	replayed := conn.sent()[initial:]
	assert.Equal(t, []any{wire.JoinRoom("a"), wire.JoinRoom("c")}, replayed)
}

func TestTracker_ReplayEmitsEachRoomOncePerCall(t *testing.T) {
	tracker, conn := newTracker(false)

	tracker.Join("roomA")
	tracker.Join("roomB")

	conn.setConnected(true)
	tracker.Replay()

	joins := map[string]int{}
	for _, f := range conn.sent() {
		frame, ok := f.(wire.Frame)
		require.True(t, ok)
		joins[frame.RoomID]++
	}

	assert.Equal(t, map[string]int{"roomA": 1, "roomB": 1}, joins)
}

func TestTracker_RoomsReturnsCopy(t *testing.T) {
	tracker, _ := newTracker(true)

	tracker.Join("a")
	got := tracker.Rooms()
	got[0] = "mutated"

	assert.Equal(t, []string{"a"}, tracker.Rooms())
}
