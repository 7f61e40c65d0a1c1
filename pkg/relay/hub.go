package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/evalforge/notifykit/pkg/logger"
)

// Publisher delivers events to connected clients. The hub implements
// it; the bridge and the scenario player depend only on the interface.
type Publisher interface {
	// Publish fans the event out to its audience and reports how many
	// clients it was queued for.
	Publish(event Event) int
}

// client is one websocket connection's hub-side handle. The send
// channel is drained by the connection's writer goroutine; closeSend
// fires at most once no matter how many paths race to unregister.
type client struct {
	session string
	send    chan []byte

	closeOnce sync.Once
}

func (c *client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// hub is the relay's client registry: which connections exist, which
// session each belongs to, and which rooms each has joined. All maps
// are guarded by mu; delivery is a non-blocking queue onto each
// client's send channel so one stalled client never holds up the rest.
type hub struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	rooms   map[string]map[*client]struct{}
}

func newHub(log *slog.Logger) *hub {
	return &hub{
		log:     log,
		clients: make(map[*client]struct{}),
		rooms:   make(map[string]map[*client]struct{}),
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// unregister removes the client from the registry and every room it
// joined, then closes its send channel. Closing under mu serializes
// against Publish, which queues frames while holding the same lock.
// Safe to call more than once.
func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c)
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	c.closeSend()
}

func (h *hub) join(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *hub) leave(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Publish implements Publisher. A room-scoped event reaches the room's
// members, a session-scoped event reaches that session's connections,
// and an unscoped event reaches everyone. An event scoped both ways
// reaches the intersection.
func (h *hub) Publish(event Event) int {
	data, err := event.frame()
	if err != nil {
		h.log.LogAttrs(context.Background(), slog.LevelError, "failed to encode event",
			logger.FrameType(event.Type),
			logger.Error(err),
		)
		return 0
	}

	// Queueing happens under mu so no send can race the channel close
	// in unregister. Sends are non-blocking, so the lock is held only
	// for as long as the buffered queues accept frames.
	h.mu.Lock()
	delivered := 0
	var dropped []string
	for c := range h.audience(event) {
		select {
		case c.send <- data:
			delivered++
		default:
			dropped = append(dropped, c.session)
		}
	}
	h.mu.Unlock()

	for _, session := range dropped {
		h.log.LogAttrs(context.Background(), slog.LevelWarn, "client send queue full, frame dropped",
			logger.SessionID(session),
			logger.FrameType(event.Type),
		)
	}
	return delivered
}

// audience resolves the event's target set. Callers hold mu.
func (h *hub) audience(event Event) map[*client]struct{} {
	pool := h.clients
	if event.Room != "" {
		pool = h.rooms[event.Room]
	}
	if event.Session == "" {
		return pool
	}

	out := make(map[*client]struct{})
	for c := range pool {
		if c.session == event.Session {
			out[c] = struct{}{}
		}
	}
	return out
}

// stats reports connection and room counts for logging.
func (h *hub) stats() (clients, rooms int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients), len(h.rooms)
}
