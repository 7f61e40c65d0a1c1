package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/session"
	"github.com/evalforge/notifykit/pkg/wire"
)

// Loop events. External callers and helper goroutines post these; the
// event loop is the only goroutine that acts on them, which keeps every
// lifecycle decision on a single logical thread.
type (
	cmdConnect    struct{ sessionID string }
	cmdDisconnect struct{}

	dialResult struct {
		gen  uint64
		conn Conn
		err  error
	}

	inboundFrame struct {
		gen  uint64
		data []byte
	}

	readerClosed struct {
		gen uint64
		err error
	}

	reconnectFire struct{ gen uint64 }
)

// Manager maintains a single websocket connection to the notification
// endpoint: it dials, reads frames, emits heartbeats, and reconnects on
// failure with at most one pending reconnect timer.
//
// All lifecycle decisions run on one event-loop goroutine, so state
// hooks and envelope hooks fire in order and never race each other.
// Send writes directly to the connection and is safe from any
// goroutine, including from inside hooks.
type Manager struct {
	cfg     Config
	dialer  Dialer
	backoff BackoffStrategy
	session session.Provider
	logger  *slog.Logger

	onState    func(State)
	onEnvelope func(wire.Envelope)

	loopCh chan any
	quit   chan struct{}
	done   chan struct{}

	closeOnce sync.Once

	// mu guards the fields below. Only the event loop mutates them;
	// other goroutines take mu for reads (State, Send).
	mu        sync.Mutex
	state     State
	conn      Conn
	gen       uint64
	reconnect *time.Timer
	attempt   int
	sessionID string
	lastPong  time.Time
	closed    bool

	// writeMu serializes writes to the current connection so Send,
	// heartbeats, and close frames never interleave.
	writeMu sync.Mutex
}

// New creates a Manager and starts its event loop. The manager stays
// in StateDisconnected until Connect is called.
func New(cfg Config, opts ...Option) (*Manager, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	cfg = cfg.withDefaults()

	m := &Manager{
		cfg:    cfg,
		logger: slog.Default(),
		state:  StateDisconnected,
		loopCh: make(chan any, 16),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.dialer == nil {
		m.dialer = NewWebsocketDialer(cfg.HandshakeTimeout, cfg.WriteTimeout)
	}
	if m.backoff == nil {
		m.backoff = FixedBackoff{Interval: cfg.ReconnectDelay}
	}

	go m.loop()

	return m, nil
}

// Connect starts the connection lifecycle for the given session. An
// empty session id is rejected with a warning. Connect is ignored while
// a connection is active or pending; call Disconnect first to switch
// sessions. From StateErrored, Connect retries.
func (m *Manager) Connect(sessionID string) error {
	if sessionID == "" {
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "ignoring connect with empty session id")
		return ErrEmptySessionID
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}

	m.post(cmdConnect{sessionID: sessionID})
	return nil
}

// Disconnect tears down the connection, cancels any pending reconnect
// timer, and settles in StateDisconnected. It is safe to call in any
// state.
func (m *Manager) Disconnect() {
	m.post(cmdDisconnect{})
}

// Close disconnects and stops the event loop. The manager cannot be
// reused afterwards. Close is idempotent.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		close(m.quit)
		<-m.done
	})
	return nil
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether frames can be sent right now.
func (m *Manager) Connected() bool {
	return m.State() == StateConnected
}

// Send encodes frame and writes it to the connection. When the manager
// is not connected the frame is dropped with a log line; transient
// sends never fail hard. Send is safe from any goroutine.
func (m *Manager) Send(frame any) {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected || conn == nil {
		attrs := []slog.Attr{logger.State(m.State().String())}
		if f, ok := frame.(wire.Frame); ok {
			attrs = append(attrs, logger.FrameType(f.Type))
		}
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "dropping outbound frame: not connected", attrs...)
		return
	}

	data, err := wire.Encode(frame)
	if err != nil {
		m.logger.LogAttrs(context.Background(), slog.LevelError, "failed to encode outbound frame",
			logger.Error(err),
		)
		return
	}

	m.writeMu.Lock()
	err = conn.WriteMessage(data)
	m.writeMu.Unlock()

	if err != nil {
		// The reader on this connection surfaces the failure and
		// drives the reconnect; here the frame is just lost.
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "outbound frame write failed",
			logger.Error(err),
		)
	}
}

// post delivers an event to the loop unless the manager is shutting
// down. It reports whether the event was accepted.
func (m *Manager) post(ev any) bool {
	select {
	case m.loopCh <- ev:
		return true
	case <-m.quit:
		return false
	}
}

func (m *Manager) loop() {
	defer close(m.done)

	heartbeat := time.NewTicker(m.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-m.quit:
			m.handleDisconnect()
			return
		case <-heartbeat.C:
			m.handleHeartbeat()
		case ev := <-m.loopCh:
			switch ev := ev.(type) {
			case cmdConnect:
				m.handleConnect(ev.sessionID)
			case cmdDisconnect:
				m.handleDisconnect()
			case dialResult:
				m.handleDialResult(ev)
			case inboundFrame:
				m.handleInbound(ev)
			case readerClosed:
				m.handleReaderClosed(ev)
			case reconnectFire:
				m.handleReconnectFire(ev)
			}
		}
	}
}

// setState applies a transition and fires the state hook. Invalid
// transitions are logged and refused; same-state is a silent no-op.
// Only the event loop calls setState.
func (m *Manager) setState(to State) {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return
	}
	if !canTransition(from, to) {
		m.mu.Unlock()
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "refusing invalid state transition",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
		return
	}
	m.state = to
	m.mu.Unlock()

	m.logger.LogAttrs(context.Background(), slog.LevelDebug, "connection state changed",
		slog.String("from", from.String()),
		logger.State(to.String()),
	)

	if m.onState != nil {
		m.onState(to)
	}
}

func (m *Manager) handleConnect(sessionID string) {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	if state != StateDisconnected && state != StateErrored {
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "connect ignored: connection already active",
			logger.State(state.String()),
			logger.SessionID(sessionID),
		)
		return
	}

	m.mu.Lock()
	m.sessionID = sessionID
	m.attempt = 0
	m.mu.Unlock()

	m.startDial()
}

// startDial transitions to StateConnecting and dials in a helper
// goroutine so the loop stays responsive. Each dial gets a fresh
// generation; results tagged with an older generation are stale.
func (m *Manager) startDial() {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	sessionID := m.sessionID
	attempt := m.attempt
	m.mu.Unlock()

	m.setState(StateConnecting)

	target := m.dialURL(sessionID)

	m.logger.LogAttrs(context.Background(), slog.LevelDebug, "dialing notification endpoint",
		logger.SessionID(sessionID),
		logger.Attempt(attempt),
	)

	// Token lookup and dialing happen off the loop so a slow provider
	// or handshake never stalls frame processing.
	go func() {
		header := m.authHeader()
		conn, err := m.dialer.Dial(context.Background(), target, header)
		if !m.post(dialResult{gen: gen, conn: conn, err: err}) && conn != nil {
			_ = conn.Close(websocket.CloseGoingAway, "shutting down")
		}
	}()
}

func (m *Manager) dialURL(sessionID string) string {
	return strings.TrimSuffix(m.cfg.Endpoint, "/") + "/ws/" + url.PathEscape(sessionID)
}

func (m *Manager) authHeader() http.Header {
	header := http.Header{}
	if m.session == nil {
		return header
	}
	if token, ok := m.session.Token(context.Background()); ok && token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header
}

func (m *Manager) handleDialResult(ev dialResult) {
	m.mu.Lock()
	stale := ev.gen != m.gen
	m.mu.Unlock()

	if stale {
		if ev.conn != nil {
			_ = ev.conn.Close(websocket.CloseGoingAway, "stale connection")
		}
		return
	}

	if ev.err != nil {
		m.mu.Lock()
		attempt := m.attempt
		m.mu.Unlock()
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "dial failed",
			logger.Error(ev.err),
			logger.Attempt(attempt),
		)
		m.scheduleReconnect()
		return
	}

	m.mu.Lock()
	m.conn = ev.conn
	m.attempt = 0
	m.lastPong = time.Now()
	gen := m.gen
	sessionID := m.sessionID
	m.mu.Unlock()

	m.setState(StateConnected)
	m.logger.LogAttrs(context.Background(), slog.LevelInfo, "connected",
		logger.SessionID(sessionID),
	)

	go m.readLoop(gen, ev.conn)
}

// readLoop pumps frames from one connection into the event loop. It
// exits when the connection fails or the manager shuts down.
func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.post(readerClosed{gen: gen, err: err})
			return
		}
		if !m.post(inboundFrame{gen: gen, data: data}) {
			return
		}
	}
}

func (m *Manager) handleInbound(ev inboundFrame) {
	m.mu.Lock()
	stale := ev.gen != m.gen
	m.mu.Unlock()
	if stale {
		return
	}

	env, err := wire.Decode(ev.data)
	if err != nil {
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "dropping malformed frame",
			logger.Error(err),
		)
		return
	}

	if env.Type == wire.TypePong {
		m.mu.Lock()
		m.lastPong = time.Now()
		m.mu.Unlock()
	}

	if m.onEnvelope != nil {
		m.onEnvelope(env)
	}
}

func (m *Manager) handleReaderClosed(ev readerClosed) {
	m.mu.Lock()
	stale := ev.gen != m.gen
	m.mu.Unlock()
	if stale {
		return
	}

	m.teardownConn(websocket.CloseGoingAway, "read failed")

	// A normal closure is the server telling the client to stay away;
	// anything else is a fault worth retrying.
	if code, ok := closeCode(ev.err); ok && code == websocket.CloseNormalClosure {
		m.logger.LogAttrs(context.Background(), slog.LevelInfo, "connection closed by server",
			slog.Int("code", code),
		)
		m.setState(StateDisconnected)
		return
	}

	m.logger.LogAttrs(context.Background(), slog.LevelWarn, "connection lost",
		logger.Error(ev.err),
	)
	m.scheduleReconnect()
}

// teardownConn detaches and closes the current connection and bumps the
// generation so in-flight events from it become stale.
func (m *Manager) teardownConn(code int, reason string) {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.gen++
	m.mu.Unlock()

	if conn != nil {
		m.writeMu.Lock()
		_ = conn.Close(code, reason)
		m.writeMu.Unlock()
	}
}

// scheduleReconnect arms the single reconnect timer, or lands in
// StateErrored when automatic reconnection is disabled. The
// reconnect-nil guard enforces that overlapping failure events never
// produce a second timer.
func (m *Manager) scheduleReconnect() {
	if m.cfg.DisableAutoReconnect {
		m.setState(StateErrored)
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "connection errored; automatic reconnection disabled")
		return
	}

	m.mu.Lock()
	if m.reconnect != nil {
		m.mu.Unlock()
		return
	}
	m.attempt++
	attempt := m.attempt
	gen := m.gen
	delay := m.backoff.NextInterval(attempt)
	m.reconnect = time.AfterFunc(delay, func() {
		m.post(reconnectFire{gen: gen})
	})
	m.mu.Unlock()

	m.setState(StateReconnecting)
	m.logger.LogAttrs(context.Background(), slog.LevelInfo, "scheduling reconnect",
		logger.Attempt(attempt),
		logger.Duration(delay.String()),
	)
}

func (m *Manager) handleReconnectFire(ev reconnectFire) {
	m.mu.Lock()
	stale := ev.gen != m.gen || m.reconnect == nil
	if !stale {
		m.reconnect = nil
	}
	m.mu.Unlock()

	if stale {
		return
	}

	m.startDial()
}

func (m *Manager) handleDisconnect() {
	m.mu.Lock()
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
	m.attempt = 0
	m.mu.Unlock()

	m.teardownConn(websocket.CloseNormalClosure, "client disconnect")
	m.setState(StateDisconnected)

	m.logger.LogAttrs(context.Background(), slog.LevelInfo, "disconnected")
}

// handleHeartbeat pings the server on the configured cadence and, when
// a pong timeout is set, recycles connections that have gone silent.
func (m *Manager) handleHeartbeat() {
	m.mu.Lock()
	connected := m.state == StateConnected
	conn := m.conn
	lastPong := m.lastPong
	m.mu.Unlock()

	if !connected || conn == nil {
		return
	}

	if m.cfg.PongTimeout > 0 && time.Since(lastPong) > m.cfg.PongTimeout {
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "pong timeout exceeded; recycling connection",
			logger.Duration(time.Since(lastPong).String()),
		)
		m.teardownConn(websocket.CloseNormalClosure, "pong timeout")
		m.scheduleReconnect()
		return
	}

	data, err := wire.Encode(wire.Ping())
	if err != nil {
		return
	}

	m.writeMu.Lock()
	err = conn.WriteMessage(data)
	m.writeMu.Unlock()

	if err != nil {
		// The reader surfaces the broken connection.
		m.logger.LogAttrs(context.Background(), slog.LevelDebug, "heartbeat write failed",
			logger.Error(err),
		)
	}
}
