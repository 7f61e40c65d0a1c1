package realtime_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/realtime"
	"github.com/evalforge/notifykit/pkg/session"
	"github.com/evalforge/notifykit/pkg/wire"
)

type fakeConn struct {
	inbound chan []byte
	readErr chan error

	mu        sync.Mutex
	written   [][]byte
	closeCode int
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan []byte, 16),
		readErr: make(chan error, 1),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case err := <-c.readErr:
		return nil, err
	case <-c.closed:
		return nil, net.ErrClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeCode = code
		c.mu.Unlock()
		close(c.closed)
	})
	return nil
}

func (c *fakeConn) deliver(frame string) {
	c.inbound <- []byte(frame)
}

func (c *fakeConn) failRead(err error) {
	c.readErr <- err
}

func (c *fakeConn) sentFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.written))
	for i, data := range c.written {
		out[i] = string(data)
	}
	return out
}

func (c *fakeConn) sentContains(substr string) bool {
	for _, frame := range c.sentFrames() {
		if bytes.Contains([]byte(frame), []byte(substr)) {
			return true
		}
	}
	return false
}

type fakeDialer struct {
	mu       sync.Mutex
	failures int
	urls     []string
	headers  []http.Header
	conns    []*fakeConn
}

func (d *fakeDialer) Dial(ctx context.Context, target string, header http.Header) (realtime.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.urls = append(d.urls, target)
	d.headers = append(d.headers, header)

	if d.failures > 0 {
		d.failures--
		return nil, errors.New("connection refused")
	}

	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *fakeDialer) lastURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.urls[len(d.urls)-1]
}

func (d *fakeDialer) lastHeader() http.Header {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.headers[len(d.headers)-1]
}

type stateRecorder struct {
	mu     sync.Mutex
	states []realtime.State
}

func (r *stateRecorder) hook(s realtime.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []realtime.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.State, len(r.states))
	copy(out, r.states)
	return out
}

type envelopeRecorder struct {
	mu        sync.Mutex
	envelopes []wire.Envelope
}

func (r *envelopeRecorder) hook(env wire.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envelopes = append(r.envelopes, env)
}

func (r *envelopeRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.envelopes))
	for i, env := range r.envelopes {
		out[i] = env.Type
	}
	return out
}

func testConfig() realtime.Config {
	return realtime.Config{
		Endpoint:       "wss://api.evalforge.test",
		ReconnectDelay: 25 * time.Millisecond,
	}
}

func newTestManager(t *testing.T, cfg realtime.Config, opts ...realtime.Option) (*realtime.Manager, *fakeDialer) {
	t.Helper()

	dialer := &fakeDialer{}
	opts = append([]realtime.Option{
		realtime.WithDialer(dialer),
		realtime.WithLogger(logger.NewNoop()),
	}, opts...)

	m, err := realtime.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m, dialer
}

func waitConnected(t *testing.T, m *realtime.Manager) {
	t.Helper()
	require.Eventually(t, m.Connected, 2*time.Second, 5*time.Millisecond)
}

func TestNew_MissingEndpoint(t *testing.T) {
	_, err := realtime.New(realtime.Config{})
	assert.ErrorIs(t, err, realtime.ErrMissingEndpoint)
}

func TestManager_ConnectEmptySessionID(t *testing.T) {
	m, dialer := newTestManager(t, testConfig())

	err := m.Connect("")

	assert.ErrorIs(t, err, realtime.ErrEmptySessionID)
	assert.Equal(t, realtime.StateDisconnected, m.State())
	assert.Equal(t, 0, dialer.dialCount())
}

func TestManager_ConnectDialsSessionURL(t *testing.T) {
	m, dialer := newTestManager(t, testConfig(),
		realtime.WithSessionProvider(session.Static("tok-123")),
	)

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	assert.Equal(t, "wss://api.evalforge.test/ws/sess-1", dialer.lastURL())
	assert.Equal(t, "Bearer tok-123", dialer.lastHeader().Get("Authorization"))
}

func TestManager_NoAuthHeaderWithoutProvider(t *testing.T) {
	m, dialer := newTestManager(t, testConfig())

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	assert.Empty(t, dialer.lastHeader().Get("Authorization"))
}

func TestManager_StateSequenceOnConnect(t *testing.T) {
	rec := &stateRecorder{}
	m, _ := newTestManager(t, testConfig(), realtime.WithStateHook(rec.hook))

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	assert.Equal(t, []realtime.State{realtime.StateConnecting, realtime.StateConnected}, rec.all())
}

func TestManager_ConnectWhileActiveIgnored(t *testing.T) {
	m, dialer := newTestManager(t, testConfig())

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	require.NoError(t, m.Connect("sess-2"))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, dialer.dialCount(), "second connect must not dial")
}

func TestManager_InboundEnvelopesArriveInOrder(t *testing.T) {
	rec := &envelopeRecorder{}
	m, dialer := newTestManager(t, testConfig(), realtime.WithEnvelopeHook(rec.hook))

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	conn := dialer.conn(0)
	conn.deliver(`{"type":"connection_established"}`)
	conn.deliver(`{"type":"assignment_update","title":"Assigned"}`)
	conn.deliver(`{"type":"deadline_reminder","title":"Due soon"}`)

	require.Eventually(t, func() bool {
		return len(rec.types()) == 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"connection_established", "assignment_update", "deadline_reminder"}, rec.types())
}

func TestManager_MalformedFrameDroppedLoopContinues(t *testing.T) {
	rec := &envelopeRecorder{}
	m, dialer := newTestManager(t, testConfig(), realtime.WithEnvelopeHook(rec.hook))

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	conn := dialer.conn(0)
	conn.deliver(`{"type":`)
	conn.deliver(`{"type":"project_update"}`)

	require.Eventually(t, func() bool {
		return len(rec.types()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"project_update"}, rec.types())
	assert.True(t, m.Connected(), "a malformed frame must not drop the connection")
}

func TestManager_ServerNormalCloseDoesNotReconnect(t *testing.T) {
	m, dialer := newTestManager(t, testConfig())

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	dialer.conn(0).failRead(&websocket.CloseError{
		Code: websocket.CloseNormalClosure,
		Text: "session ended",
	})

	require.Eventually(t, func() bool {
		return m.State() == realtime.StateDisconnected
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount(), "close 1000 must never schedule a reconnect")
}

func TestManager_AbnormalCloseReconnectsOnce(t *testing.T) {
	rec := &stateRecorder{}
	m, dialer := newTestManager(t, testConfig(), realtime.WithStateHook(rec.hook))

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	dialer.conn(0).failRead(io.ErrUnexpectedEOF)

	require.Eventually(t, func() bool {
		return m.Connected() && dialer.dialCount() == 2
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 2, dialer.dialCount(), "exactly one reconnect dial")
	assert.Contains(t, rec.all(), realtime.StateReconnecting)
}

func TestManager_DisconnectCancelsPendingReconnect(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectDelay = 60 * time.Millisecond
	m, dialer := newTestManager(t, cfg)

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	dialer.conn(0).failRead(io.ErrUnexpectedEOF)
	require.Eventually(t, func() bool {
		return m.State() == realtime.StateReconnecting
	}, 2*time.Second, 5*time.Millisecond)

	m.Disconnect()
	require.Eventually(t, func() bool {
		return m.State() == realtime.StateDisconnected
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount(), "cancelled timer must never dial")
	assert.Equal(t, realtime.StateDisconnected, m.State())
}

func TestManager_DialFailureRetriesUntilConnected(t *testing.T) {
	rec := &stateRecorder{}
	m, dialer := newTestManager(t, testConfig(), realtime.WithStateHook(rec.hook))
	dialer.failures = 2

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	assert.Equal(t, 3, dialer.dialCount())
	assert.Contains(t, rec.all(), realtime.StateReconnecting)
}

func TestManager_DisabledAutoReconnectLandsErrored(t *testing.T) {
	cfg := testConfig()
	cfg.DisableAutoReconnect = true
	m, dialer := newTestManager(t, cfg)
	dialer.failures = 1

	require.NoError(t, m.Connect("sess-1"))

	require.Eventually(t, func() bool {
		return m.State() == realtime.StateErrored
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount())

	// Manual retry from the errored state.
	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)
	assert.Equal(t, 2, dialer.dialCount())
}

func TestManager_SendWhileDisconnectedDrops(t *testing.T) {
	var buf bytes.Buffer
	dialer := &fakeDialer{}
	m, err := realtime.New(testConfig(),
		realtime.WithDialer(dialer),
		realtime.WithLogger(logger.New(logger.WithOutput(&buf))),
	)
	require.NoError(t, err)
	defer m.Close()

	m.Send(wire.Ping())

	assert.Contains(t, buf.String(), "dropping outbound frame")
	assert.Equal(t, 0, dialer.dialCount())
}

func TestManager_SendWritesFrame(t *testing.T) {
	m, dialer := newTestManager(t, testConfig())

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	m.Send(wire.JoinRoom("project:42"))

	require.Eventually(t, func() bool {
		return dialer.conn(0).sentContains("join_room")
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, dialer.conn(0).sentContains("project:42"))
}

func TestManager_StateHookMaySend(t *testing.T) {
	var m *realtime.Manager
	dialer := &fakeDialer{}

	m, err := realtime.New(testConfig(),
		realtime.WithDialer(dialer),
		realtime.WithLogger(logger.NewNoop()),
		realtime.WithStateHook(func(s realtime.State) {
			if s == realtime.StateConnected {
				m.Send(wire.JoinRoom("project:7"))
			}
		}),
	)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	require.Eventually(t, func() bool {
		return dialer.conn(0).sentContains("project:7")
	}, 2*time.Second, 5*time.Millisecond, "send from a state hook must not deadlock")
}

func TestManager_HeartbeatPings(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 15 * time.Millisecond
	m, dialer := newTestManager(t, cfg)

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	require.Eventually(t, func() bool {
		return dialer.conn(0).sentContains(`"ping"`)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestManager_PongTimeoutRecyclesConnection(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 10 * time.Millisecond
	cfg.PongTimeout = 30 * time.Millisecond
	cfg.ReconnectDelay = 10 * time.Millisecond
	m, dialer := newTestManager(t, cfg)

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	require.Eventually(t, func() bool {
		return dialer.dialCount() >= 2
	}, 2*time.Second, 5*time.Millisecond, "silence must recycle the connection")
}

func TestManager_OverlappingFailuresArmOneTimer(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 10 * time.Millisecond
	cfg.PongTimeout = 30 * time.Millisecond
	cfg.ReconnectDelay = 50 * time.Millisecond
	m, dialer := newTestManager(t, cfg)

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	// Silence trips the pong timeout: the connection is recycled and a
	// reconnect timer armed. Closing the connection also ends its
	// reader, whose close event lands on the loop while the timer is
	// already pending — the overlapping second failure.
	require.Eventually(t, func() bool {
		return m.State() == realtime.StateReconnecting
	}, 2*time.Second, 5*time.Millisecond)

	// Keep the replacement connection alive with pongs, so any further
	// dial could only come from a second armed timer.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(5 * time.Millisecond):
				if dialer.dialCount() >= 2 {
					dialer.conn(1).deliver(`{"type":"pong"}`)
				}
			}
		}
	}()

	require.Eventually(t, func() bool {
		return m.Connected() && dialer.dialCount() == 2
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 2, dialer.dialCount(), "overlapping failures must produce a single reconnect dial")
	assert.True(t, m.Connected())
}

func TestManager_PongKeepsConnectionAlive(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 10 * time.Millisecond
	cfg.PongTimeout = 60 * time.Millisecond
	m, dialer := newTestManager(t, cfg)

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	stop := time.After(200 * time.Millisecond)
	for {
		select {
		case <-stop:
			assert.Equal(t, 1, dialer.dialCount(), "pongs must keep the connection alive")
			assert.True(t, m.Connected())
			return
		case <-time.After(20 * time.Millisecond):
			dialer.conn(0).deliver(`{"type":"pong"}`)
		}
	}
}

func TestManager_CloseIdempotent(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Connect("sess-1"), realtime.ErrClosed)
	assert.Equal(t, realtime.StateDisconnected, m.State())
}

func TestManager_DisconnectSendsNormalClose(t *testing.T) {
	m, dialer := newTestManager(t, testConfig())

	require.NoError(t, m.Connect("sess-1"))
	waitConnected(t, m)

	m.Disconnect()
	require.Eventually(t, func() bool {
		return m.State() == realtime.StateDisconnected
	}, 2*time.Second, 5*time.Millisecond)

	conn := dialer.conn(0)
	conn.mu.Lock()
	code := conn.closeCode
	conn.mu.Unlock()
	assert.Equal(t, websocket.CloseNormalClosure, code)
}
