package realtime

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one established transport connection. The Manager owns the
// read side (one reader goroutine per connection); writes may come from
// any goroutine and are serialized by the Manager.
type Conn interface {
	// ReadMessage blocks until the next data frame or a read error.
	ReadMessage() ([]byte, error)

	// WriteMessage sends one data frame.
	WriteMessage(data []byte) error

	// Close sends a close frame with the given status code and reason,
	// then tears the connection down.
	Close(code int, reason string) error
}

// Dialer opens transport connections. The Manager dials through this
// interface so tests can substitute an in-memory transport.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// WebsocketDialer dials real websocket connections.
type WebsocketDialer struct {
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
}

// NewWebsocketDialer creates a Dialer backed by gorilla/websocket.
// Non-positive timeouts fall back to 10s.
func NewWebsocketDialer(handshakeTimeout, writeTimeout time.Duration) *WebsocketDialer {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &WebsocketDialer{
		handshakeTimeout: handshakeTimeout,
		writeTimeout:     writeTimeout,
	}
}

func (d *WebsocketDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.handshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return &websocketConn{conn: conn, writeTimeout: d.writeTimeout}, nil
}

type websocketConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func (c *websocketConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *websocketConn) WriteMessage(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *websocketConn) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(c.writeTimeout)
	// Best effort: the peer may already be gone.
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	return c.conn.Close()
}

// closeCode extracts the websocket close status from a read error.
// It reports false when err carries no close frame (network failures,
// local close).
func closeCode(err error) (int, bool) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code, true
	}
	return 0, false
}
