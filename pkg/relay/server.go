package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/evalforge/notifykit/pkg/httpserver"
	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/wire"
)

// Server is the development relay for the realtime notification
// contract: it upgrades /ws/{sessionID} requests, answers pings, tracks
// room membership announced by join_room/leave_room frames, and fans
// out events published through /emit, the Redis bridge, or a scenario
// player.
//
// It exists so clients can be developed and soak-tested against a real
// endpoint; it is not the production backend.
type Server struct {
	cfg      Config
	log      *slog.Logger
	hub      *hub
	upgrader websocket.Upgrader
	checks   []func(ctx context.Context) error
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithReadyCheck adds a dependency probe to the health endpoint.
func WithReadyCheck(check func(ctx context.Context) error) ServerOption {
	return func(s *Server) {
		if check != nil {
			s.checks = append(s.checks, check)
		}
	}
}

// NewServer creates a relay server. Call Handler to mount it.
func NewServer(cfg Config, opts ...ServerOption) *Server {
	s := &Server{
		cfg: cfg.withDefaults(),
		log: logger.NewNoop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Development relay: browsers on any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.log)
	return s
}

// Publisher exposes the fan-out surface for the bridge and the
// scenario player.
func (s *Server) Publisher() Publisher {
	return s.hub
}

// Handler builds the HTTP surface: the websocket endpoint, the health
// probe, and the local publish endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", httpserver.HealthHandler(s.log, s.checks...))
	r.Get("/ws/{sessionID}", s.handleWS)
	r.Post("/emit", s.handleEmit)
	return r
}

// handleEmit publishes one event to the currently connected audience.
func (s *Server) handleEmit(w http.ResponseWriter, r *http.Request) {
	var event Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	if err := event.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	delivered := s.hub.Publish(event)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]int{"delivered": delivered})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.log.LogAttrs(r.Context(), slog.LevelWarn, "websocket upgrade failed",
			logger.SessionID(sessionID),
			logger.Error(err),
		)
		return
	}

	c := &client{
		session: sessionID,
		send:    make(chan []byte, s.cfg.SendBuffer),
	}
	s.hub.register(c)

	clients, rooms := s.hub.stats()
	s.log.LogAttrs(r.Context(), slog.LevelInfo, "client connected",
		logger.SessionID(sessionID),
		slog.Int("clients", clients),
		slog.Int("rooms", rooms),
	)

	go s.writeLoop(conn, c)

	// Greet the session before any broadcast can reach it, matching the
	// contract's connection_established notification.
	s.hub.Publish(Event{
		Type:    wire.TypeConnectionEstablished,
		Title:   "Connected",
		Message: "Realtime notifications are live.",
		Session: sessionID,
	})

	s.readLoop(conn, c)
}

// readLoop consumes inbound control frames until the connection drops,
// then unregisters the client, which also stops the write loop.
func (s *Server) readLoop(conn *websocket.Conn, c *client) {
	defer s.hub.unregister(c)

	conn.SetReadLimit(s.cfg.ReadLimit)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.LogAttrs(context.Background(), slog.LevelInfo, "client connection lost",
					logger.SessionID(c.session),
					logger.Error(err),
				)
			}
			return
		}

		env, err := wire.Decode(data)
		if err != nil {
			s.log.LogAttrs(context.Background(), slog.LevelWarn, "dropping malformed frame",
				logger.SessionID(c.session),
				logger.Error(err),
			)
			continue
		}

		switch env.Type {
		case wire.TypePing:
			s.hub.Publish(Event{Type: wire.TypePong, Session: c.session})
		case wire.TypeJoinRoom:
			if env.RoomID != "" {
				s.hub.join(c, env.RoomID)
				s.log.LogAttrs(context.Background(), slog.LevelDebug, "client joined room",
					logger.SessionID(c.session),
					logger.Room(env.RoomID),
				)
			}
		case wire.TypeLeaveRoom:
			if env.RoomID != "" {
				s.hub.leave(c, env.RoomID)
			}
		default:
			s.log.LogAttrs(context.Background(), slog.LevelWarn, "dropping unrecognized frame",
				logger.SessionID(c.session),
				logger.FrameType(env.Type),
			)
		}
	}
}

// writeLoop is the sole writer on the connection. It drains the
// client's send queue and closes the socket once the queue closes.
func (s *Server) writeLoop(conn *websocket.Conn, c *client) {
	defer conn.Close()

	for data := range c.send {
		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				s.log.LogAttrs(context.Background(), slog.LevelDebug, "write to client failed",
					logger.SessionID(c.session),
					logger.Error(err),
				)
			}
			return
		}
	}

	// Queue closed by unregister: say goodbye properly.
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.WriteTimeout))
}
