package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/evalforge/notifykit/pkg/logger"
)

type config struct {
	addr              string
	readTimeout       time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	log               *slog.Logger
	server            *http.Server
	startupHooks      []func(ctx context.Context) error
	shutdownHooks     []func(ctx context.Context) error
	signalCancelDelay time.Duration
}

func defaultConfig() config {
	return config{
		addr:            ":8080",
		shutdownTimeout: 5 * time.Second,
	}
}

// Server wraps http.Server with lifecycle hooks and graceful shutdown.
// A Server runs at most once; create a new one to restart.
type Server struct {
	cfg config

	mu      sync.Mutex
	srv     *http.Server
	running bool
	closed  bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a Server with the given options applied over the defaults.
// Options validate their inputs and panic on programmer error.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.NewNoop()
	}
	return &Server{cfg: cfg}
}

// Run starts the HTTP server with the given handler and blocks until the
// context is canceled, an interrupt signal arrives, or the listener fails.
// Startup hooks run before the listener opens; shutdown hooks run after the
// server has drained. Run returns nil on clean shutdown.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	s.mu.Lock()
	if s.running || s.closed {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already started"))
	}
	s.running = true

	srv := s.cfg.server
	if srv == nil {
		srv = &http.Server{}
	}
	if srv.Addr == "" {
		srv.Addr = s.cfg.addr
	}
	srv.Handler = handler
	if s.cfg.readTimeout > 0 {
		srv.ReadTimeout = s.cfg.readTimeout
	}
	if s.cfg.writeTimeout > 0 {
		srv.WriteTimeout = s.cfg.writeTimeout
	}
	if s.cfg.idleTimeout > 0 {
		srv.IdleTimeout = s.cfg.idleTimeout
	}
	s.srv = srv
	s.mu.Unlock()

	for _, hook := range s.cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return errors.Join(ErrStart, err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.log.InfoContext(ctx, "http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return errors.Join(ErrStart, err)
		}
		return s.Shutdown(context.WithoutCancel(ctx))
	case sig := <-sigCh:
		s.cfg.log.InfoContext(ctx, "shutdown signal received", slog.String("signal", sig.String()))
		return s.Shutdown(context.WithoutCancel(ctx))
	case <-ctx.Done():
		return s.Shutdown(context.WithoutCancel(ctx))
	}
}

// Shutdown drains the server and runs the shutdown hooks. It is safe to call
// concurrently and more than once; later calls return the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.closed = true
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		var errs []error
		if srv != nil {
			s.cfg.log.InfoContext(ctx, "http server draining")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		for _, hook := range s.cfg.shutdownHooks {
			if err := hook(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			s.shutdownErr = errors.Join(ErrShutdown, errors.Join(errs...))
		}
	})
	return s.shutdownErr
}
