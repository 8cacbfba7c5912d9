package server

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/csbwire/csbwire/internal/config"
	"github.com/csbwire/csbwire/internal/protocol"
)

// Handler dispatches one decoded request frame and names the reply.
// A returned error marks a handler failure; the session answers it with
// an error frame and keeps serving.
type Handler interface {
	Handle(ctx context.Context, t protocol.MessageType, payload []byte) (protocol.MessageType, []byte, error)
}

// Session endpoint configuration.
type ServiceConfig struct {
	ListenAddr string
	AdminAddr  string
	Robust     config.Robustness
	Backoff    BackoffConfig
}

// Session endpoint defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ListenAddr: ":9090",
		AdminAddr:  "",
		Robust:     config.ServerDefaults(),
		Backoff:    DefaultBackoff(),
	}
}

// Service is the runtime owner of the session listener and its connections.
type Service struct {
	cfg     ServiceConfig
	handler Handler
	logger  zerolog.Logger

	startedAt time.Time

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	sessionCount atomic.Int64
}

// NewService builds a Service with default configuration.
func NewService(h Handler) *Service {
	return NewServiceWithConfig(DefaultServiceConfig(), h)
}

// NewServiceWithConfig builds a Service with explicit configuration.
func NewServiceWithConfig(cfg ServiceConfig, h Handler) *Service {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = DefaultServiceConfig().ListenAddr
	}
	cfg.Robust = cfg.Robust.WithDefaults()
	if cfg.Backoff.InitialDelay <= 0 {
		cfg.Backoff = DefaultBackoff()
	}
	return &Service{
		cfg:       cfg,
		handler:   h,
		logger:    log.With().Str("component", "session").Logger(),
		startedAt: time.Now(),
		conns:     make(map[net.Conn]struct{}),
	}
}

// Run is the runtime entrypoint that blocks until signal shutdown.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := s.listen()
	if err != nil {
		return err
	}
	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("profile", string(s.cfg.Robust.Profile())).
		Msg("session listener ready")

	adminErr := make(chan error, 1)
	if addr := strings.TrimSpace(s.cfg.AdminAddr); addr != "" {
		go func() {
			adminErr <- s.serveAdmin(ctx, addr)
		}()
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ctx, ln)
	}()
	select {
	case err := <-serveErr:
		return err
	case err := <-adminErr:
		if err != nil {
			return err
		}
		return <-serveErr
	}
}

func (s *Service) listen() (net.Listener, error) {
	return net.Listen("tcp", s.cfg.ListenAddr)
}

// Serve runs the accept loop on an existing listener until ctx is done.
// Transient accept failures are retried with backoff; fatal ones are
// surfaced to the caller.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	go func() {
		<-ctx.Done()
		s.closeAllConns()
		_ = ln.Close()
	}()

	attempt := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				attempt++
				delay := NextBackoffDelay(s.cfg.Backoff, attempt, nil)
				s.logger.Warn().Err(err).Dur("retry_in", delay).Msg("accept failed, retrying")
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil
				}
				continue
			}
			return err
		}
		attempt = 0
		s.trackConn(conn)
		go s.handleConn(ctx, conn)
	}
}

// ActiveSessions reports the number of sessions currently being served.
func (s *Service) ActiveSessions() int64 {
	return s.sessionCount.Load()
}

// Connection-tracking add operation for coordinated shutdown.
func (s *Service) trackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

// Connection-tracking remove operation after session teardown.
func (s *Service) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

// Shutdown helper that closes and drains tracked active connections.
func (s *Service) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}
