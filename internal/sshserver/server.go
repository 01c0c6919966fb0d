// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
)

const (
	// StateCreated indicates the server has been created but not started.
	StateCreated ServerState = iota
	// StateStarting indicates the server is in the process of starting.
	StateStarting
	// StateRunning indicates the server is running and accepting connections.
	StateRunning
	// StateStopping indicates the server is shutting down.
	StateStopping
	// StateStopped indicates the server has stopped (terminal state).
	StateStopped
	// StateFailed indicates the server failed to start (terminal state).
	StateFailed
)

// BusyMessage is written to a client that connects while another is active.
const BusyMessage = "termemu: another session is already active, try again later\n"

var (
	// ErrNoHandler is returned by Start when Config.Handler is nil.
	ErrNoHandler = errors.New("no session handler configured")

	// ErrInvalidState is returned when Start is called more than once.
	ErrInvalidState = errors.New("invalid server state")
)

type (
	// ServerState represents the lifecycle state of the server.
	ServerState int32

	// Config holds immutable configuration for the SSH server.
	Config struct {
		// Host is the address to bind to (default: localhost)
		Host string
		// Port is the port to listen on (0 = auto-select)
		Port int
		// HostKeyPath is the ed25519 host key, generated when missing.
		// Empty keeps an in-memory key for the lifetime of the server.
		HostKeyPath string
		// Handler builds the program model for an accepted session.
		Handler bubbletea.Handler
		// ShutdownTimeout is the timeout for graceful shutdown (default: 10s)
		ShutdownTimeout time.Duration
		// StartupTimeout is the max time to wait for server to be ready (default: 5s)
		StartupTimeout time.Duration
		// Logger defaults to a stderr logger prefixed "ssh-server".
		Logger *log.Logger
	}

	// Server serves the shell over SSH.
	// A Server instance is single-use: once stopped or failed, create a new instance.
	Server struct {
		cfg Config

		state atomic.Int32
		// busy is held by the connected client.
		busy atomic.Bool

		stateMu  sync.Mutex
		srv      *ssh.Server
		listener net.Listener
		addr     string

		wg        sync.WaitGroup
		startedCh chan struct{}
		doneCh    chan struct{}
		errCh     chan error
		lastErr   error

		logger *log.Logger
	}
)

// String returns a human-readable representation of the server state.
func (s ServerState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            0,
		ShutdownTimeout: 10 * time.Second,
		StartupTimeout:  5 * time.Second,
	}
}

// New creates a new SSH server instance.
// The server is not started; call Start() to begin accepting connections.
func New(cfg Config) *Server {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = 5 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "ssh-server"})
	}

	s := &Server{
		cfg:       cfg,
		startedCh: make(chan struct{}),
		doneCh:    make(chan struct{}),
		errCh:     make(chan error, 1),
		logger:    logger,
	}
	s.state.Store(int32(StateCreated))
	return s
}

// Start starts the SSH server and blocks until either:
//   - The server is ready to accept connections (returns nil)
//   - The server fails to start (returns error)
//   - The context is cancelled or the startup timeout is exceeded (returns error)
//
// After Start() returns nil, use Err() to monitor for runtime errors.
func (s *Server) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		s.transitionToFailed(fmt.Errorf("context cancelled before start: %w", ctx.Err()))
		return s.lastErr
	default:
	}

	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateStarting)) {
		return fmt.Errorf("%w: cannot start server in state %s", ErrInvalidState, s.State())
	}
	if s.cfg.Handler == nil {
		s.transitionToFailed(ErrNoHandler)
		return s.lastErr
	}

	startupCtx, startupCancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer startupCancel()

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	var lc net.ListenConfig
	listener, err := lc.Listen(startupCtx, "tcp", addr)
	if err != nil {
		s.transitionToFailed(fmt.Errorf("failed to listen on %s: %w", addr, err))
		return s.lastErr
	}

	opts := []ssh.Option{
		wish.WithAddress(listener.Addr().String()),
		wish.WithPublicKeyAuth(s.publicKeyHandler),
		wish.WithPasswordAuth(s.passwordHandler),
		// The last middleware runs first.
		wish.WithMiddleware(
			bubbletea.Middleware(s.cfg.Handler),
			s.singleSession(),
			activeterm.Middleware(),
		),
	}
	if s.cfg.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(s.cfg.HostKeyPath))
	}
	srv, err := wish.NewServer(opts...)
	if err != nil {
		_ = listener.Close()
		s.transitionToFailed(fmt.Errorf("failed to create SSH server: %w", err))
		return s.lastErr
	}

	s.stateMu.Lock()
	s.srv = srv
	s.listener = listener
	s.addr = listener.Addr().String()
	s.stateMu.Unlock()

	s.wg.Add(1)
	go s.serve()

	select {
	case <-s.startedCh:
		s.logger.Info("SSH server started", "address", s.addr)
		return nil
	case <-startupCtx.Done():
		_ = listener.Close()
		s.transitionToFailed(fmt.Errorf("startup timeout: %w", startupCtx.Err()))
		return s.lastErr
	}
}

// Stop gracefully stops the SSH server.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *Server) Stop() error {
	for {
		current := s.State()
		switch current {
		case StateStopped, StateFailed:
			return nil
		case StateCreated:
			if s.state.CompareAndSwap(int32(StateCreated), int32(StateStopped)) {
				close(s.doneCh)
				return nil
			}
		case StateStopping:
			<-s.doneCh
			return nil
		case StateStarting, StateRunning:
			if s.state.CompareAndSwap(int32(current), int32(StateStopping)) {
				return s.doStop()
			}
		default:
			return fmt.Errorf("%w: %d", ErrInvalidState, current)
		}
	}
}

// Err returns a channel that receives fatal server errors.
// The channel is closed when the server stops.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// State returns the current server state.
func (s *Server) State() ServerState {
	return ServerState(s.state.Load())
}

// IsRunning returns whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	return s.State() == StateRunning
}

// Address returns the bound address (host:port), or "" before Start succeeds.
func (s *Server) Address() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.addr
}

// Port returns the listening port, or 0 before Start succeeds.
func (s *Server) Port() int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.listener == nil {
		return 0
	}
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Host returns the server's configured host address.
func (s *Server) Host() string {
	return s.cfg.Host
}

// Busy reports whether a client is connected.
func (s *Server) Busy() bool {
	return s.busy.Load()
}

// Wait blocks until the server stops or fails.
// Returns the error if the server failed, nil otherwise.
func (s *Server) Wait() error {
	<-s.doneCh
	if s.State() == StateFailed {
		return s.lastErr
	}
	return nil
}

func (s *Server) serve() {
	defer s.wg.Done()

	if s.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		close(s.startedCh)
	}

	s.stateMu.Lock()
	srv, listener := s.srv, s.listener
	s.stateMu.Unlock()

	err := srv.Serve(listener)
	if err == nil || errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		return
	}
	select {
	case s.errCh <- fmt.Errorf("serve error: %w", err):
	default:
		s.logger.Error("SSH server error (channel full)", "error", err)
	}
}

func (s *Server) doStop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	s.stateMu.Lock()
	if s.srv != nil {
		shutdownErr = s.srv.Shutdown(shutdownCtx)
		if shutdownErr != nil && !isClosedConnError(shutdownErr) {
			s.logger.Error("shutdown error", "error", shutdownErr)
		} else {
			shutdownErr = nil
		}
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.stateMu.Unlock()

	s.wg.Wait()

	s.state.Store(int32(StateStopped))
	close(s.errCh)
	close(s.doneCh)
	s.logger.Info("SSH server stopped")
	return shutdownErr
}

func (s *Server) transitionToFailed(err error) {
	s.lastErr = err
	s.state.Store(int32(StateFailed))
	select {
	case s.errCh <- err:
	default:
	}
	select {
	case <-s.doneCh:
	default:
		close(s.doneCh)
	}
}

// The session is a local toy shell with no access to the host, so every
// client is accepted; connections are logged.
func (s *Server) passwordHandler(ctx ssh.Context, _ string) bool {
	s.logger.Debug("password authentication", "user", ctx.User(), "remote", ctx.RemoteAddr())
	return true
}

func (s *Server) publicKeyHandler(ctx ssh.Context, _ ssh.PublicKey) bool {
	s.logger.Debug("public key authentication", "user", ctx.User(), "remote", ctx.RemoteAddr())
	return true
}

// singleSession refuses a client while another one is connected.
func (s *Server) singleSession() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			if !s.busy.CompareAndSwap(false, true) {
				s.logger.Warn("refusing session, another client is connected", "user", sess.User(), "remote", sess.RemoteAddr())
				_, _ = fmt.Fprint(sess.Stderr(), BusyMessage)
				_ = sess.Exit(1)
				return
			}
			defer s.busy.Store(false)

			s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr())
			next(sess)
			s.logger.Info("session ended", "user", sess.User(), "remote", sess.RemoteAddr())
		}
	}
}

// isClosedConnError checks if the error is a "use of closed network connection" error.
func isClosedConnError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Err.Error() == "use of closed network connection"
	}
	return false
}
