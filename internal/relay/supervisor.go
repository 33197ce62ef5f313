package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State is the supervisor's lifecycle state.
type State int

const (
	// StateStopped means no relay session is held.
	StateStopped State = iota

	// StateStarting means a launch is in flight.
	StateStarting

	// StateRunning means a relay session is held and was alive when
	// last confirmed.
	StateRunning
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Session is the opaque handle to a running relay process.
// It is owned exclusively by the Supervisor: created on successful launch,
// destroyed on Stop or detected process death.
type Session struct {
	// process is the supervised relay process.
	process Process

	// SocksAddr is the bound SOCKS address.
	SocksAddr string

	// ControlAddr is the bound control address.
	ControlAddr string

	// DataDir is the relay data directory configured at launch.
	DataDir string

	// StartedAt records when the session was established.
	StartedAt time.Time
}

// Supervisor owns the relay lifecycle.
// All state transitions happen under one mutex; the public methods are safe
// to call from the scan loop and command handlers concurrently.
type Supervisor struct {
	mu       sync.Mutex
	state    State
	session  *Session
	launcher Launcher
	cfg      LaunchConfig
	logger   *slog.Logger
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLauncher replaces the production tornago launcher.
// Used by tests to supervise fake processes.
func WithLauncher(l Launcher) Option {
	return func(s *Supervisor) {
		s.launcher = l
	}
}

// NewSupervisor creates a stopped supervisor for the given launch
// configuration. A nil logger falls back to slog.Default().
func NewSupervisor(cfg LaunchConfig, logger *slog.Logger, opts ...Option) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Supervisor{
		state:    StateStopped,
		launcher: NewTornagoLauncher(),
		cfg:      cfg,
		logger:   logger.With("component", "relay"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns a copy of the current session, or nil when stopped.
func (s *Supervisor) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// Start launches the relay and blocks until it is bootstrapped, the
// startup timeout expires, or ctx is cancelled.
//
// On any failure the state is Stopped and a wrapped ErrStartFailed is
// returned; the caller logs it and continues in unprotected mode. Calling
// Start while already running is a no-op.
//
// Design decision: tornago's launch has no context hook, so the launch runs
// in a goroutine, and if ctx wins the race the late process is stopped as
// soon as it materializes.
func (s *Supervisor) Start(ctx context.Context, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		return nil
	}
	s.state = StateStarting

	cfg := s.cfg
	if timeout > 0 {
		cfg.StartupTimeout = timeout
	}
	s.logger.Info("starting relay",
		"socks_addr", cfg.SocksAddr,
		"control_addr", cfg.ControlAddr,
		"startup_timeout", cfg.StartupTimeout,
	)

	type launchResult struct {
		process Process
		err     error
	}
	resultCh := make(chan launchResult, 1)
	go func() {
		p, err := s.launcher.Launch(cfg)
		resultCh <- launchResult{p, err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			s.state = StateStopped
			s.logger.Error("relay start failed", "error", result.err)
			return fmt.Errorf("%w: %w", ErrStartFailed, result.err)
		}
		s.session = &Session{
			process:     result.process,
			SocksAddr:   result.process.SocksAddr(),
			ControlAddr: result.process.ControlAddr(),
			DataDir:     cfg.DataDir,
			StartedAt:   time.Now(),
		}
		s.state = StateRunning
		s.logger.Info("relay started", "socks_addr", s.session.SocksAddr)
		return nil

	case <-ctx.Done():
		s.state = StateStopped
		// Reap the process if the launch eventually succeeds.
		go func() {
			if result := <-resultCh; result.err == nil {
				_ = result.process.Stop()
			}
		}()
		s.logger.Warn("relay start cancelled", "error", ctx.Err())
		return fmt.Errorf("%w: %w", ErrStartFailed, ctx.Err())
	}
}

// RenewIdentity connects to the control port, authenticates, and issues the
// NEWNYM signal so the relay rotates its circuit identity.
//
// Returns ErrNotRunning when no session is held, and a wrapped
// ErrRenewFailed for control-port failures. Neither outcome affects the
// supervisor state or the wider agent.
func (s *Supervisor) RenewIdentity(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRunning || s.session == nil {
		s.mu.Unlock()
		return ErrNotRunning
	}
	controlAddr := s.session.ControlAddr
	dataDir := s.session.DataDir
	s.mu.Unlock()

	if err := renewIdentity(ctx, controlAddr, dataDir); err != nil {
		s.logger.Error("identity renewal failed", "error", err)
		return fmt.Errorf("%w: %w", ErrRenewFailed, err)
	}
	s.logger.Info("relay identity renewed")
	return nil
}

// Alive probes the session's SOCKS port with a protocol handshake and
// reports whether the relay process is confirmed responsive. A dead or
// unresponsive process clears the session so the agent's anonymity flag
// drops with it.
func (s *Supervisor) Alive(ctx context.Context) bool {
	s.mu.Lock()
	if s.state != StateRunning || s.session == nil {
		s.mu.Unlock()
		return false
	}
	socksAddr := s.session.SocksAddr
	s.mu.Unlock()

	if checkSocks(ctx, socksAddr) {
		return true
	}

	s.logger.Warn("relay liveness probe failed, dropping session", "socks_addr", socksAddr)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		_ = s.session.process.Stop()
		s.session = nil
	}
	s.state = StateStopped
	return false
}

// Stop terminates the relay process if one is running.
// Idempotent: stopping a stopped supervisor is a no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		s.state = StateStopped
		return nil
	}

	err := s.session.process.Stop()
	s.session = nil
	s.state = StateStopped
	if err != nil {
		s.logger.Error("relay stop failed", "error", err)
		return err
	}
	s.logger.Info("relay stopped")
	return nil
}
