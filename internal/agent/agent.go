package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/hostguard/internal/model"
)

// RelaySupervisor is the anonymity subsystem as the agent sees it.
// *relay.Supervisor satisfies this; tests substitute fakes.
type RelaySupervisor interface {
	// Start launches the relay, blocking until bootstrapped or failed.
	Start(ctx context.Context, timeout time.Duration) error

	// RenewIdentity rotates the relay's circuit identity.
	RenewIdentity(ctx context.Context) error

	// Alive confirms the relay process is responsive.
	Alive(ctx context.Context) bool

	// Stop terminates the relay process; idempotent.
	Stop() error
}

// ProcessScanner produces findings for one scan cycle.
type ProcessScanner interface {
	Scan(ctx context.Context) []model.Finding
}

// Classifier forwards text to the classification capability.
type Classifier interface {
	Classify(ctx context.Context, text string) model.Classification
}

// CycleRecorder journals completed scan cycles. Optional; a nil recorder
// disables journaling.
type CycleRecorder interface {
	RecordCycle(ctx context.Context, scannedAt time.Time, findings []model.Finding) error
}

// Options wires an Agent's collaborators.
type Options struct {
	// Capabilities are the availability flags from the startup probe.
	Capabilities model.CapabilitySet

	// Relay is the anonymity supervisor. May be nil when the anonymity
	// capability is absent.
	Relay RelaySupervisor

	// Scanner runs threat scans. Required.
	Scanner ProcessScanner

	// Gateway serves classification requests. Required (it degrades
	// internally when the capability is absent).
	Gateway Classifier

	// Journal records completed cycles. Optional.
	Journal CycleRecorder

	// Interval is the pause between scan cycles.
	Interval time.Duration

	// RelayStartTimeout bounds the one-time relay launch.
	RelayStartTimeout time.Duration

	// Logger receives agent events. Nil falls back to slog.Default().
	Logger *slog.Logger
}

// Agent is the supervisor core.
type Agent struct {
	mu     sync.Mutex
	status model.AgentStatus

	relay   RelaySupervisor
	scanner ProcessScanner
	gateway Classifier
	journal CycleRecorder

	interval          time.Duration
	relayStartTimeout time.Duration
	logger            *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates an Agent from the given options.
func New(opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		status: model.AgentStatus{
			Capabilities: opts.Capabilities,
		},
		relay:             opts.Relay,
		scanner:           opts.Scanner,
		gateway:           opts.Gateway,
		journal:           opts.Journal,
		interval:          opts.Interval,
		relayStartTimeout: opts.RelayStartTimeout,
		logger:            logger.With("component", "agent"),
		stopCh:            make(chan struct{}),
	}
}

// Run executes the scan loop, blocking until Stop is called or ctx is
// cancelled. On entry it starts the relay best-effort: a launch failure is
// logged and the loop proceeds in unprotected mode. On exit the relay is
// terminated and the running flag cleared.
//
// A stop request is honored within one interval: the loop waits on the
// stop signal and the ticker simultaneously, so it never sleeps past a
// stop into another cycle.
func (a *Agent) Run(ctx context.Context) {
	a.logger.Info("agent started", "interval", a.interval)
	a.setRunning(true)

	a.startRelay(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.runCycle(ctx)

		select {
		case <-a.stopCh:
			a.shutdown()
			return
		case <-ctx.Done():
			a.shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Stop requests loop termination. Safe to call from any goroutine and from
// signal handlers; never blocks; calling it more than once is harmless.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
}

// ScanNow runs one scan cycle on demand and returns its findings.
// The caller owns the returned slice.
func (a *Agent) ScanNow(ctx context.Context) []model.Finding {
	return a.scanner.Scan(ctx)
}

// Classify forwards text to the classification gateway.
func (a *Agent) Classify(ctx context.Context, text string) model.Classification {
	return a.gateway.Classify(ctx, text)
}

// RenewIdentity asks the relay for a fresh circuit identity.
// The result does not affect agent status either way.
func (a *Agent) RenewIdentity(ctx context.Context) error {
	if a.relay == nil {
		return ErrAnonymityUnavailable
	}
	return a.relay.RenewIdentity(ctx)
}

// Status returns a snapshot of the agent state.
func (a *Agent) Status() model.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// startRelay launches the anonymity subsystem best-effort.
func (a *Agent) startRelay(ctx context.Context) {
	if a.relay == nil || !a.status.Capabilities.Anonymity {
		a.logger.Warn("anonymity not available - running in unprotected mode")
		return
	}

	if err := a.relay.Start(ctx, a.relayStartTimeout); err != nil {
		a.logger.Error("relay start failed - continuing in unprotected mode", "error", err)
		return
	}
	a.setAnonymityActive(true)
}

// runCycle performs one scan cycle: scan, log findings, journal, and
// refresh the anonymity flag against the live relay.
func (a *Agent) runCycle(ctx context.Context) {
	scannedAt := time.Now()
	findings := a.scanner.Scan(ctx)

	if len(findings) > 0 {
		for _, f := range findings {
			a.logger.Warn("security alert", "finding", f.Description, "cpu_percent", f.CPUPercent)
		}
	} else {
		a.logger.Debug("scan cycle clean")
	}

	if a.journal != nil {
		if err := a.journal.RecordCycle(ctx, scannedAt, findings); err != nil {
			a.logger.Error("failed to journal scan cycle", "error", err)
		}
	}

	if a.relay != nil && a.status.Capabilities.Anonymity {
		a.setAnonymityActive(a.relay.Alive(ctx))
	}
}

// shutdown clears the running state and terminates the relay.
// Each step is independently best-effort; a relay stop failure is logged
// and must not block the caller's remaining teardown (guard release).
func (a *Agent) shutdown() {
	a.setRunning(false)

	if a.relay != nil {
		if err := a.relay.Stop(); err != nil {
			a.logger.Error("relay stop failed during shutdown", "error", err)
		}
	}
	a.setAnonymityActive(false)

	a.logger.Info("agent stopped gracefully")
}

func (a *Agent) setRunning(running bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Running = running
}

func (a *Agent) setAnonymityActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.AnonymityActive = active
}
