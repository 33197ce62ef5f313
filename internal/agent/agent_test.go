package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/hostguard/internal/model"
)

// fakeRelay is a scriptable RelaySupervisor.
type fakeRelay struct {
	mu         sync.Mutex
	startErr   error
	renewErr   error
	alive      bool
	startCalls int
	stopCalls  int
}

func (f *fakeRelay) Start(_ context.Context, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return f.startErr
	}
	f.alive = true
	return nil
}

func (f *fakeRelay) RenewIdentity(_ context.Context) error { return f.renewErr }

func (f *fakeRelay) Alive(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *fakeRelay) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	f.alive = false
	return nil
}

func (f *fakeRelay) StopCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

// fakeScanner returns canned findings and counts invocations.
type fakeScanner struct {
	findings []model.Finding
	calls    atomic.Int64
}

func (f *fakeScanner) Scan(_ context.Context) []model.Finding {
	f.calls.Add(1)
	return f.findings
}

// fakeGateway returns a canned classification.
type fakeGateway struct {
	result model.Classification
}

func (f *fakeGateway) Classify(_ context.Context, _ string) model.Classification {
	return f.result
}

// fakeJournal records cycles in memory.
type fakeJournal struct {
	mu     sync.Mutex
	cycles [][]model.Finding
	err    error
}

func (f *fakeJournal) RecordCycle(_ context.Context, _ time.Time, findings []model.Finding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cycles = append(f.cycles, findings)
	return f.err
}

func (f *fakeJournal) Cycles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cycles)
}

// newTestAgent builds an agent with fast cycles and the given fakes.
func newTestAgent(caps model.CapabilitySet, rel RelaySupervisor, sc ProcessScanner) *Agent {
	return New(Options{
		Capabilities:      caps,
		Relay:             rel,
		Scanner:           sc,
		Gateway:           &fakeGateway{result: model.ClassificationUnavailable("capability not present")},
		Interval:          100 * time.Millisecond,
		RelayStartTimeout: time.Second,
	})
}

// TestRunStopsWithinOneInterval tests the core scheduling property: a stop
// request during the sleep is honored before the next cycle begins.
func TestRunStopsWithinOneInterval(t *testing.T) {
	t.Parallel()

	sc := &fakeScanner{}
	a := newTestAgent(model.CapabilitySet{}, nil, sc)

	done := make(chan struct{})
	go func() {
		a.Run(context.Background())
		close(done)
	}()

	// Let the first cycle land, then stop mid-sleep.
	time.Sleep(30 * time.Millisecond)
	start := time.Now()
	a.Stop()

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
			t.Errorf("run returned after %v, want within 150ms", elapsed)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not return after stop")
	}

	if a.Status().Running {
		t.Error("expected running flag cleared after stop")
	}
}

// TestRunContextCancel tests that cancelling the context also ends the loop.
func TestRunContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	a := newTestAgent(model.CapabilitySet{}, nil, &fakeScanner{})

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after context cancel")
	}
}

// TestRunStartsAndStopsRelay tests relay lifecycle coupling.
func TestRunStartsAndStopsRelay(t *testing.T) {
	t.Parallel()

	t.Run("healthy relay flips anonymity active", func(t *testing.T) {
		t.Parallel()
		rel := &fakeRelay{}
		a := newTestAgent(model.CapabilitySet{Anonymity: true}, rel, &fakeScanner{})

		done := make(chan struct{})
		go func() {
			a.Run(context.Background())
			close(done)
		}()
		time.Sleep(50 * time.Millisecond)

		if !a.Status().AnonymityActive {
			t.Error("expected anonymity active while relay alive")
		}

		a.Stop()
		<-done

		if a.Status().AnonymityActive {
			t.Error("expected anonymity inactive after shutdown")
		}
		if rel.StopCalls() == 0 {
			t.Error("expected relay stop during shutdown")
		}
	})

	t.Run("relay start failure leaves agent running unprotected", func(t *testing.T) {
		t.Parallel()
		rel := &fakeRelay{startErr: errors.New("bootstrap timeout")}
		sc := &fakeScanner{}
		a := newTestAgent(model.CapabilitySet{Anonymity: true}, rel, sc)

		done := make(chan struct{})
		go func() {
			a.Run(context.Background())
			close(done)
		}()
		time.Sleep(50 * time.Millisecond)

		status := a.Status()
		if status.AnonymityActive {
			t.Error("expected anonymity inactive after failed start")
		}
		if !status.Running {
			t.Error("expected agent still running after failed relay start")
		}
		if sc.calls.Load() == 0 {
			t.Error("expected scan cycles despite failed relay start")
		}

		a.Stop()
		<-done
	})

	t.Run("absent capability never touches relay", func(t *testing.T) {
		t.Parallel()
		rel := &fakeRelay{}
		a := newTestAgent(model.CapabilitySet{}, rel, &fakeScanner{})

		done := make(chan struct{})
		go func() {
			a.Run(context.Background())
			close(done)
		}()
		time.Sleep(30 * time.Millisecond)
		a.Stop()
		<-done

		rel.mu.Lock()
		starts := rel.startCalls
		rel.mu.Unlock()
		if starts != 0 {
			t.Errorf("expected no relay start without capability, got %d", starts)
		}
	})
}

// TestRunJournalsCycles tests best-effort journaling.
func TestRunJournalsCycles(t *testing.T) {
	t.Parallel()

	t.Run("cycles are recorded", func(t *testing.T) {
		t.Parallel()
		journal := &fakeJournal{}
		a := New(Options{
			Scanner:  &fakeScanner{},
			Gateway:  &fakeGateway{},
			Journal:  journal,
			Interval: 20 * time.Millisecond,
		})

		done := make(chan struct{})
		go func() {
			a.Run(context.Background())
			close(done)
		}()
		time.Sleep(70 * time.Millisecond)
		a.Stop()
		<-done

		if journal.Cycles() < 2 {
			t.Errorf("expected at least 2 journaled cycles, got %d", journal.Cycles())
		}
	})

	t.Run("journal failure does not kill the loop", func(t *testing.T) {
		t.Parallel()
		journal := &fakeJournal{err: errors.New("disk full")}
		sc := &fakeScanner{}
		a := New(Options{
			Scanner:  sc,
			Gateway:  &fakeGateway{},
			Journal:  journal,
			Interval: 20 * time.Millisecond,
		})

		done := make(chan struct{})
		go func() {
			a.Run(context.Background())
			close(done)
		}()
		time.Sleep(70 * time.Millisecond)
		a.Stop()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("loop died on journal failure")
		}
		if sc.calls.Load() < 2 {
			t.Errorf("expected loop to keep scanning, got %d cycles", sc.calls.Load())
		}
	})
}

// TestCommandSurface tests the on-demand operations.
func TestCommandSurface(t *testing.T) {
	t.Parallel()

	t.Run("scan now returns scanner findings", func(t *testing.T) {
		t.Parallel()
		findings := []model.Finding{
			model.NewHighCPUFinding(model.ProcessInfo{PID: 9, Name: "hog", CPUPercent: 95}),
		}
		a := newTestAgent(model.CapabilitySet{}, nil, &fakeScanner{findings: findings})

		got := a.ScanNow(context.Background())
		if len(got) != 1 || got[0].PID != 9 {
			t.Errorf("unexpected findings: %+v", got)
		}
	})

	t.Run("classify delegates to gateway", func(t *testing.T) {
		t.Parallel()
		a := New(Options{
			Scanner: &fakeScanner{},
			Gateway: &fakeGateway{result: model.NewClassification("SAFE", 0.7)},
		})

		result := a.Classify(context.Background(), "text")
		if result.Label != "SAFE" {
			t.Errorf("unexpected classification: %+v", result)
		}
	})

	t.Run("renew identity without relay fails cleanly", func(t *testing.T) {
		t.Parallel()
		a := newTestAgent(model.CapabilitySet{}, nil, &fakeScanner{})
		if err := a.RenewIdentity(context.Background()); !errors.Is(err, ErrAnonymityUnavailable) {
			t.Errorf("expected ErrAnonymityUnavailable, got %v", err)
		}
	})

	t.Run("renew identity failure leaves status untouched", func(t *testing.T) {
		t.Parallel()
		rel := &fakeRelay{renewErr: errors.New("auth rejected")}
		a := newTestAgent(model.CapabilitySet{Anonymity: true}, rel, &fakeScanner{})

		before := a.Status()
		if err := a.RenewIdentity(context.Background()); err == nil {
			t.Error("expected renewal error")
		}
		if a.Status() != before {
			t.Error("renewal failure must not change agent status")
		}
	})
}

// TestAllCapabilitiesAbsent is the degraded end-to-end path: the agent
// stays functional with nothing optional present.
func TestAllCapabilitiesAbsent(t *testing.T) {
	t.Parallel()

	a := newTestAgent(model.CapabilitySet{}, nil, &fakeScanner{})

	done := make(chan struct{})
	go func() {
		a.Run(context.Background())
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)

	status := a.Status()
	if status.Capabilities.Classification || status.Capabilities.Anonymity || status.Capabilities.Presentation {
		t.Errorf("expected all capability flags false, got %+v", status.Capabilities)
	}
	if !status.Running {
		t.Error("expected agent running")
	}

	if findings := a.ScanNow(context.Background()); len(findings) != 0 {
		t.Errorf("expected no findings from quiet scanner, got %+v", findings)
	}

	result := a.Classify(context.Background(), "x")
	if !result.Unavailable {
		t.Error("expected unavailable classification with capability absent")
	}

	a.Stop()
	<-done
}
