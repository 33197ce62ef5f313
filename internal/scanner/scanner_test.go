package scanner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/nao1215/hostguard/internal/model"
)

// fakeLister returns a canned process table or a canned error.
type fakeLister struct {
	procs []model.ProcessInfo
	err   error
}

func (f *fakeLister) Processes(_ context.Context) ([]model.ProcessInfo, error) {
	return f.procs, f.err
}

// TestScan tests the threshold rule against injected process tables.
func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("flags exactly the processes above threshold", func(t *testing.T) {
		t.Parallel()
		lister := &fakeLister{procs: []model.ProcessInfo{
			{PID: 100, Name: "miner", CPUPercent: 95.0},
			{PID: 200, Name: "editor", CPUPercent: 10.0},
		}}

		findings := New(lister, 90, slog.Default()).Scan(context.Background())

		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		if findings[0].PID != 100 || findings[0].Name != "miner" {
			t.Errorf("finding references wrong process: %+v", findings[0])
		}
		if !strings.Contains(findings[0].Description, "miner") ||
			!strings.Contains(findings[0].Description, "100") {
			t.Errorf("description missing name or pid: %q", findings[0].Description)
		}
	})

	t.Run("preserves enumeration order", func(t *testing.T) {
		t.Parallel()
		lister := &fakeLister{procs: []model.ProcessInfo{
			{PID: 3, Name: "c", CPUPercent: 99},
			{PID: 1, Name: "a", CPUPercent: 91},
			{PID: 2, Name: "b", CPUPercent: 92},
		}}

		findings := New(lister, 90, slog.Default()).Scan(context.Background())

		got := make([]int32, 0, len(findings))
		for _, f := range findings {
			got = append(got, f.PID)
		}
		want := []int32{3, 1, 2}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	})

	t.Run("empty table yields no findings", func(t *testing.T) {
		t.Parallel()
		findings := New(&fakeLister{}, 90, slog.Default()).Scan(context.Background())
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %d", len(findings))
		}
	})

	t.Run("threshold is strictly exceeded", func(t *testing.T) {
		t.Parallel()
		lister := &fakeLister{procs: []model.ProcessInfo{
			{PID: 1, Name: "edge", CPUPercent: 90.0},
		}}
		findings := New(lister, 90, slog.Default()).Scan(context.Background())
		if len(findings) != 0 {
			t.Errorf("expected 90%% exactly to pass, got %d findings", len(findings))
		}
	})

	t.Run("enumeration failure degrades to empty and logs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		lister := &fakeLister{err: errors.New("host api unavailable")}

		findings := New(lister, 90, logger).Scan(context.Background())

		if len(findings) != 0 {
			t.Errorf("expected empty findings on failure, got %d", len(findings))
		}
		if !strings.Contains(buf.String(), "host api unavailable") {
			t.Errorf("expected failure cause in log, got: %s", buf.String())
		}
	})
}
