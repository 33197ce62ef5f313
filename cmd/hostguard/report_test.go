package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeDataDirConfig writes a config file pointing the data dir at a
// temp directory, keeping tests out of the user's XDG paths.
func writeDataDirConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".hostguard")
	content := "data_dir: " + dir + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestNewReportCmd tests the report command definition.
func TestNewReportCmd(t *testing.T) {
	t.Parallel()

	cmd := NewReportCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "report" {
			t.Errorf("expected use 'report', got %q", cmd.Use)
		}
	})

	t.Run("has output format flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output", "limit", "all"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestReportCmdExecution tests report output over an empty history.
func TestReportCmdExecution(t *testing.T) {
	t.Parallel()

	t.Run("empty history prints clean summary", func(t *testing.T) {
		t.Parallel()

		configPath := writeDataDirConfig(t)

		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs([]string{"report", "--config", configPath})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "No scan cycles recorded.") {
			t.Errorf("expected empty-history message, got %q", out.String())
		}
	})

	t.Run("writes markdown to output file", func(t *testing.T) {
		t.Parallel()

		configPath := writeDataDirConfig(t)
		outPath := filepath.Join(t.TempDir(), "reports", "summary.md")

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"report", "--config", configPath, "--markdown", "--output", outPath})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("expected output file: %v", err)
		}
		if !strings.Contains(string(data), "# Hostguard Report") {
			t.Error("expected markdown title in output file")
		}
	})

	t.Run("json and markdown are mutually exclusive", func(t *testing.T) {
		t.Parallel()

		configPath := writeDataDirConfig(t)

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"report", "--config", configPath, "--json", "--markdown"})

		if err := root.Execute(); err == nil {
			t.Error("expected error for conflicting format flags")
		}
	})
}
