package main

import (
	"testing"
)

// TestNewScanCmd tests the scan command definition.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan" {
			t.Errorf("expected use 'scan', got %q", cmd.Use)
		}
	})

	t.Run("has threshold flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("cpu-threshold")
		if flag == nil {
			t.Fatal("expected cpu-threshold flag")
		}
		if flag.DefValue != "90" {
			t.Errorf("expected default '90', got %q", flag.DefValue)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}
