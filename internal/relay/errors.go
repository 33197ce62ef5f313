package relay

import "errors"

// Relay lifecycle errors.
// These are the degraded-mode failures of the anonymity subsystem. None of
// them is fatal to the agent: callers log them and continue unprotected.
//
// Design decision: We define specific error types rather than wrapping all
// errors generically. This allows callers to handle different failure modes
// appropriately (e.g., surface ErrNotRunning as "start the relay first"
// while ErrRenewFailed carries a transport cause).
var (
	// ErrStartFailed is returned when the relay process could not be
	// launched or did not bootstrap within the configured timeout.
	ErrStartFailed = errors.New("relay start failed")

	// ErrNotRunning is returned by operations that need a live relay
	// (identity renewal, liveness probe) while the supervisor is stopped.
	ErrNotRunning = errors.New("relay is not running")

	// ErrRenewFailed is returned when the NEWNYM signal could not be
	// delivered: control connection refused, authentication rejected,
	// or a non-OK protocol reply.
	ErrRenewFailed = errors.New("identity renewal failed")
)
