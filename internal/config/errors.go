package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). This allows callers to use errors.Is()
// for programmatic handling while still providing human-readable messages.
var (
	// ErrInvalidScanInterval is returned when the scan interval is not
	// positive. A zero interval would spin the scan loop continuously.
	ErrInvalidScanInterval = errors.New("invalid scan interval: must be positive")

	// ErrInvalidCPUThreshold is returned when the CPU threshold is outside
	// (0, 100]. A threshold of zero would flag every process on the host.
	ErrInvalidCPUThreshold = errors.New("invalid cpu threshold: must be in (0, 100]")

	// ErrInvalidStartupTimeout is returned when the relay startup timeout
	// is not positive. Tor bootstrap needs a real deadline; zero would
	// fail every launch immediately.
	ErrInvalidStartupTimeout = errors.New("invalid tor startup timeout: must be positive")

	// ErrInvalidClassifyTimeout is returned when the classification
	// request timeout is not positive.
	ErrInvalidClassifyTimeout = errors.New("invalid classify timeout: must be positive")
)
