// Package log provides the hostguard logging sink: leveled slog output
// mirrored to the console and a persistent agent log file, with automatic
// masking of secret values.
//
// This package extends slog to provide:
//   - Automatic masking of sensitive values (control-port credentials,
//     classification API keys, tokens)
//   - Configurable log levels with verbose mode support
//   - A console+file tee so failures survive process exit
//   - Compatibility with tornago's slog-based logging
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	logger, closer, err := log.NewAgentLogger(os.Stderr, "/path/agent.log", verbose)
//	if err != nil { ... }
//	defer closer()
//	slog.SetDefault(logger)
package log
