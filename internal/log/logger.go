package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewAgentLogger creates the agent's logging sink: timestamped, leveled
// records mirrored to console and the persistent log file, with secret
// masking applied before either destination sees a record.
//
// The file and its parent directory are created if missing. The returned
// closer flushes and closes the log file; callers should defer it for the
// process lifetime. Log records written after close go to console only.
//
// Parameters:
//   - console: writer for the console copy (typically os.Stderr)
//   - filePath: the persistent agent log file; empty disables the file copy
//   - verbose: if true, sets log level to Debug; otherwise Info
func NewAgentLogger(console io.Writer, filePath string, verbose bool) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	out := console
	closer := func() error { return nil }

	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) //nolint:gosec // Path derives from the agent data dir
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(console, f)
		closer = f.Close
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(NewMaskingHandler(handler)), closer, nil
}

// NewMaskingLogger creates a console-only masked logger.
// Used by the one-shot commands, which have no business appending to the
// long-running agent's log file.
func NewMaskingLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewMaskingHandler(handler))
}
