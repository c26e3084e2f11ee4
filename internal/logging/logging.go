// Package logging sets up the structured logger. The terminal belongs to the
// TUI, so logs normally go to a file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Format int

const (
	FormatText Format = iota
	FormatJSON
)

type Config struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string
	// Path is the log file. Empty writes to stderr.
	Path   string
	Format Format
	// SessionID is attached to every record when set.
	SessionID string
}

func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns the logger and a closer for the underlying file, if any.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, err
		}
		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = file
		closer = file
	}

	return newLogger(out, cfg), closer, nil
}

func newLogger(out io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.SessionID != "" {
		logger = logger.With("session_id", cfg.SessionID)
	}
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
