package logger

import (
	"io"
	"log/slog"
	"os"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for run.log.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// FileConfig describes rotation for the diagnostic log file.
// Rotation parameters follow lumberjack semantics.
type FileConfig struct {
	Path       string // log file path; empty disables file logging
	MaxSizeMB  int    // megabytes before rotation (default 10)
	MaxBackups int    // number of backups to keep (default 3)
	MaxAgeDays int    // days to keep (default 7)
	Compress   bool   // gzip rotated files
}

// Writer returns a rotating writer for the configured file, or nil when no
// path is set.
func (c FileConfig) Writer() io.WriteCloser {
	if c.Path == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

// New returns an slog.Logger writing structured text records to w.
// Diagnostics go to the log file only; the CLI keeps its own single-line
// output, so nothing here writes to the terminal.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewInteractive returns a colorized stderr logger for foreground `run`
// sessions, where the user is watching the terminal anyway.
func NewInteractive(level slog.Level) *slog.Logger {
	return slog.New(NewColorTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
