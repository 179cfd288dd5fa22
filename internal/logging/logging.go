// Package logging builds the leveled loggers used by every process.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options holds configuration for a logger.
type Options struct {
	Level  string // debug, info, warn, error
	Prefix string
	// Path selects a log file, appended to. Empty means stderr.
	Path string
}

// New returns a logger writing human-readable text to w.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	lvl, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: opts.Prefix,
	}), nil
}

// Open returns a logger for opts.Path (logfmt, timestamped) or stderr.
// The closer releases the file and is a no-op for stderr.
func Open(opts Options) (*log.Logger, io.Closer, error) {
	if opts.Path == "" {
		l, err := New(os.Stderr, opts)
		return l, io.NopCloser(nil), err
	}

	lvl, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l := log.NewWithOptions(f, log.Options{
		Level:           lvl,
		Prefix:          opts.Prefix,
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return l, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger { return log.New(io.Discard) }

func parseLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
