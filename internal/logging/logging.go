// Package logging configures the structured logger shared by the build utilities.
//
// Logs go to stderr (and optionally a rotating file); stdout is reserved for
// each tool's data output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Config controls logger setup.
type Config struct {
	// Tool is attached to every record as the "tool" attribute.
	Tool string
	// Verbose enables debug records and source locations.
	Verbose bool
	// Dir, when set, also writes records to a rotating log file in Dir.
	Dir string
	// Stderr overrides os.Stderr (tests).
	Stderr io.Writer
}

// Setup builds a logger from cfg. The returned cleanup closes the log file, if any.
func Setup(cfg Config) (*slog.Logger, func() error, error) {
	var w io.Writer = os.Stderr
	if cfg.Stderr != nil {
		w = cfg.Stderr
	}

	cleanup := func() error { return nil }
	var logFile string
	if cfg.Dir != "" {
		rl, err := NewRotatingLogger(cfg.Dir, cfg.Tool)
		if err != nil {
			return Discard(), cleanup, err
		}
		w = io.MultiWriter(w, rl)
		cleanup = rl.Close
		logFile = rl.FilePath()
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Verbose,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	})

	l := slog.New(h)
	if cfg.Tool != "" {
		l = l.With("tool", cfg.Tool)
	}
	if logFile != "" {
		l.Debug("writing log file", "path", logFile)
	}
	return l, cleanup, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
