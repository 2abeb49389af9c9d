package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// DefaultMaxLogSize is the maximum size of a single log file (10MB)
	DefaultMaxLogSize = 10 * 1024 * 1024

	// DefaultMaxLogFiles is the maximum number of log files to keep per tool
	DefaultMaxLogFiles = 10
)

// RotatingLogger is an io.Writer over size-capped log files named
// <prefix>-<timestamp>.log. Old files beyond maxFiles are removed.
type RotatingLogger struct {
	dir      string
	prefix   string
	maxSize  int64
	maxFiles int
	current  *os.File
	written  int64
}

// NewRotatingLogger creates the log directory and opens the first file.
func NewRotatingLogger(dir, prefix string) (*RotatingLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if prefix == "" {
		prefix = "build-utils"
	}

	l := &RotatingLogger{
		dir:      dir,
		prefix:   prefix,
		maxSize:  DefaultMaxLogSize,
		maxFiles: DefaultMaxLogFiles,
	}
	if err := l.createNewFile(); err != nil {
		return nil, err
	}
	l.cleanup()
	return l, nil
}

// Write implements io.Writer
func (l *RotatingLogger) Write(p []byte) (int, error) {
	if l.current == nil {
		if err := l.createNewFile(); err != nil {
			return 0, err
		}
	}

	n, err := l.current.Write(p)
	l.written += int64(n)
	if err != nil {
		return n, err
	}

	if l.written >= l.maxSize {
		if err := l.Rotate(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Rotate closes the current log file and creates a new one
func (l *RotatingLogger) Rotate() error {
	if l.current != nil {
		if err := l.current.Close(); err != nil {
			return fmt.Errorf("failed to close current log file: %w", err)
		}
		l.current = nil
	}
	if err := l.createNewFile(); err != nil {
		return err
	}
	l.cleanup()
	return nil
}

// Close closes the logger
func (l *RotatingLogger) Close() error {
	if l.current == nil {
		return nil
	}
	err := l.current.Close()
	l.current = nil
	return err
}

// FilePath returns the current log file path
func (l *RotatingLogger) FilePath() string {
	if l.current != nil {
		return l.current.Name()
	}
	return ""
}

func (l *RotatingLogger) createNewFile() error {
	name := fmt.Sprintf("%s-%s.log", l.prefix, time.Now().Format("20060102-150405.000000"))
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	l.current = f
	l.written = 0
	return nil
}

// cleanup removes this tool's oldest log files while more than maxFiles exist.
func (l *RotatingLogger) cleanup() {
	matches, err := filepath.Glob(filepath.Join(l.dir, l.prefix+"-*.log"))
	if err != nil {
		return
	}

	// timestamped names sort chronologically
	sort.Strings(matches)
	for len(matches) > l.maxFiles {
		os.Remove(matches[0])
		matches = matches[1:]
	}
}
