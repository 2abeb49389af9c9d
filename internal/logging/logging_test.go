package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_InfoByDefault(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup, err := Setup(Config{Tool: "archive-files", Stderr: &buf})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	l.Debug("hidden")
	l.Info("selected", "count", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered, got %q", out)
	}
	if !strings.Contains(out, "msg=selected") || !strings.Contains(out, "count=3") {
		t.Errorf("missing info record, got %q", out)
	}
	if !strings.Contains(out, "tool=archive-files") {
		t.Errorf("missing tool attribute, got %q", out)
	}
}

func TestSetup_Verbose(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup, err := Setup(Config{Verbose: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	l.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug record should be written in verbose mode, got %q", buf.String())
	}
}

func TestSetup_LogDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l, cleanup, err := Setup(Config{Tool: "gen-iconfont", Dir: dir, Verbose: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	l.Info("font saved")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "gen-iconfont-*.log"))
	if len(files) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(files))
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "font saved") {
		t.Errorf("log file missing record, got %q", data)
	}
	if !strings.Contains(buf.String(), "font saved") {
		t.Errorf("stderr missing record, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "path="+files[0]) {
		t.Errorf("stderr should name the log file %s, got %q", files[0], buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard() logger should not be enabled at any level")
	}
	l.Error("dropped")
}

func TestRotatingLogger_Rotate(t *testing.T) {
	dir := t.TempDir()
	l, err := NewRotatingLogger(dir, "check-snippets")
	if err != nil {
		t.Fatalf("NewRotatingLogger failed: %v", err)
	}
	defer l.Close()
	l.maxSize = 8

	first := l.FilePath()
	if _, err := l.Write([]byte("0123456789\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if l.FilePath() == first {
		t.Error("expected rotation after exceeding maxSize")
	}
}

func TestRotatingLogger_RotateKeepsMaxFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x-20200101-000000.000000.log", "x-20200102-000000.000000.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	l, err := NewRotatingLogger(dir, "x")
	if err != nil {
		t.Fatalf("NewRotatingLogger failed: %v", err)
	}
	defer l.Close()
	l.maxSize = 1
	l.maxFiles = 2

	for i := 0; i < 5; i++ {
		if _, err := l.Write([]byte("record\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		files, _ := filepath.Glob(filepath.Join(dir, "x-*.log"))
		if len(files) > l.maxFiles {
			t.Fatalf("after write %d: %d log files remain, want at most %d", i, len(files), l.maxFiles)
		}
		if _, err := os.Stat(l.FilePath()); err != nil {
			t.Fatalf("current log file was removed: %v", err)
		}
	}
}

func TestRotatingLogger_Cleanup(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x-20200101-000000.000000.log", "x-20200102-000000.000000.log", "other.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	l, err := NewRotatingLogger(dir, "x")
	if err != nil {
		t.Fatalf("NewRotatingLogger failed: %v", err)
	}
	defer l.Close()
	l.maxFiles = 2
	l.cleanup()

	if _, err := os.Stat(filepath.Join(dir, "x-20200101-000000.000000.log")); !os.IsNotExist(err) {
		t.Error("oldest log file should be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "other.log")); err != nil {
		t.Error("files of other tools must be kept")
	}
}
