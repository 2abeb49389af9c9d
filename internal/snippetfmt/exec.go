package snippetfmt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// DefaultCommand reads code on stdin and writes the formatted code to stdout.
const DefaultCommand = "black -q -"

// ExecFormatter runs an external formatter process per snippet.
type ExecFormatter struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewExecFormatter parses command with shell quoting rules. A zero timeout
// means the process runs until ctx is done.
func NewExecFormatter(command string, timeout time.Duration) (*ExecFormatter, error) {
	words, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid formatter command %q: %w", command, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("formatter command is empty")
	}
	return &ExecFormatter{name: words[0], args: words[1:], timeout: timeout}, nil
}

// String returns the command line.
func (e *ExecFormatter) String() string {
	return shellquote.Join(append([]string{e.name}, e.args...)...)
}

// Format pipes code through the formatter. A non-zero exit is an error
// carrying the formatter's stderr.
func (e *ExecFormatter) Format(ctx context.Context, code string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.name, e.args...)
	setProcGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(code)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("formatter timed out after %s", e.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.New(msg)
		}
		return "", fmt.Errorf("%s: %w", e.name, err)
	}
	return stdout.String(), nil
}
