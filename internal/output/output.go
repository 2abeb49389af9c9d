// Package output prints human-facing status lines for the build utilities.
//
// Data output (file lists, JSON reports) is written by the tools directly;
// this package only decorates confirmations, warnings and errors.
package output

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// Formatter handles formatted console output with colors
type Formatter struct {
	writer    io.Writer
	useColors bool
}

// New creates a Formatter writing to w (stdout when nil).
func New(w io.Writer) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{
		writer:    w,
		useColors: colorsEnabled(w),
	}
}

// colorsEnabled reports whether ANSI colors should be emitted on w.
func colorsEnabled(w io.Writer) bool {
	// Disable colors on Windows (unless using Windows Terminal)
	if runtime.GOOS == "windows" && os.Getenv("WT_SESSION") == "" {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Success prints a success message with green checkmark
func (o *Formatter) Success(format string, args ...any) {
	o.line(colorGreen, "✓", fmt.Sprintf(format, args...))
}

// Error prints an error message with red cross
func (o *Formatter) Error(format string, args ...any) {
	o.line(colorRed, "✗", fmt.Sprintf(format, args...))
}

// Warning prints a warning message with yellow warning sign
func (o *Formatter) Warning(format string, args ...any) {
	o.line(colorYellow, "⚠", fmt.Sprintf(format, args...))
}

// Info prints an undecorated message.
func (o *Formatter) Info(format string, args ...any) {
	fmt.Fprintln(o.writer, fmt.Sprintf(format, args...))
}

// Bold returns the string wrapped in bold formatting
func (o *Formatter) Bold(s string) string {
	if o.useColors {
		return colorBold + s + colorReset
	}
	return s
}

func (o *Formatter) line(color, mark, msg string) {
	if o.useColors {
		fmt.Fprintf(o.writer, "%s%s%s %s\n", color, mark, colorReset, msg)
		return
	}
	fmt.Fprintf(o.writer, "%s %s\n", mark, msg)
}
