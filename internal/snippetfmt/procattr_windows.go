//go:build windows

package snippetfmt

import "os/exec"

// setProcGroup is a no-op on Windows.
// exec.CommandContext already kills the process there.
func setProcGroup(cmd *exec.Cmd) {}
