//go:build !windows

package snippetfmt

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcGroup starts the formatter in its own process group so a timeout
// kills any children it spawned too.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		}
		return nil
	}
}
