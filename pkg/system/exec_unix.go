//go:build unix

package system

import (
	"os/exec"
	"syscall"
)

// killProcessGroupOnCancel starts the command in its own process group so a
// cancel reaches compiler helpers (cc1plus, as, collect2) that share the pipe.
func killProcessGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
