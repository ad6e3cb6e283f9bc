//go:build !unix

package system

import "os/exec"

func killProcessGroupOnCancel(cmd *exec.Cmd) {}
