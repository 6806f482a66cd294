//go:build !windows

package shell

import (
	"os/exec"
	"syscall"
)

// detach runs the command in a new session so it survives our exit.
func detach(command *exec.Cmd) {
	command.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
