//go:build linux

package uni20

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setPlatformProcAttr asks the kernel to kill the probe interpreter if the
// Go process dies without running its shutdown path, so an orphaned Python
// process is never left holding the pipes.
func setPlatformProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: unix.SIGKILL,
	}
}
