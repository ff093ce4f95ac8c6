//go:build !windows

package uni20

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// checkExecutable verifies that path exists and is executable by the
// current user.
func checkExecutable(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("%s: not executable: %v", path, err)
	}
	return nil
}

// setExtraFiles attaches extra files to the command and returns their FD
// numbers as strings. On Unix, extra files start at FD 3 (after stdin=0,
// stdout=1, stderr=2).
func setExtraFiles(cmd *exec.Cmd, extraFiles []*os.File) []string {
	cmd.ExtraFiles = extraFiles
	retv := make([]string, len(extraFiles))
	for i := range extraFiles {
		retv[i] = fmt.Sprintf("%d", i+3)
	}
	return retv
}
