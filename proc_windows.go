//go:build windows

package uni20

import (
	"os"
	"os/exec"
)

// checkExecutable verifies that path exists. Windows has no execute
// permission bit worth checking; existence is the best signal available.
func checkExecutable(path string) error {
	_, err := os.Stat(path)
	return err
}

// setExtraFiles is a stub: exec.Cmd does not support ExtraFiles on Windows,
// so the probe subprocess cannot be launched there. NewProbe rejects the
// platform before reaching this point.
func setExtraFiles(cmd *exec.Cmd, extraFiles []*os.File) []string {
	return nil
}
