//go:build !linux

package uni20

import "os/exec"

// setPlatformProcAttr is a no-op where parent-death signaling is not
// available.
func setPlatformProcAttr(cmd *exec.Cmd) {}
