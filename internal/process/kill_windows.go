//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills the headless Chrome process tree using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
