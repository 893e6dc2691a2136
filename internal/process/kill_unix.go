//go:build !windows

package process

import "syscall"

// KillProcessGroup kills the headless Chrome and its renderer children by
// sending SIGKILL to the process group (negative PID).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Kill() runs afterwards as a fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
