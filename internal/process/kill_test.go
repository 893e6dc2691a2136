package process

import "testing"

// ---------------------------------------------------------------------------
// TestKillProcessGroup - PID guards
// ---------------------------------------------------------------------------

func TestKillProcessGroup(t *testing.T) {
	t.Parallel()

	// PID 0 and negatives must be ignored: signalling -0 would hit our own
	// process group. A huge PID exercises the "no such process" path.
	for _, pid := range []int{0, -1, 999999999} {
		KillProcessGroup(pid)
	}
}
