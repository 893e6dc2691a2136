package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

const testDelay = 50 * time.Millisecond

// waitFor polls cond for up to a second.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 1s")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(testDelay, func() { calls.Add(1) })

	for range 10 {
		d.Trigger()
		time.Sleep(testDelay / 10)
	}
	waitFor(t, func() bool { return calls.Load() == 1 })

	// Nothing else fires afterwards.
	time.Sleep(3 * testDelay)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after the call ran")
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(testDelay, func() { calls.Add(1) })

	d.Trigger()
	waitFor(t, func() bool { return calls.Load() == 1 })
	d.Trigger()
	waitFor(t, func() bool { return calls.Load() == 2 })
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(time.Hour, func() { calls.Add(1) })

	if d.Flush() {
		t.Error("Flush() with nothing pending = true")
	}
	d.Trigger()
	if !d.Pending() {
		t.Fatal("Pending() = false after Trigger")
	}
	if !d.Flush() {
		t.Fatal("Flush() = false with a pending call")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after Flush")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(testDelay, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()
	time.Sleep(3 * testDelay)

	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d after Stop, want 0", got)
	}
}

func TestNew_DefaultDelay(t *testing.T) {
	t.Parallel()

	if d := New(0, func() {}); d.delay != DefaultDelay {
		t.Errorf("delay = %v, want %v", d.delay, DefaultDelay)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(testDelay, func() { calls.Add(1) })

	d.Trigger()
	d.Cancel()
	time.Sleep(3 * testDelay)
	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d after Cancel, want 0", got)
	}

	d.Trigger()
	time.Sleep(3 * testDelay)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1: Trigger after Cancel must still schedule", got)
	}
}
