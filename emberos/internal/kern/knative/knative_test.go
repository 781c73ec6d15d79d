package knative

import (
	"errors"
	"testing"
	"time"
)

func waitStatus(t *testing.T, r *Registry, pid int16, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.Status(pid) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected status %d, still %d", want, r.Status(pid))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPIDRangeIsZeroBased(t *testing.T) {
	r := New(4)
	if r.First() != 0 || r.Last() != 3 {
		t.Fatalf("expected range 0..3, got %d..%d", r.First(), r.Last())
	}
	if r.IsValid(-1) || r.IsValid(4) {
		t.Fatalf("expected out-of-range identifiers to be rejected")
	}
	if !r.IsValid(0) {
		t.Fatalf("expected 0 to be a valid identifier")
	}
}

func TestVacantSlotsAnswerInvalid(t *testing.T) {
	r := New(2)
	if got := r.Status(0); got != StatusInvalid {
		t.Fatalf("expected the invalid sentinel, got %d", got)
	}
	if _, ok := r.Name(0); ok {
		t.Fatalf("expected no name for a vacant slot")
	}
	if _, ok := r.Priority(0); ok {
		t.Fatalf("expected no priority for a vacant slot")
	}
}

func TestSpawnKeepsName(t *testing.T) {
	r := New(2)
	release := make(chan struct{})
	pid, err := r.Spawn("timer", 2, 0, func(int16) { <-release })
	defer close(release)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitStatus(t, r, pid, StatusRunning)

	if name, ok := r.Name(pid); !ok || name != "timer" {
		t.Fatalf("expected name timer, got %q ok=%v", name, ok)
	}
	if prio, ok := r.Priority(pid); !ok || prio != 2 {
		t.Fatalf("expected priority 2, got %d ok=%v", prio, ok)
	}
}

func TestNoFreeSlot(t *testing.T) {
	r := New(1)
	release := make(chan struct{})
	if _, err := r.Spawn("a", 0, 0, func(int16) { <-release }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer close(release)

	if _, err := r.Spawn("b", 0, 0, func(int16) {}); !errors.Is(err, ErrNoFreeSlot) {
		t.Fatalf("expected ErrNoFreeSlot, got %v", err)
	}
}

func TestSleepWake(t *testing.T) {
	r := New(2)
	awake := make(chan struct{})
	pid, err := r.Spawn("s", 0, 0, func(pid int16) {
		r.Sleep(pid)
		close(awake)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitStatus(t, r, pid, StatusSleeping)

	if !r.Wakeup(pid) {
		t.Fatalf("expected wakeup to succeed")
	}
	<-awake

	// Once the thread has exited, waking its old identifier fails.
	waitStatus(t, r, pid, StatusInvalid)
	if r.Wakeup(pid) {
		t.Fatalf("expected waking a vacant slot to fail")
	}
}
