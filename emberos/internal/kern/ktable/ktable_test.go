package ktable

import (
	"errors"
	"testing"
	"time"
)

func waitStatus(t *testing.T, tbl *Table, pid int16, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for tbl.Status(pid) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected status %d, still %d", want, tbl.Status(pid))
		}
		time.Sleep(time.Millisecond)
	}
}

func spawnParked(t *testing.T, tbl *Table, name string, stackBytes int) (int16, chan struct{}) {
	t.Helper()
	started := make(chan struct{})
	release := make(chan struct{})
	pid, err := tbl.Spawn(name, 5, stackBytes, func(pid int16) {
		close(started)
		<-release
	})
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}
	<-started
	return pid, release
}

func TestSpawnAndVacate(t *testing.T) {
	tbl := New(2)

	done := make(chan struct{})
	pid, err := tbl.Spawn("worker", 3, 512, func(pid int16) { close(done) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pid != PidFirst {
		t.Fatalf("expected first pid %d, got %d", PidFirst, pid)
	}
	<-done

	// Vacated slots answer the sentinel, never stale state.
	waitStatus(t, tbl, pid, StatusNotFound)
	if _, ok := tbl.Name(pid); ok {
		t.Fatalf("expected no name after exit")
	}
}

func TestSpawnTableFull(t *testing.T) {
	tbl := New(1)
	_, release := spawnParked(t, tbl, "only", 0)
	defer close(release)

	if _, err := tbl.Spawn("extra", 0, 0, func(int16) {}); !errors.Is(err, ErrTableFull) {
		t.Fatalf("expected ErrTableFull, got %v", err)
	}
}

func TestStatusAndIdentity(t *testing.T) {
	tbl := New(4)
	pid, release := spawnParked(t, tbl, "svc", 0)
	defer close(release)

	if got := tbl.Status(pid); got != StatusRunning {
		t.Fatalf("expected running, got %d", got)
	}
	if name, ok := tbl.Name(pid); !ok || name != "svc" {
		t.Fatalf("expected name svc, got %q ok=%v", name, ok)
	}
	if prio, ok := tbl.Priority(pid); !ok || prio != 5 {
		t.Fatalf("expected priority 5, got %d ok=%v", prio, ok)
	}
	if tbl.Status(0) != StatusNotFound || tbl.Status(100) != StatusNotFound {
		t.Fatalf("expected out-of-range identifiers to answer the sentinel")
	}
}

func TestWakeupSemantics(t *testing.T) {
	tbl := New(2)
	pid, release := spawnParked(t, tbl, "w", 0)
	defer close(release)

	// Awake thread: no-op success.
	if !tbl.Wakeup(pid) {
		t.Fatalf("expected waking an awake thread to succeed")
	}
	// Vacant slot: failure.
	if tbl.Wakeup(pid + 1) {
		t.Fatalf("expected waking a vacant slot to fail")
	}
}

func TestSleepWakeRoundTrip(t *testing.T) {
	tbl := New(2)

	awake := make(chan struct{})
	pid, err := tbl.Spawn("sleeper", 0, 0, func(pid int16) {
		tbl.Sleep(pid)
		close(awake)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Wait for the thread to publish the sleeping state, then wake it.
	waitStatus(t, tbl, pid, StatusSleeping)
	if !tbl.Wakeup(pid) {
		t.Fatalf("expected wakeup to succeed")
	}
	<-awake
}

func TestSetStatusPublishesParkReason(t *testing.T) {
	tbl := New(2)
	pid, release := spawnParked(t, tbl, "blocked", 0)
	defer close(release)

	tbl.SetStatus(pid, StatusMutexBlocked)
	if got := tbl.Status(pid); got != StatusMutexBlocked {
		t.Fatalf("expected mutex-blocked, got %d", got)
	}
	tbl.SetStatus(pid, StatusRunning)
	if got := tbl.Status(pid); got != StatusRunning {
		t.Fatalf("expected running, got %d", got)
	}
}

func TestStackMeasurement(t *testing.T) {
	tbl := New(2)
	pid, release := spawnParked(t, tbl, "stacky", 1024)
	defer close(release)

	info, ok := tbl.StackInfo(pid)
	if !ok {
		t.Fatalf("expected stack info for a live thread")
	}
	if info.Size != 1024 {
		t.Fatalf("expected size 1024, got %d", info.Size)
	}
	if used := info.Size - info.Free; used < spawnFrameBytes {
		t.Fatalf("expected at least the spawn frame to be used, got %d", used)
	}

	before := info.Free
	tbl.UseStack(pid, 256)
	info, _ = tbl.StackInfo(pid)
	if info.Free > before-256 {
		t.Fatalf("expected at least 256 more bytes used, free went %d -> %d", before, info.Free)
	}

	if _, ok := tbl.StackInfo(pid + 1); ok {
		t.Fatalf("expected no stack info for a vacant slot")
	}
}

func TestMeasureStackFree(t *testing.T) {
	stack := make([]byte, 16)
	for i := range stack {
		stack[i] = CanaryByte
	}
	if got := MeasureStackFree(stack); got != 16 {
		t.Fatalf("expected 16 free, got %d", got)
	}
	stack[4] = 0
	if got := MeasureStackFree(stack); got != 4 {
		t.Fatalf("expected the count to stop at the first touched byte, got %d", got)
	}
}

func TestSlotReuse(t *testing.T) {
	tbl := New(1)

	done := make(chan struct{})
	first, err := tbl.Spawn("one", 0, 0, func(int16) { close(done) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-done
	waitStatus(t, tbl, first, StatusNotFound)

	second, release := spawnParked(t, tbl, "two", 0)
	defer close(release)
	if second != first {
		t.Fatalf("expected the slot to be reused, got %d and %d", first, second)
	}
	if name, _ := tbl.Name(second); name != "two" {
		t.Fatalf("expected the new occupant's name, got %q", name)
	}
}
