package flags

import (
	"errors"
	"testing"

	"ember/emberos/thread"
)

func TestWaitAny(t *testing.T) {
	ready := make(chan thread.KernelPID, 1)
	got := make(chan Mask, 1)

	thread.WithScope(func(s *thread.Scope) {
		_, err := s.Spawn("waiter", 4, 0, func(tok thread.StartToken) thread.EndToken {
			rest, c := thread.TakeFlagSemantics(tok)
			r := Attach(c)
			ready <- thread.Current(rest.InThread())
			got <- r.WaitAny(rest.InThread(), 0b11)
			return thread.Termination(rest)
		})
		if err != nil {
			t.Fatalf("unexpected spawn error: %v", err)
		}

		pid := <-ready
		if err := Set(pid, 0b01); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if m := <-got; m != 0b01 {
		t.Fatalf("expected mask 0b01, got %#b", m)
	}
}

func TestWaitAllAccumulates(t *testing.T) {
	ready := make(chan thread.KernelPID, 1)
	got := make(chan Mask, 1)

	thread.WithScope(func(s *thread.Scope) {
		_, err := s.Spawn("waiter", 4, 0, func(tok thread.StartToken) thread.EndToken {
			rest, c := thread.TakeFlagSemantics(tok)
			r := Attach(c)
			ready <- thread.Current(rest.InThread())
			got <- r.WaitAll(rest.InThread(), 0b11)
			return thread.Termination(rest)
		})
		if err != nil {
			t.Fatalf("unexpected spawn error: %v", err)
		}

		pid := <-ready
		// One flag alone must not satisfy the waiter; both together do.
		Set(pid, 0b01)
		Set(pid, 0b10)
	})

	if m := <-got; m != 0b11 {
		t.Fatalf("expected mask 0b11, got %#b", m)
	}
}

func TestFlagsSetBeforeWait(t *testing.T) {
	got := make(chan Mask, 1)

	thread.WithScope(func(s *thread.Scope) {
		_, err := s.Spawn("late", 4, 0, func(tok thread.StartToken) thread.EndToken {
			rest, c := thread.TakeFlagSemantics(tok)
			r := Attach(c)
			self := thread.Current(rest.InThread())
			// Raised before anyone waits: stays pending.
			Set(self, 0b100)
			got <- r.WaitAny(rest.InThread(), 0b100)
			return thread.Termination(rest)
		})
		if err != nil {
			t.Fatalf("unexpected spawn error: %v", err)
		}
	})

	if m := <-got; m != 0b100 {
		t.Fatalf("expected mask 0b100, got %#b", m)
	}
}

func TestSetWithoutReceiver(t *testing.T) {
	// Highest slot; nothing in these tests attaches there.
	pid, ok := thread.NewKernelPID(16)
	if !ok {
		t.Fatalf("expected 16 to be a valid identifier")
	}
	if err := Set(pid, 0b1); !errors.Is(err, ErrNoReceiver) {
		t.Fatalf("expected ErrNoReceiver, got %v", err)
	}
}
