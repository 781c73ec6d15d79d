package mbox

import (
	"testing"

	"ember/emberos/thread"
)

func TestTryPutTryGet(t *testing.T) {
	var mb Mbox

	if _, ok := mb.TryGet(); ok {
		t.Fatalf("expected an empty mailbox")
	}
	for i := uint32(0); i < Slots; i++ {
		if !mb.TryPut(Envelope{Value: i}) {
			t.Fatalf("expected slot %d to be free", i)
		}
	}
	if mb.TryPut(Envelope{Value: 99}) {
		t.Fatalf("expected a full mailbox to reject the envelope")
	}

	for i := uint32(0); i < Slots; i++ {
		e, ok := mb.TryGet()
		if !ok {
			t.Fatalf("expected envelope %d", i)
		}
		if e.Value != i {
			t.Fatalf("expected FIFO order, got %d at position %d", e.Value, i)
		}
	}
	if _, ok := mb.TryGet(); ok {
		t.Fatalf("expected the mailbox to be drained")
	}
}

func TestPutFromISRHasNoIdentity(t *testing.T) {
	var mb Mbox
	isr := thread.PromiseInISR()
	if !mb.TryPutFromISR(isr, Envelope{Kind: 3, Value: 7}) {
		t.Fatalf("expected the put to succeed")
	}
	e, ok := mb.TryGet()
	if !ok {
		t.Fatalf("expected an envelope")
	}
	if e.From != (thread.KernelPID{}) {
		t.Fatalf("expected a zero sender for interrupt context, got %v", e.From)
	}
}

func TestThreadRoundTrip(t *testing.T) {
	var mb Mbox
	got := make(chan Envelope, 1)

	thread.WithScope(func(s *thread.Scope) {
		_, err := s.Spawn("producer", 4, 0, func(tok thread.StartToken) thread.EndToken {
			mb.Put(tok.InThread(), Envelope{Kind: 1, Value: 5})
			return thread.Termination(tok)
		})
		if err != nil {
			t.Fatalf("unexpected spawn error: %v", err)
		}
		_, err = s.Spawn("consumer", 4, 0, func(tok thread.StartToken) thread.EndToken {
			got <- mb.Get(tok.InThread())
			return thread.Termination(tok)
		})
		if err != nil {
			t.Fatalf("unexpected spawn error: %v", err)
		}
	})

	e := <-got
	if e.Kind != 1 || e.Value != 5 {
		t.Fatalf("expected kind 1 value 5, got %+v", e)
	}
	if e.From == (thread.KernelPID{}) {
		t.Fatalf("expected the producer identity to be filled in")
	}
}
