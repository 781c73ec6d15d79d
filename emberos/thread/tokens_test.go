package thread

import "testing"

// The compile-time half of the token protocol is exercised simply by this
// file building: an entry point signature, a take/return round trip, and
// termination from both intact shapes. The negative half is the Main
// signature itself. A body assignable to Main must produce an EndToken on
// every return path, EndToken's only field is unexported, and the sole
// producer is Termination, so an entry point that skips the protocol is a
// type error, not a runtime one.
var _ Main = func(t StartToken) EndToken {
	return Termination(t)
}

// A service loop that never returns also satisfies Main: an infinite for
// is a terminating statement, so no EndToken is owed.
var _ Main = func(StartToken) EndToken {
	for {
	}
}

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic: %s", want)
		}
	}()
	fn()
}

func TestTokenCarriesThreadIdentity(t *testing.T) {
	useFixture(t, newFixture())

	tok := newStartToken(3)
	if tok.PID().Raw() != 3 {
		t.Fatalf("expected pid 3, got %v", tok.PID())
	}
	if Current(tok.InThread()).Raw() != 3 {
		t.Fatalf("expected the witness to name the same thread")
	}
}

func TestMsgCapabilityRoundTrip(t *testing.T) {
	tok := newStartToken(1)

	taken, c := TakeMsgSemantics(tok)
	if c.PID().Raw() != 1 {
		t.Fatalf("expected capability pid 1, got %v", c.PID())
	}

	restored := ReturnMsgSemantics(taken, c)
	end := Termination(restored)
	if !end.ok {
		t.Fatalf("expected a genuine end token")
	}
}

func TestClaimConsumesCapability(t *testing.T) {
	tok := newStartToken(1)
	_, c := TakeMsgSemantics(tok)

	if c.Claim().Raw() != 1 {
		t.Fatalf("expected claim to yield pid 1")
	}
	mustPanic(t, "second claim", func() { c.Claim() })
}

func TestReturnAfterClaimPanics(t *testing.T) {
	tok := newStartToken(1)
	taken, c := TakeMsgSemantics(tok)
	c.Claim()
	mustPanic(t, "returning a claimed capability", func() { ReturnMsgSemantics(taken, c) })
}

func TestCrossThreadReturnPanics(t *testing.T) {
	a := newStartToken(1)
	b := newStartToken(2)
	takenA, _ := TakeMsgSemantics(a)
	_, capB := TakeMsgSemantics(b)
	mustPanic(t, "cross-thread capability return", func() { ReturnMsgSemantics(takenA, capB) })
}

func TestFlagCapability(t *testing.T) {
	tok := newStartToken(2)
	rest, c := TakeFlagSemantics(tok)
	if c.Claim().Raw() != 2 {
		t.Fatalf("expected claim to yield pid 2")
	}
	// Flags taken does not preclude termination.
	if end := Termination(rest); !end.ok {
		t.Fatalf("expected a genuine end token")
	}
}

func TestDoubleTerminationPanics(t *testing.T) {
	tok := newStartToken(1)
	copyTok := tok
	Termination(tok)
	mustPanic(t, "terminating a spent copy", func() { Termination(copyTok) })
}

func TestForgedTokenPanics(t *testing.T) {
	mustPanic(t, "zero-value token", func() { Termination(StartToken{}) })
}

func TestForgedEndTokenCaught(t *testing.T) {
	mustPanic(t, "forged end token", func() {
		runMain(1, func(StartToken) EndToken { return EndToken{} })
	})
}

func TestPromoteValue(t *testing.T) {
	tok := newStartToken(4)
	v := Promote(tok.InThread(), 42)
	if v.Value != 42 {
		t.Fatalf("expected 42, got %d", v.Value)
	}
	if Current(v.InThread()).Raw() != 4 {
		t.Fatalf("expected the witness to survive promotion")
	}
}

func TestTerminateWith(t *testing.T) {
	tok := newStartToken(1)
	tt := TerminateWith(tok, "done")
	if !tt.end.ok || tt.value != "done" {
		t.Fatalf("unexpected termination token: %+v", tt)
	}
}
