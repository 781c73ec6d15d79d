package thread

import "sync/atomic"

// InThread witnesses that the caller runs in thread context. It is freely
// copyable and remains meaningful for the whole thread lifetime.
type InThread struct {
	pid KernelPID
}

// PromiseInThread asserts thread context without proof. The caller vouches
// that p is the identifier of the thread it is executing on; a wrong
// promise makes Current and Sleep act on the wrong thread.
func PromiseInThread(p KernelPID) InThread { return InThread{pid: p} }

// InIsr witnesses interrupt context. Operations accepting it never block.
type InIsr struct{}

// PromiseInISR asserts interrupt context without proof.
func PromiseInISR() InIsr { return InIsr{} }

// MsgState and FlagState are the two capability axes a token tracks. Both
// are sealed: only the four marker types below implement them.
type MsgState interface{ msgState() }
type FlagState interface{ flagState() }

// MsgsIntact marks that the thread's one-time message-queue capability has
// not been taken yet.
type MsgsIntact struct{}

// MsgsTaken marks that it has.
type MsgsTaken struct{}

// FlagsIntact marks that the flag-receiver capability has not been taken.
type FlagsIntact struct{}

// FlagsTaken marks that it has.
type FlagsTaken struct{}

func (MsgsIntact) msgState()   {}
func (MsgsTaken) msgState()    {}
func (FlagsIntact) flagState() {}
func (FlagsTaken) flagState()  {}

// tokenLatch backs the runtime half of the token discipline. The type
// system rules out most misuse at compile time; the latch catches the two
// holes it cannot close, namely zero-value forgeries and copies of a token
// reaching a terminal operation twice.
type tokenLatch struct {
	used atomic.Bool
}

func (l *tokenLatch) consume(what string) {
	if l == nil {
		panic("thread: " + what + " on a forged token")
	}
	if l.used.Swap(true) {
		panic("thread: " + what + " on a spent token")
	}
}

// TokenParts is a thread's startup token with its two capability axes
// tracked in the type. Values are small and copyable; the terminal
// operations guard against stale copies at runtime.
type TokenParts[M MsgState, F FlagState] struct {
	in    InThread
	latch *tokenLatch
}

// StartToken is what every entry point receives: both capabilities intact.
type StartToken = TokenParts[MsgsIntact, FlagsIntact]

// InThread extracts the copyable thread-context witness.
func (t TokenParts[M, F]) InThread() InThread { return t.in }

// PID returns the owning thread's identifier.
func (t TokenParts[M, F]) PID() KernelPID { return t.in.pid }

func newStartToken(raw int16) StartToken {
	return StartToken{in: InThread{pid: KernelPID{pid: raw}}, latch: &tokenLatch{}}
}

// NoConfiguredMessages is the detached message-queue capability: proof that
// this thread has no queue installed yet. Installing one claims it.
type NoConfiguredMessages struct {
	pid   KernelPID
	latch *tokenLatch
}

// Claim consumes the capability and returns the owning identifier. Called
// exactly once, by whatever installs the thread's message queue.
func (c NoConfiguredMessages) Claim() KernelPID {
	c.latch.consume("message-queue capability claim")
	return c.pid
}

// PID returns the owning identifier without consuming the capability.
func (c NoConfiguredMessages) PID() KernelPID { return c.pid }

// FlagSemantics is the detached flag-receiver capability, split off a token
// by TakeFlagSemantics. Attaching a receiver claims it.
type FlagSemantics struct {
	pid   KernelPID
	latch *tokenLatch
}

// Claim consumes the capability and returns the owning identifier.
func (c FlagSemantics) Claim() KernelPID {
	c.latch.consume("flag-receiver capability claim")
	return c.pid
}

// PID returns the owning identifier without consuming the capability.
func (c FlagSemantics) PID() KernelPID { return c.pid }

// TakeMsgSemantics splits the message-queue capability off the token. The
// returned token can no longer terminate the thread until the capability
// comes back via ReturnMsgSemantics.
func TakeMsgSemantics[F FlagState](t TokenParts[MsgsIntact, F]) (TokenParts[MsgsTaken, F], NoConfiguredMessages) {
	rest := TokenParts[MsgsTaken, F]{in: t.in, latch: t.latch}
	return rest, NoConfiguredMessages{pid: t.in.pid, latch: &tokenLatch{}}
}

// ReturnMsgSemantics reunites an unclaimed message-queue capability with
// its token. Capabilities are not transferable between threads; mixing
// tokens panics.
func ReturnMsgSemantics[F FlagState](t TokenParts[MsgsTaken, F], c NoConfiguredMessages) TokenParts[MsgsIntact, F] {
	c.latch.consume("message-queue capability return")
	if c.pid != t.in.pid {
		panic("thread: capability returned to a different thread's token")
	}
	return TokenParts[MsgsIntact, F]{in: t.in, latch: t.latch}
}

// TakeFlagSemantics splits the flag-receiver capability off the token.
func TakeFlagSemantics[M MsgState](t TokenParts[M, FlagsIntact]) (TokenParts[M, FlagsTaken], FlagSemantics) {
	rest := TokenParts[M, FlagsTaken]{in: t.in, latch: t.latch}
	return rest, FlagSemantics{pid: t.in.pid, latch: &tokenLatch{}}
}

// EndToken is the proof of orderly shutdown an entry point must return.
// Only Termination produces a genuine one; the spawn machinery panics on a
// zero-value forgery.
type EndToken struct {
	ok bool
}

// Termination ends the token protocol and produces the thread's EndToken.
// It requires the message-queue capability to be intact: a thread whose
// stack still hosts a live queue must not exit, so an installed queue
// removes the ability to terminate at the type level. Taken-but-unclaimed
// capabilities are simply forfeited here.
func Termination[F FlagState](t TokenParts[MsgsIntact, F]) EndToken {
	t.latch.consume("termination")
	return EndToken{ok: true}
}

// ValueInThread pairs a value with the thread-context witness it was
// produced under.
type ValueInThread[T any] struct {
	Value T

	in InThread
}

// Promote tags a value with the calling thread's context witness.
func Promote[T any](in InThread, v T) ValueInThread[T] {
	return ValueInThread[T]{Value: v, in: in}
}

// InThread returns the witness the value was tagged with.
func (v ValueInThread[T]) InThread() InThread { return v.in }

// TerminationToken carries a result value out of a finished thread
// together with its EndToken. Entry points used with SpawnForValue return
// one instead of a bare EndToken.
type TerminationToken[T any] struct {
	value T
	end   EndToken
}

// TerminateWith is Termination plus a result value.
func TerminateWith[T any, F FlagState](t TokenParts[MsgsIntact, F], v T) TerminationToken[T] {
	return TerminationToken[T]{value: v, end: Termination(t)}
}
