// Package thread creates, inspects and signals EmberOS threads.
//
// # Identifiers
//
// A KernelPID is a validated, non-owning reference to a thread slot. It is
// proven in-range at construction and never afterwards: the referenced
// thread may terminate and its slot be reused at any instant. Every query
// through it therefore tolerates the target vanishing and reports
// ErrNoSuchThread instead of reading stale kernel state.
//
// # Tokens
//
// Thread entry points receive a StartToken: proof that execution is inside a
// freshly started thread and that the one-time setup operations (installing
// a message queue, attaching a flag receiver) have not yet happened. Those
// operations consume the matching capability out of the token parts, so a
// second call does not type-check. An entry point must produce an EndToken
// to return, and only Termination hands one out. Termination in turn
// requires the message-queue capability to be intact, because a thread
// whose stack hosts a live queue must not exit.
//
// Two backends provide the identifier, status and stack data behind this
// package: the thread-control-block table, and a native registry selected
// with the ember_native build tag. Both expose the same surface.
package thread

import (
	"errors"

	"ember/emberos/internal/kern"
)

// ErrNoSuchThread reports that an identifier denoted no live thread at the
// instant of the call. Always recoverable; never escalated.
var ErrNoSuchThread = errors.New("thread: no such thread")

// Current returns the calling thread's own identifier. It cannot fail: a
// running thread is valid by definition at the instant of the call.
func Current(in InThread) KernelPID { return in.pid }

// Sleep suspends the calling thread until something wakes its identifier
// up via KernelPID.Wakeup. Thread context only.
func Sleep(in InThread) { kern.Sleep(in.pid.pid) }
