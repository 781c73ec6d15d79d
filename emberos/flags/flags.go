// Package flags implements thread flags: a 16-bit mask of events per
// thread, settable from anywhere, waitable only by the owning thread. The
// receiver is attached exactly once, paid for with the FlagSemantics
// capability from the startup token.
package flags

import (
	"errors"
	"sync"

	"ember/emberos/internal/kern"
	"ember/emberos/thread"
)

// Mask selects one or more flags.
type Mask uint16

// ErrNoReceiver reports a Set aimed at a thread that never attached a
// flag receiver.
var ErrNoReceiver = errors.New("flags: target has no flag receiver")

// Receiver is a thread's attached flag state. Only the owning thread may
// wait on it; anyone may Set flags toward its thread.
type Receiver struct {
	pid thread.KernelPID

	mu      sync.Mutex
	pending Mask
	changed chan struct{} // closed and replaced on every Set
}

var (
	mu        sync.Mutex
	receivers = map[int16]*Receiver{}
)

// Attach creates the calling thread's flag receiver, consuming the
// one-time capability.
func Attach(c thread.FlagSemantics) *Receiver {
	pid := c.Claim()
	r := &Receiver{pid: pid, changed: make(chan struct{})}

	mu.Lock()
	receivers[pid.Raw()] = r
	mu.Unlock()
	return r
}

// Set raises the flags in m on the target thread and wakes its waiter if
// the new state satisfies it. Never blocks; safe from interrupt context.
func Set(to thread.KernelPID, m Mask) error {
	mu.Lock()
	r := receivers[to.Raw()]
	mu.Unlock()
	if r == nil {
		return ErrNoReceiver
	}

	r.mu.Lock()
	r.pending |= m
	close(r.changed)
	r.changed = make(chan struct{})
	r.mu.Unlock()
	return nil
}

// WaitAny parks the calling thread until at least one flag in m is raised,
// then clears and returns the raised subset.
func (r *Receiver) WaitAny(in thread.InThread, m Mask) Mask {
	return r.wait(in, m, false)
}

// WaitAll parks the calling thread until every flag in m is raised, then
// clears and returns them.
func (r *Receiver) WaitAll(in thread.InThread, m Mask) Mask {
	return r.wait(in, m, true)
}

func (r *Receiver) wait(in thread.InThread, m Mask, all bool) Mask {
	self := thread.Current(in).Raw()
	reason := kern.BlockFlagAny
	if all {
		reason = kern.BlockFlagAll
	}

	blocked := false
	r.mu.Lock()
	for {
		got := r.pending & m
		if (all && got == m) || (!all && got != 0) {
			r.pending &^= got
			r.mu.Unlock()
			if blocked {
				kern.Unblock(self)
			}
			return got
		}
		changed := r.changed
		r.mu.Unlock()

		if !blocked {
			kern.Block(self, reason)
			blocked = true
		}
		<-changed
		r.mu.Lock()
	}
}
