// Package msg provides per-thread message queues, the one-time setup the
// startup token protocol guards. A thread installs its queue exactly once
// by surrendering the NoConfiguredMessages capability; the queue then lives
// until the thread does, which the token protocol guarantees is forever.
package msg

import (
	"errors"
	"sync"

	"ember/emberos/internal/kern"
	"ember/emberos/thread"
)

// envelopeBytes is the per-slot stack cost accounted when a queue is
// installed on a thread's stack.
const envelopeBytes = 16

var (
	// ErrNoQueue reports that the addressed thread never installed a
	// message queue. Queue-less rendezvous delivery is not offered.
	ErrNoQueue = errors.New("msg: target has no message queue")

	// ErrWouldBlock is the non-blocking variants' answer to a full
	// queue.
	ErrWouldBlock = errors.New("msg: queue full")

	// ErrNotAwaited reports a Reply to a message nobody is waiting on.
	ErrNotAwaited = errors.New("msg: message was not sent with SendReceive")
)

// Message is a fixed-size message envelope. From is filled in by the send
// path; it is the zero KernelPID for interrupt-context sends.
type Message struct {
	From  thread.KernelPID
	Kind  uint16
	Value uint32
	Ptr   any

	reply chan Message
}

type queue struct {
	ch chan Message
}

var (
	mu     sync.Mutex
	queues = map[int16]*queue{}
)

// Install creates the calling thread's message queue with the given number
// of slots. It consumes the one-time capability, so the type system already
// rules out a second queue; the capability's own latch catches forged
// copies.
func Install(c thread.NoConfiguredMessages, slots int) {
	if slots < 1 {
		slots = 1
	}
	pid := c.Claim()

	mu.Lock()
	queues[pid.Raw()] = &queue{ch: make(chan Message, slots)}
	mu.Unlock()

	// The queue notionally lives on the owning thread's stack.
	kern.UseStack(pid.Raw(), slots*envelopeBytes)
}

func lookup(pid int16) *queue {
	mu.Lock()
	defer mu.Unlock()
	return queues[pid]
}

// Send delivers m to the target's queue, parking the caller as
// send-blocked while the queue is full. Thread context only.
func Send(in thread.InThread, to thread.KernelPID, m Message) error {
	q := lookup(to.Raw())
	if q == nil {
		return ErrNoQueue
	}
	m.From = thread.Current(in)

	select {
	case q.ch <- m:
		return nil
	default:
	}

	self := thread.Current(in).Raw()
	kern.Block(self, kern.BlockSend)
	q.ch <- m
	kern.Unblock(self)
	return nil
}

// TrySend delivers m without blocking.
func TrySend(in thread.InThread, to thread.KernelPID, m Message) error {
	q := lookup(to.Raw())
	if q == nil {
		return ErrNoQueue
	}
	m.From = thread.Current(in)
	select {
	case q.ch <- m:
		return nil
	default:
		return ErrWouldBlock
	}
}

// TrySendFromISR is the only send legal in interrupt context. It never
// blocks; a full queue drops the message with ErrWouldBlock. From stays
// zero because interrupts have no thread identity.
func TrySendFromISR(_ thread.InIsr, to thread.KernelPID, m Message) error {
	q := lookup(to.Raw())
	if q == nil {
		return ErrNoQueue
	}
	m.From = thread.KernelPID{}
	select {
	case q.ch <- m:
		return nil
	default:
		return ErrWouldBlock
	}
}

// Receive takes the next message from the calling thread's own queue,
// parking as receive-blocked while it is empty.
func Receive(in thread.InThread) (Message, error) {
	self := thread.Current(in)
	q := lookup(self.Raw())
	if q == nil {
		return Message{}, ErrNoQueue
	}

	select {
	case m := <-q.ch:
		return m, nil
	default:
	}

	kern.Block(self.Raw(), kern.BlockReceive)
	m := <-q.ch
	kern.Unblock(self.Raw())
	return m, nil
}

// TryReceive takes the next message without blocking.
func TryReceive(in thread.InThread) (Message, bool) {
	q := lookup(thread.Current(in).Raw())
	if q == nil {
		return Message{}, false
	}
	select {
	case m := <-q.ch:
		return m, true
	default:
		return Message{}, false
	}
}

// SendReceive sends m and parks as reply-blocked until the receiver
// answers it with Reply. The reply slot rides along inside the envelope,
// so no queue is needed on the sending side.
func SendReceive(in thread.InThread, to thread.KernelPID, m Message) (Message, error) {
	m.reply = make(chan Message, 1)
	if err := Send(in, to, m); err != nil {
		return Message{}, err
	}

	self := thread.Current(in).Raw()
	kern.Block(self, kern.BlockReply)
	rep := <-m.reply
	kern.Unblock(self)
	return rep, nil
}

// Reply answers a message received from SendReceive. Replying to a plain
// Send fails with ErrNotAwaited.
func Reply(in thread.InThread, req Message, rep Message) error {
	if req.reply == nil {
		return ErrNotAwaited
	}
	rep.From = thread.Current(in)
	req.reply <- rep
	return nil
}
