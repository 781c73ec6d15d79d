// Package ktable models the kernel's thread-control-block table: a fixed
// arena of slots indexed by PID, written only by the kernel side (spawn,
// exit, block, wake) and read concurrently by anyone holding an in-range
// identifier. A vacated slot answers with the not-found sentinel instead of
// stale data.
package ktable

import (
	"errors"
	"sync"
)

// PID space. Slot i of the table is PidFirst+i; 0 is reserved as the
// "undefined" identifier and -1 names interrupt context.
const (
	PidUndef int16 = 0
	PidISR   int16 = -1
	PidFirst int16 = 1

	MaxThreads = 16
)

// Raw scheduler status codes, in kernel order. These are the wire values of
// the table, not the public status enum; the wrapper keeps its own decode
// table.
const (
	StatusStopped int32 = iota
	StatusSleeping
	StatusMutexBlocked
	StatusReceiveBlocked
	StatusSendBlocked
	StatusReplyBlocked
	StatusFlagBlockedAny
	StatusFlagBlockedAll
	StatusMboxBlocked
	StatusRunning
	StatusPending
)

// StatusNotFound is returned for identifiers that denote no live thread.
const StatusNotFound int32 = -1

const (
	// CanaryByte fills a fresh stack region. Free-stack measurement walks
	// from the low end counting untouched canary bytes.
	CanaryByte = 0xA5

	DefaultStackBytes = 2048
	minStackBytes     = 256

	// spawnFrameBytes is the initial context frame scribbled at the high
	// end of a new thread's stack.
	spawnFrameBytes = 64

	// blockFrameBytes approximates the stack cost of parking a thread.
	blockFrameBytes = 32
)

// stackBase spaces the slots' simulated stack windows apart. The resulting
// addresses are opaque tokens for diagnostics, not dereferenceable memory.
const (
	stackBase   uintptr = 0x2000_0000
	stackWindow uintptr = 0x1_0000
)

var ErrTableFull = errors.New("ktable: no free thread slot")

// Info describes one thread's stack region.
type Info struct {
	Start uintptr
	Size  int
	Free  int
}

type tcb struct {
	present bool
	name    string
	prio    uint8
	status  int32
	stack   []byte
	touched int // bytes consumed from the high end
	wake    chan struct{}
}

// Table is a fixed-size thread-control-block arena.
type Table struct {
	mu    sync.Mutex
	slots []tcb
}

// New creates a table with n slots, PIDs PidFirst..PidFirst+n-1.
func New(n int) *Table {
	t := &Table{slots: make([]tcb, n)}
	for i := range t.slots {
		t.slots[i].wake = make(chan struct{}, 1)
	}
	return t
}

var defaultTable = New(MaxThreads)

// Default returns the process-wide table.
func Default() *Table { return defaultTable }

// First returns the lowest valid identifier.
func (t *Table) First() int16 { return PidFirst }

// Last returns the highest valid identifier.
func (t *Table) Last() int16 { return PidFirst + int16(len(t.slots)) - 1 }

// IsValid reports whether pid lies in the table's identifier range. It says
// nothing about whether a thread currently occupies the slot.
func (t *Table) IsValid(pid int16) bool {
	return pid >= t.First() && pid <= t.Last()
}

func (t *Table) slot(pid int16) *tcb {
	if !t.IsValid(pid) {
		return nil
	}
	return &t.slots[pid-PidFirst]
}

// Status returns the raw status code for pid, or StatusNotFound when the
// slot is vacant or the identifier is out of range.
func (t *Table) Status(pid int16) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(pid)
	if s == nil || !s.present {
		return StatusNotFound
	}
	return s.status
}

// Name returns the occupant's name. Vacant slots have none.
func (t *Table) Name(pid int16) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(pid)
	if s == nil || !s.present || s.name == "" {
		return "", false
	}
	return s.name, true
}

// Priority returns the occupant's priority.
func (t *Table) Priority(pid int16) (uint8, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(pid)
	if s == nil || !s.present {
		return 0, false
	}
	return s.prio, true
}

// Wakeup makes a sleeping thread runnable again. Waking a live thread that
// is not asleep is a no-op success; only a vacant slot fails.
func (t *Table) Wakeup(pid int16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(pid)
	if s == nil || !s.present {
		return false
	}
	if s.status == StatusSleeping {
		s.status = StatusPending
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	return true
}

// Sleep parks the calling thread until a Wakeup targets its identifier.
// Must be called on the goroutine that owns pid.
func (t *Table) Sleep(pid int16) {
	t.mu.Lock()
	s := t.slot(pid)
	if s == nil || !s.present {
		t.mu.Unlock()
		return
	}
	s.status = StatusSleeping
	t.touchLocked(s, blockFrameBytes)
	wake := s.wake
	t.mu.Unlock()

	<-wake

	t.mu.Lock()
	if s.present {
		s.status = StatusRunning
	}
	t.mu.Unlock()
}

// SetStatus publishes a raw status for pid. Used by blocking primitives
// (message queues, flags, mailboxes, mutexes) to report why a thread is
// parked; passing StatusRunning clears the parked state.
func (t *Table) SetStatus(pid int16, raw int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(pid)
	if s == nil || !s.present {
		return
	}
	s.status = raw
	if raw != StatusRunning {
		t.touchLocked(s, blockFrameBytes)
	}
}

// Spawn claims a free slot, initializes its stack region and runs body on a
// new goroutine. The slot is vacated when body returns.
func (t *Table) Spawn(name string, prio uint8, stackBytes int, body func(pid int16)) (int16, error) {
	if stackBytes < minStackBytes {
		stackBytes = minStackBytes
	}

	t.mu.Lock()
	idx := -1
	for i := range t.slots {
		if !t.slots[i].present {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return PidUndef, ErrTableFull
	}

	s := &t.slots[idx]
	s.present = true
	s.name = name
	s.prio = prio
	s.status = StatusPending
	s.stack = make([]byte, stackBytes)
	for i := range s.stack {
		s.stack[i] = CanaryByte
	}
	s.touched = 0
	t.touchLocked(s, spawnFrameBytes)
	// Drain any wake token left over from the slot's previous occupant.
	select {
	case <-s.wake:
	default:
	}
	pid := PidFirst + int16(idx)
	t.mu.Unlock()

	go func() {
		t.mu.Lock()
		if s.present {
			s.status = StatusRunning
		}
		t.mu.Unlock()

		body(pid)

		t.mu.Lock()
		s.present = false
		s.name = ""
		s.status = StatusStopped
		s.stack = nil
		s.touched = 0
		t.mu.Unlock()
	}()

	return pid, nil
}

// UseStack accounts n bytes of pid's stack as consumed, e.g. for a message
// queue installed on it.
func (t *Table) UseStack(pid int16, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(pid)
	if s == nil || !s.present {
		return
	}
	t.touchLocked(s, n)
}

func (t *Table) touchLocked(s *tcb, n int) {
	if n <= 0 || s.stack == nil {
		return
	}
	end := len(s.stack) - s.touched
	start := end - n
	if start < 0 {
		start = 0
	}
	for i := start; i < end; i++ {
		s.stack[i] = 0
	}
	s.touched = len(s.stack) - start
}

// StackInfoAvailable reports whether this build keeps stack statistics.
func (t *Table) StackInfoAvailable() bool { return stackInfoAvailable }

// StackInfo reports pid's stack region. The bool is false when the slot is
// vacant; availability of the data in a given build is a separate question,
// answered by StackInfoAvailable.
func (t *Table) StackInfo(pid int16) (Info, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(pid)
	if s == nil || !s.present {
		return Info{}, false
	}
	return Info{
		Start: stackBase + uintptr(pid-PidFirst)*stackWindow,
		Size:  len(s.stack),
		Free:  MeasureStackFree(s.stack),
	}, true
}

// MeasureStackFree counts the contiguous run of untouched canary bytes from
// the low end of a stack region. A thread that legitimately wrote the canary
// value onto its own stack inflates the count, so size-free is a lower bound
// on the bytes ever touched, never an exact figure.
func MeasureStackFree(stack []byte) int {
	free := 0
	for _, b := range stack {
		if b != CanaryByte {
			break
		}
		free++
	}
	return free
}
