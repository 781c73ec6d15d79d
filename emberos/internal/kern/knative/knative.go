// Package knative is the native reimplementation of the thread backend: no
// thread-control-block table, just a fixed registry of goroutine-backed
// records. Its identifier range and raw status encoding differ from the
// table backend; the wrapper's decode table absorbs the difference.
package knative

import (
	"errors"
	"sync"
)

// PIDs are zero-based slot numbers here.
const (
	PidFirst int16 = 0

	MaxThreads = 8
)

// Raw status codes. Zero doubles as the "no such thread" answer, so live
// states start at 1.
const (
	StatusInvalid int32 = iota
	StatusRunning
	StatusPending
	StatusStopped
	StatusSleeping
	StatusMutexBlocked
	StatusReceiveBlocked
	StatusSendBlocked
	StatusReplyBlocked
	StatusFlagBlockedAny
	StatusFlagBlockedAll
	StatusMboxBlocked
)

var ErrNoFreeSlot = errors.New("knative: no free thread slot")

type rec struct {
	present bool
	name    string
	prio    uint8
	status  int32
	wake    chan struct{}
}

// Registry is the native thread backend.
type Registry struct {
	mu    sync.Mutex
	slots []rec
}

// New creates a registry with n slots, PIDs 0..n-1.
func New(n int) *Registry {
	r := &Registry{slots: make([]rec, n)}
	for i := range r.slots {
		r.slots[i].wake = make(chan struct{}, 1)
	}
	return r
}

var defaultRegistry = New(MaxThreads)

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

func (r *Registry) First() int16 { return PidFirst }
func (r *Registry) Last() int16  { return PidFirst + int16(len(r.slots)) - 1 }

func (r *Registry) IsValid(pid int16) bool {
	return pid >= r.First() && pid <= r.Last()
}

func (r *Registry) slot(pid int16) *rec {
	if !r.IsValid(pid) {
		return nil
	}
	return &r.slots[pid-PidFirst]
}

// Status returns the raw status code, or StatusInvalid for vacant slots and
// out-of-range identifiers.
func (r *Registry) Status(pid int16) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(pid)
	if s == nil || !s.present {
		return StatusInvalid
	}
	return s.status
}

// Name looks up the occupant's name for real; the registry keeps it for the
// thread's whole lifetime.
func (r *Registry) Name(pid int16) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(pid)
	if s == nil || !s.present || s.name == "" {
		return "", false
	}
	return s.name, true
}

func (r *Registry) Priority(pid int16) (uint8, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(pid)
	if s == nil || !s.present {
		return 0, false
	}
	return s.prio, true
}

func (r *Registry) Wakeup(pid int16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(pid)
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

func (r *Registry) Sleep(pid int16) {
	r.mu.Lock()
	s := r.slot(pid)
	if s == nil || !s.present {
		r.mu.Unlock()
		return
	}
	s.status = StatusSleeping
	wake := s.wake
	r.mu.Unlock()

	<-wake

	r.mu.Lock()
	if s.present {
		s.status = StatusRunning
	}
	r.mu.Unlock()
}

// SetStatus publishes a raw status; StatusRunning clears a parked state.
func (r *Registry) SetStatus(pid int16, raw int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(pid)
	if s == nil || !s.present {
		return
	}
	s.status = raw
}

// Spawn claims a slot and runs body on a new goroutine. The stack size hint
// is ignored: goroutine stacks are managed by the runtime.
func (r *Registry) Spawn(name string, prio uint8, stackBytes int, body func(pid int16)) (int16, error) {
	_ = stackBytes

	r.mu.Lock()
	idx := -1
	for i := range r.slots {
		if !r.slots[i].present {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return -1, ErrNoFreeSlot
	}

	s := &r.slots[idx]
	s.present = true
	s.name = name
	s.prio = prio
	s.status = StatusPending
	select {
	case <-s.wake:
	default:
	}
	pid := PidFirst + int16(idx)
	r.mu.Unlock()

	go func() {
		r.mu.Lock()
		if s.present {
			s.status = StatusRunning
		}
		r.mu.Unlock()

		body(pid)

		r.mu.Lock()
		s.present = false
		s.name = ""
		s.status = StatusStopped
		r.mu.Unlock()
	}()

	return pid, nil
}
