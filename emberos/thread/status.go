package thread

import "ember/emberos/internal/kern"

// Status is a point-in-time projection of a thread's scheduler state. It is
// informational only: by the time the caller looks at it, the thread may
// already be somewhere else.
type Status uint8

const (
	StatusStopped Status = iota
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

	// StatusOther stands in for any raw code the decode table does not
	// know, so a backend growing new states degrades gracefully instead
	// of failing.
	StatusOther
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusSleeping:
		return "sleeping"
	case StatusMutexBlocked:
		return "mutex-blocked"
	case StatusReceiveBlocked:
		return "receive-blocked"
	case StatusSendBlocked:
		return "send-blocked"
	case StatusReplyBlocked:
		return "reply-blocked"
	case StatusFlagBlockedAny:
		return "flag-blocked-any"
	case StatusFlagBlockedAll:
		return "flag-blocked-all"
	case StatusMboxBlocked:
		return "mbox-blocked"
	case StatusRunning:
		return "running"
	case StatusPending:
		return "pending"
	default:
		return "other"
	}
}

// Running reports whether the thread holds or is queued for the CPU.
func (s Status) Running() bool {
	return s == StatusRunning || s == StatusPending
}

func decodeStatus(raw int32) Status {
	if s, ok := statusTable[raw]; ok {
		return s
	}
	return StatusOther
}

// Status returns the named state of the referenced thread, or
// ErrNoSuchThread when the slot is vacant. The not-found sentinel is
// checked before decoding so it can never leak through as a state.
func (p KernelPID) Status() (Status, error) {
	raw := kern.Status(p.pid)
	if raw == kern.StatusNotFound() {
		return 0, ErrNoSuchThread
	}
	return decodeStatus(raw), nil
}

// Name returns the thread's human-readable name. Absence of a name is not
// an error: a vacant slot and a nameless live thread both report false.
func (p KernelPID) Name() (string, bool) {
	return kern.Name(p.pid)
}

// Priority returns the thread's numeric priority; lower is more urgent.
func (p KernelPID) Priority() (uint8, error) {
	prio, ok := kern.Priority(p.pid)
	if !ok {
		return 0, ErrNoSuchThread
	}
	return prio, nil
}

// Wakeup rouses the referenced thread from Sleep. Waking a live thread that
// is not sleeping succeeds as a no-op; only a vacant slot is an error.
func (p KernelPID) Wakeup() error {
	if !kern.Wakeup(p.pid) {
		return ErrNoSuchThread
	}
	return nil
}
