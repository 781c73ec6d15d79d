package thread

import (
	"iter"
	"strconv"

	"ember/emberos/internal/kern"
)

// KernelPID identifies a thread slot. The zero value is deliberately
// useless; the only ways to obtain a working one are NewKernelPID, AllPIDs,
// Current and the spawn functions, all of which prove the identifier
// in-range first.
type KernelPID struct {
	pid int16
}

// NewKernelPID validates raw against the active backend's identifier range.
// Validation is about the range only; a valid identifier may still denote a
// vacant slot.
func NewKernelPID(raw int16) (KernelPID, bool) {
	if !kern.IsValid(raw) {
		return KernelPID{}, false
	}
	return KernelPID{pid: raw}, true
}

// Raw returns the numeric identifier, e.g. for logging or wire formats.
// Going back to a KernelPID requires NewKernelPID again.
func (p KernelPID) Raw() int16 { return p.pid }

func (p KernelPID) String() string {
	return "pid " + strconv.Itoa(int(p.pid))
}

// AllPIDs yields every identifier the backend could ever assign, vacant
// slots included, in ascending order. The sequence is cheap to restart and
// never touches per-thread state; pair it with Status and Name to build a
// process listing.
func AllPIDs() iter.Seq[KernelPID] {
	return func(yield func(KernelPID) bool) {
		last := kern.Last()
		for raw := kern.First(); ; raw++ {
			p, ok := NewKernelPID(raw)
			if !ok {
				// The backend said this range was assignable.
				panic("thread: backend rejected an identifier inside its own range")
			}
			if !yield(p) {
				return
			}
			if raw == last {
				return
			}
		}
	}
}
