package thread

import (
	"errors"

	"ember/emberos/internal/kern"
)

// ErrStackStatsUnavailable reports that the running build does not measure
// stacks. Distinct from ErrNoSuchThread: the thread exists, the data does
// not.
var ErrStackStatsUnavailable = errors.New("thread: stack statistics not compiled in")

// StackStats describes a live thread's stack region.
type StackStats struct {
	// Start is an opaque numeric token identifying the region, stable
	// for the thread's lifetime. It is not a dereferenceable address.
	Start uintptr

	// Size is the region's total extent in bytes.
	Size int

	// Free is the measured untouched span. Size-Free is a lower bound on
	// the bytes ever used, never an exact figure.
	Free int
}

// Used returns the high-water usage bound, Size-Free.
func (s StackStats) Used() int { return s.Size - s.Free }

// StackStats measures the referenced thread's stack. Existence is checked
// first: a vacant slot reports ErrNoSuchThread even on builds where
// measurement is compiled out, which would otherwise answer
// ErrStackStatsUnavailable for every identifier alike.
func (p KernelPID) StackStats() (StackStats, error) {
	info, ok := kern.StackInfo(p.pid)
	if !ok {
		return StackStats{}, ErrNoSuchThread
	}
	if !kern.StackInfoAvailable() {
		return StackStats{}, ErrStackStatsUnavailable
	}
	return StackStats{Start: info.Start, Size: info.Size, Free: info.Free}, nil
}
