//go:build ember_native

package kern

import "ember/emberos/internal/kern/knative"

func defaultBackend() Backend {
	return nativeBackend{r: knative.Default()}
}

// nativeBackend adapts the native registry to the Backend contract. It has
// no real stacks to introspect, so stack statistics are never available.
type nativeBackend struct {
	r *knative.Registry
}

func (b nativeBackend) First() int16                     { return b.r.First() }
func (b nativeBackend) Last() int16                      { return b.r.Last() }
func (b nativeBackend) IsValid(pid int16) bool           { return b.r.IsValid(pid) }
func (b nativeBackend) Status(pid int16) int32           { return b.r.Status(pid) }
func (b nativeBackend) StatusNotFound() int32            { return knative.StatusInvalid }
func (b nativeBackend) Name(pid int16) (string, bool)    { return b.r.Name(pid) }
func (b nativeBackend) Priority(pid int16) (uint8, bool) { return b.r.Priority(pid) }
func (b nativeBackend) Wakeup(pid int16) bool            { return b.r.Wakeup(pid) }
func (b nativeBackend) Sleep(pid int16)                  { b.r.Sleep(pid) }
func (b nativeBackend) StackInfoAvailable() bool         { return false }
func (b nativeBackend) UseStack(pid int16, n int)        {}

func (b nativeBackend) Block(pid int16, why BlockReason) {
	b.r.SetStatus(pid, nativeBlockStatus(why))
}

func (b nativeBackend) Unblock(pid int16) {
	b.r.SetStatus(pid, knative.StatusRunning)
}

func (b nativeBackend) Spawn(name string, prio uint8, stackBytes int, body func(pid int16)) (int16, error) {
	return b.r.Spawn(name, prio, stackBytes, body)
}

func (b nativeBackend) StackInfo(pid int16) (Stack, bool) {
	if b.r.Status(pid) == knative.StatusInvalid {
		return Stack{}, false
	}
	return Stack{}, true
}
