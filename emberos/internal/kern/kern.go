// Package kern selects the low-level thread backend at build time and
// re-exports one uniform surface for it. Exactly one backend is linked in:
// the thread-control-block table by default, the native registry with the
// ember_native tag. Callers never branch on which one is active.
package kern

// BlockReason names why a thread is parked, independent of any backend's
// raw status encoding.
type BlockReason uint8

const (
	BlockMutex BlockReason = iota + 1
	BlockReceive
	BlockSend
	BlockReply
	BlockFlagAny
	BlockFlagAll
	BlockMbox
)

// Stack describes a thread's stack region. Start is an opaque numeric
// token, not a dereferenceable address.
type Stack struct {
	Start uintptr
	Size  int
	Free  int
}

// Backend is the contract both low-level thread data sources implement.
type Backend interface {
	First() int16
	Last() int16
	IsValid(pid int16) bool

	// Status returns the backend's raw status code for pid, or the
	// StatusNotFound sentinel when no live thread has that identifier.
	Status(pid int16) int32
	StatusNotFound() int32

	Name(pid int16) (string, bool)
	Priority(pid int16) (uint8, bool)
	Wakeup(pid int16) bool
	Sleep(pid int16)

	// Block publishes why pid is parked; Unblock reverts it to running.
	Block(pid int16, why BlockReason)
	Unblock(pid int16)

	Spawn(name string, prio uint8, stackBytes int, body func(pid int16)) (int16, error)

	StackInfo(pid int16) (Stack, bool)
	StackInfoAvailable() bool
	UseStack(pid int16, n int)
}

var active Backend = defaultBackend()

// Use swaps the active backend and returns the previous one. Test hook.
func Use(b Backend) Backend {
	old := active
	active = b
	return old
}

func First() int16                      { return active.First() }
func Last() int16                       { return active.Last() }
func IsValid(pid int16) bool            { return active.IsValid(pid) }
func Status(pid int16) int32            { return active.Status(pid) }
func StatusNotFound() int32             { return active.StatusNotFound() }
func Name(pid int16) (string, bool)     { return active.Name(pid) }
func Priority(pid int16) (uint8, bool)  { return active.Priority(pid) }
func Wakeup(pid int16) bool             { return active.Wakeup(pid) }
func Sleep(pid int16)                   { active.Sleep(pid) }
func Block(pid int16, why BlockReason)  { active.Block(pid, why) }
func Unblock(pid int16)                 { active.Unblock(pid) }
func StackInfo(pid int16) (Stack, bool) { return active.StackInfo(pid) }
func StackInfoAvailable() bool          { return active.StackInfoAvailable() }
func UseStack(pid int16, n int)         { active.UseStack(pid, n) }

func Spawn(name string, prio uint8, stackBytes int, body func(pid int16)) (int16, error) {
	return active.Spawn(name, prio, stackBytes, body)
}
