//go:build !ember_native

package kern

import "ember/emberos/internal/kern/ktable"

func defaultBackend() Backend {
	return tableBackend{t: ktable.Default()}
}

// tableBackend adapts the thread-control-block table to the Backend
// contract, translating block reasons into the table's raw codes.
type tableBackend struct {
	t *ktable.Table
}

func (b tableBackend) First() int16                     { return b.t.First() }
func (b tableBackend) Last() int16                      { return b.t.Last() }
func (b tableBackend) IsValid(pid int16) bool           { return b.t.IsValid(pid) }
func (b tableBackend) Status(pid int16) int32           { return b.t.Status(pid) }
func (b tableBackend) StatusNotFound() int32            { return ktable.StatusNotFound }
func (b tableBackend) Name(pid int16) (string, bool)    { return b.t.Name(pid) }
func (b tableBackend) Priority(pid int16) (uint8, bool) { return b.t.Priority(pid) }
func (b tableBackend) Wakeup(pid int16) bool            { return b.t.Wakeup(pid) }
func (b tableBackend) Sleep(pid int16)                  { b.t.Sleep(pid) }
func (b tableBackend) StackInfoAvailable() bool         { return b.t.StackInfoAvailable() }
func (b tableBackend) UseStack(pid int16, n int)        { b.t.UseStack(pid, n) }

func (b tableBackend) Block(pid int16, why BlockReason) {
	b.t.SetStatus(pid, tableBlockStatus(why))
}

func (b tableBackend) Unblock(pid int16) {
	b.t.SetStatus(pid, ktable.StatusRunning)
}

func (b tableBackend) Spawn(name string, prio uint8, stackBytes int, body func(pid int16)) (int16, error) {
	return b.t.Spawn(name, prio, stackBytes, body)
}

func (b tableBackend) StackInfo(pid int16) (Stack, bool) {
	info, ok := b.t.StackInfo(pid)
	if !ok {
		return Stack{}, false
	}
	return Stack{Start: info.Start, Size: info.Size, Free: info.Free}, true
}

func tableBlockStatus(why BlockReason) int32 {
	switch why {
	case BlockMutex:
		return ktable.StatusMutexBlocked
	case BlockReceive:
		return ktable.StatusReceiveBlocked
	case BlockSend:
		return ktable.StatusSendBlocked
	case BlockReply:
		return ktable.StatusReplyBlocked
	case BlockFlagAny:
		return ktable.StatusFlagBlockedAny
	case BlockFlagAll:
		return ktable.StatusFlagBlockedAll
	case BlockMbox:
		return ktable.StatusMboxBlocked
	default:
		return ktable.StatusRunning
	}
}
