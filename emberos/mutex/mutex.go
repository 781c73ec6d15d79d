// Package mutex provides a kernel mutex whose contention is visible in the
// owner's scheduler status: a thread stuck in Lock shows up as
// mutex-blocked in process listings.
package mutex

import (
	"sync"

	"ember/emberos/internal/kern"
	"ember/emberos/thread"
)

// Mutex is a mutual exclusion lock. The zero value is unlocked. Must not
// be copied after first use.
type Mutex struct {
	mu sync.Mutex
}

// Lock acquires the mutex, parking the calling thread as mutex-blocked
// while another holder is in the way. Thread context only.
func (m *Mutex) Lock(in thread.InThread) {
	if m.mu.TryLock() {
		return
	}
	self := thread.Current(in).Raw()
	kern.Block(self, kern.BlockMutex)
	m.mu.Lock()
	kern.Unblock(self)
}

// TryLock acquires the mutex only if it is free. Never blocks, so no
// context witness is needed.
func (m *Mutex) TryLock() bool {
	return m.mu.TryLock()
}

// Unlock releases the mutex.
func (m *Mutex) Unlock() {
	m.mu.Unlock()
}
