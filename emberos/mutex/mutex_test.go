package mutex

import (
	"errors"
	"testing"
	"time"

	"ember/emberos/thread"
)

func TestTryLock(t *testing.T) {
	var m Mutex
	if !m.TryLock() {
		t.Fatalf("expected a fresh mutex to be free")
	}
	if m.TryLock() {
		t.Fatalf("expected a held mutex to refuse")
	}
	m.Unlock()
	if !m.TryLock() {
		t.Fatalf("expected an unlocked mutex to be free again")
	}
	m.Unlock()
}

func TestLockSerializes(t *testing.T) {
	var m Mutex
	counter := 0

	thread.WithScope(func(s *thread.Scope) {
		for range 4 {
			_, err := s.Spawn("inc", 4, 0, func(tok thread.StartToken) thread.EndToken {
				for range 100 {
					m.Lock(tok.InThread())
					counter++
					m.Unlock()
				}
				return thread.Termination(tok)
			})
			if err != nil {
				t.Fatalf("unexpected spawn error: %v", err)
			}
		}
	})

	if counter != 400 {
		t.Fatalf("expected 400, got %d", counter)
	}
}

func TestContentionIsVisibleInStatus(t *testing.T) {
	var m Mutex
	release := make(chan struct{})
	holding := make(chan struct{})

	_, err := thread.Spawn("holder", 4, 0, func(tok thread.StartToken) thread.EndToken {
		m.Lock(tok.InThread())
		close(holding)
		<-release
		m.Unlock()
		return thread.Termination(tok)
	})
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}
	<-holding

	blocked, err := thread.Spawn("blocked", 4, 0, func(tok thread.StartToken) thread.EndToken {
		m.Lock(tok.InThread())
		m.Unlock()
		return thread.Termination(tok)
	})
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		st, err := blocked.Status()
		if err == nil && st == thread.StatusMutexBlocked {
			break
		}
		if errors.Is(err, thread.ErrNoSuchThread) || time.Now().After(deadline) {
			t.Fatalf("expected the waiter to show as mutex-blocked, got %v err=%v", st, err)
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
}
