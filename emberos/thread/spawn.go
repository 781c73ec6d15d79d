package thread

import (
	"errors"
	"fmt"
	"sync"

	"ember/emberos/internal/kern"
)

// Main is a thread entry point. It receives the StartToken and must hand
// back an EndToken, which forces it through Termination (or to never
// return at all; a service loop that runs forever is fine).
type Main func(StartToken) EndToken

var errNilEntry = errors.New("thread: nil entry point")

// Spawn starts a detached thread and returns its identifier. The stack
// size is a hint; backends without real stacks ignore it.
func Spawn(name string, prio uint8, stackBytes int, main Main) (KernelPID, error) {
	if main == nil {
		return KernelPID{}, errNilEntry
	}
	pid, err := kern.Spawn(name, prio, stackBytes, func(raw int16) {
		runMain(raw, main)
	})
	if err != nil {
		return KernelPID{}, fmt.Errorf("thread: spawn %q: %w", name, err)
	}
	return KernelPID{pid: pid}, nil
}

func runMain(raw int16, main Main) {
	defer func() {
		if v := recover(); v != nil {
			triggerCrash(CrashInfo{PID: KernelPID{pid: raw}, Value: v})
			panic(v)
		}
	}()
	end := main(newStartToken(raw))
	if !end.ok {
		panic("thread: entry point returned a forged EndToken")
	}
}

// joiner is anything the scope can wait on.
type joiner interface {
	Join()
}

// CountedThread is a thread tracked by a Scope. Join blocks until its
// entry point has returned.
type CountedThread struct {
	pid  KernelPID
	done chan struct{}
}

// PID returns the tracked thread's identifier.
func (c *CountedThread) PID() KernelPID { return c.pid }

// Join waits for the thread to finish.
func (c *CountedThread) Join() { <-c.done }

// CountedValue is a value-bearing thread tracked by a Scope.
type CountedValue[T any] struct {
	pid   KernelPID
	done  chan struct{}
	value T
}

// PID returns the tracked thread's identifier.
func (c *CountedValue[T]) PID() KernelPID { return c.pid }

// Join waits for the thread to finish, discarding the value.
func (c *CountedValue[T]) Join() { <-c.done }

// Wait waits for the thread to finish and returns its result.
func (c *CountedValue[T]) Wait() T {
	<-c.done
	return c.value
}

// Scope tracks a group of threads so their spawner can outlive them
// deliberately rather than by accident. Obtain one through WithScope.
type Scope struct {
	mu      sync.Mutex
	tracked []joiner
}

// WithScope runs fn with a fresh scope and joins every thread spawned in
// it before returning.
func WithScope(fn func(*Scope)) {
	s := &Scope{}
	defer s.wait()
	fn(s)
}

func (s *Scope) wait() {
	s.mu.Lock()
	tracked := s.tracked
	s.tracked = nil
	s.mu.Unlock()
	for _, j := range tracked {
		j.Join()
	}
}

func (s *Scope) track(j joiner) {
	s.mu.Lock()
	s.tracked = append(s.tracked, j)
	s.mu.Unlock()
}

// Spawn starts a tracked thread inside the scope.
func (s *Scope) Spawn(name string, prio uint8, stackBytes int, main Main) (*CountedThread, error) {
	if main == nil {
		return nil, errNilEntry
	}
	c := &CountedThread{done: make(chan struct{})}
	pid, err := kern.Spawn(name, prio, stackBytes, func(raw int16) {
		defer close(c.done)
		runMain(raw, main)
	})
	if err != nil {
		return nil, fmt.Errorf("thread: spawn %q: %w", name, err)
	}
	c.pid = KernelPID{pid: pid}
	s.track(c)
	return c, nil
}

// SpawnForValue starts a tracked thread whose entry point produces a
// result. The result is read with CountedValue.Wait after the thread has
// terminated through TerminateWith.
func SpawnForValue[T any](s *Scope, name string, prio uint8, stackBytes int, main func(StartToken) TerminationToken[T]) (*CountedValue[T], error) {
	if main == nil {
		return nil, errNilEntry
	}
	c := &CountedValue[T]{done: make(chan struct{})}
	pid, err := kern.Spawn(name, prio, stackBytes, func(raw int16) {
		defer close(c.done)
		defer func() {
			if v := recover(); v != nil {
				triggerCrash(CrashInfo{PID: KernelPID{pid: raw}, Value: v})
				panic(v)
			}
		}()
		tt := main(newStartToken(raw))
		if !tt.end.ok {
			panic("thread: entry point returned a forged termination token")
		}
		c.value = tt.value
	})
	if err != nil {
		return nil, fmt.Errorf("thread: spawn %q: %w", name, err)
	}
	c.pid = KernelPID{pid: pid}
	s.track(c)
	return c, nil
}
