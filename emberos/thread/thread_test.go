package thread

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"ember/emberos/internal/kern"
)

// fixtureBackend is a scripted Backend with a fixed identifier range and
// canned per-thread answers, so the wrapper's behavior can be pinned down
// without scheduling real threads. Spawned bodies run on their own
// goroutines and retire their slots concurrently with the test, so the
// maps are guarded like the real backends guard their slots.
type fixtureBackend struct {
	first, last int16

	mu       sync.Mutex
	statuses map[int16]int32
	names    map[int16]string
	prios    map[int16]uint8

	stacks       map[int16]kern.Stack
	stacksUsable bool

	woken []int16

	nextPid  int16
	spawnErr error
}

const fixtureNotFound int32 = -1

func newFixture() *fixtureBackend {
	return &fixtureBackend{
		first:    1,
		last:     4,
		statuses: map[int16]int32{},
		names:    map[int16]string{},
		prios:    map[int16]uint8{},
		stacks:   map[int16]kern.Stack{},
		nextPid:  1,
	}
}

func (f *fixtureBackend) First() int16 { return f.first }
func (f *fixtureBackend) Last() int16  { return f.last }

func (f *fixtureBackend) IsValid(pid int16) bool {
	return pid >= f.first && pid <= f.last
}

func (f *fixtureBackend) Status(pid int16) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw, ok := f.statuses[pid]; ok {
		return raw
	}
	return fixtureNotFound
}

func (f *fixtureBackend) StatusNotFound() int32 { return fixtureNotFound }

func (f *fixtureBackend) Name(pid int16) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.names[pid]
	return name, ok
}

func (f *fixtureBackend) Priority(pid int16) (uint8, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prio, ok := f.prios[pid]
	return prio, ok
}

func (f *fixtureBackend) Wakeup(pid int16) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.statuses[pid]; !ok {
		return false
	}
	f.woken = append(f.woken, pid)
	return true
}

func (f *fixtureBackend) Sleep(pid int16) {}

func (f *fixtureBackend) Block(pid int16, why kern.BlockReason) {}

func (f *fixtureBackend) Unblock(pid int16) {}

func (f *fixtureBackend) UseStack(pid int16, n int) {}

func (f *fixtureBackend) StackInfoAvailable() bool { return f.stacksUsable }

func (f *fixtureBackend) StackInfo(pid int16) (kern.Stack, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, live := f.statuses[pid]; !live {
		return kern.Stack{}, false
	}
	return f.stacks[pid], true
}

func (f *fixtureBackend) Spawn(name string, prio uint8, stackBytes int, body func(pid int16)) (int16, error) {
	if f.spawnErr != nil {
		return -1, f.spawnErr
	}
	f.mu.Lock()
	pid := f.nextPid
	f.nextPid++
	f.statuses[pid] = 1
	f.names[pid] = name
	f.prios[pid] = prio
	f.mu.Unlock()
	go func() {
		body(pid)
		f.mu.Lock()
		delete(f.statuses, pid)
		f.mu.Unlock()
	}()
	return pid, nil
}

// useFixture installs f for the duration of the test, along with a decode
// table matching its raw codes: 1 is running, 2 is sleeping.
func useFixture(t *testing.T, f *fixtureBackend) {
	t.Helper()
	old := kern.Use(f)
	oldTable := statusTable
	statusTable = map[int32]Status{
		1: StatusRunning,
		2: StatusSleeping,
	}
	t.Cleanup(func() {
		kern.Use(old)
		statusTable = oldTable
	})
}

func TestNewKernelPIDValidatesRange(t *testing.T) {
	useFixture(t, newFixture())

	if _, ok := NewKernelPID(0); ok {
		t.Fatalf("expected 0 to be rejected, got a valid identifier")
	}
	if _, ok := NewKernelPID(5); ok {
		t.Fatalf("expected 5 to be rejected, got a valid identifier")
	}
	p, ok := NewKernelPID(2)
	if !ok {
		t.Fatalf("expected 2 to validate")
	}
	if p.Raw() != 2 {
		t.Fatalf("expected raw 2, got %d", p.Raw())
	}
	if p.String() != "pid 2" {
		t.Fatalf("expected %q, got %q", "pid 2", p.String())
	}
}

func TestAllPIDsCoversWholeRange(t *testing.T) {
	useFixture(t, newFixture())

	var got []int16
	for p := range AllPIDs() {
		got = append(got, p.Raw())
	}
	want := []int16{1, 2, 3, 4}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAllPIDsStopsOnBreak(t *testing.T) {
	useFixture(t, newFixture())

	var got []int16
	for p := range AllPIDs() {
		got = append(got, p.Raw())
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []int16{1, 2}) {
		t.Fatalf("expected [1 2], got %v", got)
	}
}

func TestStatusDecoding(t *testing.T) {
	f := newFixture()
	f.statuses[1] = 1
	f.statuses[2] = 99
	useFixture(t, f)

	p, _ := NewKernelPID(1)
	s, err := p.Status()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StatusRunning {
		t.Fatalf("expected running, got %v", s)
	}

	// Unknown raw codes degrade to the catch-all, never to an error.
	p, _ = NewKernelPID(2)
	s, err = p.Status()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StatusOther {
		t.Fatalf("expected other, got %v", s)
	}

	// Vacant slot answers the sentinel, which must become the error and
	// never reach the decode table.
	p, _ = NewKernelPID(3)
	if _, err := p.Status(); !errors.Is(err, ErrNoSuchThread) {
		t.Fatalf("expected ErrNoSuchThread, got %v", err)
	}
}

func TestNameAndPriority(t *testing.T) {
	f := newFixture()
	f.statuses[1] = 1
	f.names[1] = "idle"
	f.prios[1] = 15
	useFixture(t, f)

	p, _ := NewKernelPID(1)
	name, ok := p.Name()
	if !ok || name != "idle" {
		t.Fatalf("expected name idle, got %q ok=%v", name, ok)
	}
	prio, err := p.Priority()
	if err != nil || prio != 15 {
		t.Fatalf("expected priority 15, got %d err=%v", prio, err)
	}

	vacant, _ := NewKernelPID(4)
	if _, ok := vacant.Name(); ok {
		t.Fatalf("expected no name for a vacant slot")
	}
	if _, err := vacant.Priority(); !errors.Is(err, ErrNoSuchThread) {
		t.Fatalf("expected ErrNoSuchThread, got %v", err)
	}
}

func TestWakeupLiveAndVacant(t *testing.T) {
	f := newFixture()
	f.statuses[1] = 1
	useFixture(t, f)

	p, _ := NewKernelPID(1)
	if err := p.Wakeup(); err != nil {
		t.Fatalf("unexpected error waking a live thread: %v", err)
	}
	if !slices.Equal(f.woken, []int16{1}) {
		t.Fatalf("expected wakeup to reach the backend, got %v", f.woken)
	}

	vacant, _ := NewKernelPID(3)
	if err := vacant.Wakeup(); !errors.Is(err, ErrNoSuchThread) {
		t.Fatalf("expected ErrNoSuchThread, got %v", err)
	}
}

func TestStackStatsExistenceBeforeAvailability(t *testing.T) {
	f := newFixture()
	f.statuses[1] = 1
	f.stacks[1] = kern.Stack{Start: 0x2000, Size: 1024, Free: 768}
	useFixture(t, f)

	// Measurement compiled out: a live thread answers unavailable, but a
	// vacant slot still answers not-found first.
	p, _ := NewKernelPID(1)
	if _, err := p.StackStats(); !errors.Is(err, ErrStackStatsUnavailable) {
		t.Fatalf("expected ErrStackStatsUnavailable, got %v", err)
	}
	vacant, _ := NewKernelPID(2)
	if _, err := vacant.StackStats(); !errors.Is(err, ErrNoSuchThread) {
		t.Fatalf("expected ErrNoSuchThread, got %v", err)
	}

	f.stacksUsable = true
	stats, err := p.StackStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Size != 1024 || stats.Free != 768 || stats.Used() != 256 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatusStrings(t *testing.T) {
	cases := map[Status]string{
		StatusStopped:        "stopped",
		StatusSleeping:       "sleeping",
		StatusMutexBlocked:   "mutex-blocked",
		StatusFlagBlockedAny: "flag-blocked-any",
		StatusRunning:        "running",
		StatusPending:        "pending",
		StatusOther:          "other",
		Status(200):          "other",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if !StatusRunning.Running() || !StatusPending.Running() {
		t.Fatalf("expected running and pending to count as running")
	}
	if StatusSleeping.Running() {
		t.Fatalf("expected sleeping not to count as running")
	}
}
