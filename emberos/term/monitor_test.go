package term

import (
	"strings"
	"sync"
	"testing"
	"time"

	"ember/emberos/thread"
)

// syncWriter collects monitor output across goroutines and flags the first
// completed dump.
type syncWriter struct {
	mu    sync.Mutex
	b     strings.Builder
	wrote chan struct{}
	once  sync.Once
}

func newSyncWriter() *syncWriter {
	return &syncWriter{wrote: make(chan struct{})}
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	n, err := w.b.Write(p)
	w.mu.Unlock()
	w.once.Do(func() { close(w.wrote) })
	return n, err
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestDumpListsLiveThreads(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	_, err := thread.Spawn("dumpme", 6, 0, func(tok thread.StartToken) thread.EndToken {
		close(started)
		<-release
		return thread.Termination(tok)
	})
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}
	<-started
	defer close(release)

	var b strings.Builder
	Dump(&b)
	out := b.String()

	if !strings.Contains(out, "dumpme") {
		t.Fatalf("expected the live thread's name in the dump:\n%s", out)
	}
	// Every identifier gets a row, vacant slots included.
	rows := strings.Count(out, "\n") - 1
	want := 0
	for range thread.AllPIDs() {
		want++
	}
	if rows != want {
		t.Fatalf("expected %d rows, got %d:\n%s", want, rows, out)
	}
}

func TestMonitorDumpOnFlag(t *testing.T) {
	w := newSyncWriter()
	m, err := StartMonitor(w, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.Request(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-w.wrote:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a dump after raising the flag")
	}
	if out := w.String(); !strings.Contains(out, "pid") || !strings.Contains(out, "state") {
		t.Fatalf("expected a listing header, got %q", out)
	}
}
