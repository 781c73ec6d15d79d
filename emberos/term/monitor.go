package term

import (
	"fmt"
	"io"

	"ember/emberos/flags"
	"ember/emberos/thread"
)

// FlagDump asks the monitor thread for one process listing.
const FlagDump flags.Mask = 0b1

// Monitor is a handle to the diagnostic "top" thread. Raise FlagDump on it
// to get a listing.
type Monitor struct {
	pid thread.KernelPID
}

// StartMonitor spawns the diagnostic thread writing listings to w.
func StartMonitor(w io.Writer, prio uint8) (*Monitor, error) {
	ready := make(chan struct{})
	pid, err := thread.Spawn("monitor", prio, 2048, func(tok thread.StartToken) thread.EndToken {
		rest, c := thread.TakeFlagSemantics(tok)
		r := flags.Attach(c)
		close(ready)
		for {
			r.WaitAny(rest.InThread(), FlagDump)
			Dump(w)
		}
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &Monitor{pid: pid}, nil
}

// PID returns the monitor thread's identifier.
func (m *Monitor) PID() thread.KernelPID { return m.pid }

// Request asks for a listing. Safe from anywhere, interrupts included.
func (m *Monitor) Request() error {
	return flags.Set(m.pid, FlagDump)
}

// Dump writes one process listing: every identifier the kernel could
// assign, with whatever can still be said about it. Threads may vanish
// between the lines of a single dump; every row degrades independently.
func Dump(w io.Writer) {
	fmt.Fprintf(w, "%5s %-12s %-16s %4s %s\n", "pid", "name", "state", "prio", "stack")
	for pid := range thread.AllPIDs() {
		st, err := pid.Status()
		if err != nil {
			// Vacant slot; worth a row so the table shape is visible.
			fmt.Fprintf(w, "%5d %-12s %-16s %4s %s\n", pid.Raw(), "-", "-", "-", "-")
			continue
		}

		name, ok := pid.Name()
		if !ok {
			name = "?"
		}

		prioCol := "?"
		if prio, err := pid.Priority(); err == nil {
			prioCol = fmt.Sprintf("%d", prio)
		}

		stackCol := "n/a"
		if stats, err := pid.StackStats(); err == nil {
			stackCol = fmt.Sprintf("%d/%d used", stats.Used(), stats.Size)
		}

		fmt.Fprintf(w, "%5d %-12s %-16s %4s %s\n", pid.Raw(), name, st, prioCol, stackCol)
	}
}
