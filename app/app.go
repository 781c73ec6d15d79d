// Package app wires the hardware abstraction layer to the EmberOS service
// threads and brings the system up.
package app

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"ember/emberos/stdio"
	"ember/emberos/term"
	"ember/emberos/thread"
	"ember/emberos/vfs"
	"ember/hal"
	"ember/internal/buildinfo"
)

//go:embed bootfs
var bootAssets embed.FS

// Config tunes the demo system.
type Config struct {
	// DumpEvery requests a process listing every N ticks; 0 disables the
	// periodic dump.
	DumpEvery uint64

	// HeartbeatEvery wakes the uptime thread every N ticks.
	HeartbeatEvery uint64
}

type system struct {
	term    *term.Service
	monitor *term.Monitor
	uptime  thread.KernelPID
}

// New initializes and starts the OS with default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run starts the OS and blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	_ = New(h)
	select {}
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	_ = newSystem(h, cfg)
	return func() error { return nil }
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) *system {
	if cfg.HeartbeatEvery == 0 {
		cfg.HeartbeatEvery = 1000
	}

	installCrashHandler(h)
	stdio.Wire(h.Serial())

	if boot, err := fs.Sub(bootAssets, "bootfs"); err == nil {
		if err := vfs.MountFS("/boot", boot); err != nil {
			logLine(h, "boot: "+err.Error())
		}
	}

	sys := &system{}

	tsvc, err := term.Start(h.Display(), 2)
	if err != nil {
		logLine(h, "term: "+err.Error())
	} else {
		sys.term = tsvc
	}

	mon, err := term.StartMonitor(lineWriter{l: h.Logger()}, 3)
	if err != nil {
		logLine(h, "monitor: "+err.Error())
	} else {
		sys.monitor = mon
	}

	sys.spawnGreeter(h)
	sys.spawnUptime(h)
	sys.pumpTicks(h, cfg)

	return sys
}

// spawnGreeter prints the boot banner and the mounted message of the day,
// then terminates. The short-lived thread shows up and disappears in
// monitor dumps.
func (sys *system) spawnGreeter(h hal.HAL) {
	_, err := thread.Spawn("greeter", 4, 0, func(tok thread.StartToken) thread.EndToken {
		in := tok.InThread()
		sys.termWrite(in, "EmberOS "+buildinfo.Short()+"\n")
		if f, err := vfs.Open("/boot/motd"); err == nil {
			if b, err := io.ReadAll(f); err == nil {
				sys.termWrite(in, string(b))
			}
			f.Close()
		}
		return thread.Termination(tok)
	})
	if err != nil {
		logLine(h, "greeter: "+err.Error())
	}
}

// spawnUptime starts the heartbeat thread. It spends its life asleep; the
// tick pump wakes it by identifier, the way an interrupt would.
func (sys *system) spawnUptime(h hal.HAL) {
	pid, err := thread.Spawn("uptime", 5, 0, func(tok thread.StartToken) thread.EndToken {
		in := tok.InThread()
		beats := 0
		for {
			thread.Sleep(in)
			beats++
			sys.termWrite(in, fmt.Sprintf("uptime: beat %d\n", beats))
		}
	})
	if err != nil {
		logLine(h, "uptime: "+err.Error())
		return
	}
	sys.uptime = pid
}

// pumpTicks forwards the platform tick stream into the system: display
// refresh nudges, heartbeat wakeups and periodic monitor dumps. It stands
// in for the timer interrupt, hence the promised ISR context.
func (sys *system) pumpTicks(h hal.HAL, cfg Config) {
	ht := h.Time()
	if ht == nil {
		return
	}
	ch := ht.Ticks()
	if ch == nil {
		return
	}

	go func() {
		isr := thread.PromiseInISR()
		for seq := range ch {
			if sys.term != nil {
				sys.term.Tick(isr)
			}
			if seq%cfg.HeartbeatEvery == 0 && sys.uptime != (thread.KernelPID{}) {
				sys.uptime.Wakeup()
			}
			if cfg.DumpEvery > 0 && seq%cfg.DumpEvery == 0 && sys.monitor != nil {
				sys.monitor.Request()
			}
		}
	}()
}

func (sys *system) termWrite(in thread.InThread, text string) {
	if sys.term == nil {
		stdio.WriteString(text)
		return
	}
	sys.term.Write(in, text)
}

func logLine(h hal.HAL, s string) {
	if l := h.Logger(); l != nil {
		l.WriteLineString(s)
	}
}

// lineWriter adapts the newline-delimited hal.Logger to io.Writer for the
// monitor's dumps.
type lineWriter struct {
	l hal.Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	if w.l == nil {
		return len(p), nil
	}
	rest := p
	for len(rest) > 0 {
		i := -1
		for j, b := range rest {
			if b == '\n' {
				i = j
				break
			}
		}
		if i < 0 {
			w.l.WriteLineBytes(rest)
			break
		}
		w.l.WriteLineBytes(rest[:i])
		rest = rest[i+1:]
	}
	return len(p), nil
}
