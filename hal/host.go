//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	t      *hostTime
	serial Serial
}

// New returns a host HAL implementation.
func New() HAL {
	return &hostHAL{
		logger: &hostLogger{w: os.Stdout},
		fb:     newHostFramebuffer(320, 320),
		t:      newHostTime(),
		serial: &hostSerial{r: os.Stdin, w: os.Stdout},
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Serial() Serial   { return h.serial }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
