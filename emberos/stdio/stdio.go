// Package stdio is the process-wide character console. It forwards to
// whatever serial transport the platform wired in at boot; before wiring,
// writes vanish and reads report nothing available.
package stdio

import (
	"errors"
	"fmt"
	"sync"

	"ember/hal"
)

// ErrNotWired reports a read before the platform wired a serial transport.
var ErrNotWired = errors.New("stdio: no serial transport wired")

var (
	mu     sync.Mutex
	serial hal.Serial
)

// Wire installs the serial transport. Called once during platform
// bring-up; later calls replace the transport.
func Wire(s hal.Serial) {
	mu.Lock()
	serial = s
	mu.Unlock()
}

func current() hal.Serial {
	mu.Lock()
	defer mu.Unlock()
	return serial
}

// Write sends p to the console. Unwired consoles swallow the bytes, which
// matches what a board without a UART does.
func Write(p []byte) (int, error) {
	s := current()
	if s == nil {
		return len(p), nil
	}
	return s.Write(p)
}

// WriteString is Write for strings.
func WriteString(str string) (int, error) {
	return Write([]byte(str))
}

// ReadRaw reads whatever bytes are available into p, blocking for at least
// one. No line editing, no echo.
func ReadRaw(p []byte) (int, error) {
	s := current()
	if s == nil {
		return 0, ErrNotWired
	}
	return s.Read(p)
}

// Printf formats to the console.
func Printf(format string, args ...any) {
	fmt.Fprintf(writer{}, format, args...)
}

type writer struct{}

func (writer) Write(p []byte) (int, error) { return Write(p) }
