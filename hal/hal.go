package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Serial is the raw console transport: bytes in, bytes out, no line
// discipline.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined; higher-level timers live in userland.
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the OS and the outside world.
type HAL interface {
	Logger() Logger
	Serial() Serial
	Display() Display
	Time() Time
}
