//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

type tinyGoHAL struct {
	logger *uartLogger
	fb     Framebuffer
	t      *tinyGoTime
	serial Serial
}

// New returns a bare-metal HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		fb:     &stubFramebuffer{w: 320, h: 320, format: PixelFormatRGB565},
		t:      newTinyGoTime(),
		serial: &uartSerial{uart: uart},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) Serial() Serial   { return h.serial }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Time() Time       { return h.t }

type tinyGoDisplay struct {
	fb Framebuffer
}

func (d tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoTime struct {
	ch  chan uint64
	seq uint64
}

func newTinyGoTime() *tinyGoTime {
	t := &tinyGoTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type uartSerial struct {
	uart *machine.UART
}

func (s *uartSerial) Read(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Read(p)
}

func (s *uartSerial) Write(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Write(p)
}
