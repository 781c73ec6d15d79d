// Package term runs the on-screen terminal as a message-driven service
// thread. It is the canonical user of the startup token protocol: the
// thread installs its message queue out of the one-time capability and
// then, having a live queue on its stack, loops forever.
package term

import (
	"fmt"

	"ember/emberos/msg"
	"ember/emberos/proto"
	"ember/emberos/thread"
	"ember/hal"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const queueSlots = 16

// Service is a handle to the running terminal thread.
type Service struct {
	pid thread.KernelPID

	fb hal.Framebuffer
	d  *fbDisplay
	t  *tinyterm.Terminal
}

// Start spawns the terminal service on disp. The returned handle is ready
// to receive once Start returns.
func Start(disp hal.Display, prio uint8) (*Service, error) {
	if disp == nil || disp.Framebuffer() == nil {
		return nil, fmt.Errorf("term: no framebuffer to run on")
	}
	s := &Service{fb: disp.Framebuffer()}
	s.d = newFBDisplay(s.fb)

	ready := make(chan struct{})
	pid, err := thread.Spawn("term", prio, 4096, func(tok thread.StartToken) thread.EndToken {
		rest, c := thread.TakeMsgSemantics(tok)
		msg.Install(c, queueSlots)
		s.reset()
		close(ready)

		dirty := false
		for {
			m, err := msg.Receive(rest.InThread())
			if err != nil {
				panic(err)
			}
			switch proto.Kind(m.Kind) {
			case proto.MsgTermWrite:
				if text, ok := m.Ptr.(string); ok {
					_, _ = s.t.Write([]byte(text))
					dirty = true
				}
			case proto.MsgTermClear:
				s.reset()
				dirty = true
			case proto.MsgTimerTick:
				if dirty {
					s.t.Display()
					dirty = false
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	s.pid = pid
	<-ready
	return s, nil
}

// PID returns the service thread's identifier.
func (s *Service) PID() thread.KernelPID { return s.pid }

// Write queues text for display. Blocks while the queue is full.
func (s *Service) Write(in thread.InThread, text string) error {
	return msg.Send(in, s.pid, msg.Message{Kind: uint16(proto.MsgTermWrite), Ptr: text})
}

// Clear queues a screen reset.
func (s *Service) Clear(in thread.InThread) error {
	return msg.Send(in, s.pid, msg.Message{Kind: uint16(proto.MsgTermClear)})
}

// Tick nudges the service to present pending output. Interrupt context; a
// full queue drops the nudge, which is fine because the next one comes.
func (s *Service) Tick(isr thread.InIsr) {
	msg.TrySendFromISR(isr, s.pid, msg.Message{Kind: uint16(proto.MsgTimerTick)})
}

func (s *Service) reset() {
	s.t = tinyterm.NewTerminal(s.d)
	s.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	s.fb.ClearRGB(0, 0, 0)
	_ = s.fb.Present()
}
