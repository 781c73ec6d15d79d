package term

import (
	"testing"
	"time"

	"ember/emberos/thread"
	"ember/hal"
)

func TestServiceDrawsWrites(t *testing.T) {
	h := hal.New()
	s, err := Start(h.Display(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = thread.Spawn("writer", 4, 0, func(tok thread.StartToken) thread.EndToken {
		if err := s.Write(tok.InThread(), "hello ember"); err != nil {
			panic(err)
		}
		return thread.Termination(tok)
	})
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}

	// Glyphs land in the framebuffer when the service handles the write.
	fb := h.Display().Framebuffer()
	deadline := time.Now().Add(2 * time.Second)
	for {
		drawn := false
		for _, b := range fb.Buffer() {
			if b != 0 {
				drawn = true
				break
			}
		}
		if drawn {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected the write to reach the framebuffer")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The refresh nudge from interrupt context must not block or panic.
	s.Tick(thread.PromiseInISR())
}

func TestStartWithoutDisplay(t *testing.T) {
	if _, err := Start(nil, 2); err == nil {
		t.Fatalf("expected an error without a framebuffer")
	}
}
