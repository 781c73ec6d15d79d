package term

import (
	"image/color"

	"ember/hal"

	"tinygo.org/x/drivers"
)

// fbDisplay bridges a hal.Framebuffer to the Displayer surface the
// terminal emulator draws on. Only RGB565 framebuffers are supported;
// anything else renders nothing rather than corrupting memory.
type fbDisplay struct {
	fb hal.Framebuffer
}

func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) usable() ([]byte, bool) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return nil, false
	}
	buf := d.fb.Buffer()
	return buf, buf != nil
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	buf, ok := d.usable()
	if !ok {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}

	pixel := rgb565From888(c.R, c.G, c.B)
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *fbDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	buf, ok := d.usable()
	if !ok || lines <= 0 {
		return nil
	}

	w, h := d.fb.Width(), d.fb.Height()
	if w <= 0 || h <= 0 {
		return nil
	}
	n := int(lines)
	if n >= h {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}

	// Shift content up by n lines, respecting stride and buffer bounds.
	stride := d.fb.StrideBytes()
	dstLen := (h - n) * stride
	srcStart := n * stride
	if srcStart > len(buf) {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}
	srcEnd := srcStart + dstLen
	if srcEnd > len(buf) {
		srcEnd = len(buf)
		dstLen = srcEnd - srcStart
	}
	copy(buf[:dstLen], buf[srcStart:srcEnd])

	// Clear the newly exposed bottom area.
	return d.FillRectangle(0, int16(h-n), int16(w), int16(n), bg)
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	buf, ok := d.usable()
	if !ok {
		return nil
	}

	w, h := d.fb.Width(), d.fb.Height()
	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := rgb565From888(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	return nil
}

func (d *fbDisplay) SetScroll(line int16) {
	_ = line
}

func (d *fbDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
