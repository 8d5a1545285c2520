// Package decode turns frame payloads into pixel buffers.
package decode

import (
	"fmt"

	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// BytesPerPixel is the size of one BGRA pixel cell.
const BytesPerPixel = 4

// FrameBuffer is a BGRA pixel surface. Each cell holds blue, green, red and a
// reserved/alpha byte, in that order.
type FrameBuffer struct {
	Width  int
	Height int
	Stride int // row pitch in pixel cells
	Pix    []byte
}

// NewFrameBuffer allocates a zeroed width×height buffer.
func NewFrameBuffer(width, height int) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame buffer %dx%d", splasherr.ErrInvalidArgument, width, height)
	}
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Stride: width,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}, nil
}

// SizeBytes is the number of bytes a tightly packed width×height frame needs.
func SizeBytes(width, height int) uint64 {
	return uint64(width) * uint64(height) * BytesPerPixel
}

// Row returns the pixel bytes of row y.
func (fb *FrameBuffer) Row(y int) []byte {
	start := y * fb.Stride * BytesPerPixel
	return fb.Pix[start : start+fb.Width*BytesPerPixel]
}

// At returns the blue, green, red and alpha bytes of pixel (x, y).
func (fb *FrameBuffer) At(x, y int) (b, g, r, a byte) {
	i := (y*fb.Stride + x) * BytesPerPixel
	return fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3]
}
