package host

import (
	"image"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
)

// Canvas is a screen-sized RGBA surface that frames are composed onto.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas creates a black canvas. Non-positive sizes yield an empty canvas.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	c.Clear()
	return c
}

// Clear paints the canvas opaque black.
func (c *Canvas) Clear() {
	pix := c.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0xFF
	}
}

// Compose copies fb onto the canvas with its top-left corner at (x, y),
// swapping BGRA to RGBA. Parts outside the canvas are clipped.
func (c *Canvas) Compose(fb *decode.FrameBuffer, x, y int) {
	bounds := c.img.Bounds()
	for row := 0; row < fb.Height; row++ {
		dy := y + row
		if dy < 0 || dy >= bounds.Dy() {
			continue
		}
		src := fb.Row(row)
		for col := 0; col < fb.Width; col++ {
			dx := x + col
			if dx < 0 || dx >= bounds.Dx() {
				continue
			}
			s := src[col*decode.BytesPerPixel : col*decode.BytesPerPixel+4]
			d := c.img.Pix[dy*c.img.Stride+dx*4 : dy*c.img.Stride+dx*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
		}
	}
}

// Image exposes the canvas. Callers must not keep it across Compose calls.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns a copy of the canvas.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}
