package splashtest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/format"
)

// SolidRaw returns a tight BGRA payload of one colour.
func SolidRaw(width, height int, c color.NRGBA) []byte {
	buf := make([]byte, width*height*decode.BytesPerPixel)
	for i := 0; i < len(buf); i += decode.BytesPerPixel {
		buf[i] = c.B
		buf[i+1] = c.G
		buf[i+2] = c.R
		buf[i+3] = c.A
	}
	return buf
}

// SolidImage returns an opaque image of one colour.
func SolidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// EncodeBMP encodes img as a bottom-up BMP. Opaque images become 24 bpp.
func EncodeBMP(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	return buf.Bytes()
}

// Frame is one fixture frame.
type Frame struct {
	Data       []byte
	DurationUs uint32
}

// PackageBytes writes a package for spec through the real writer. Frames
// given here are appended to spec.Frames.
func PackageBytes(t testing.TB, spec format.PackageSpec, frames ...Frame) []byte {
	t.Helper()
	for i, f := range frames {
		data := f.Data
		spec.Frames = append(spec.Frames, format.FrameSource{
			Name:       fmt.Sprintf("frame%04d", i),
			Size:       int64(len(data)),
			DurationUs: f.DurationUs,
			Load:       func() ([]byte, error) { return data, nil },
		})
	}
	var buf bytes.Buffer
	_, err := format.NewWriter(nil).Write(&buf, &spec)
	require.NoError(t, err)
	return buf.Bytes()
}

// OpenBytes wraps data as an open platform file.
func OpenBytes(data []byte) *MemFile {
	return &MemFile{Reader: bytes.NewReader(data)}
}
