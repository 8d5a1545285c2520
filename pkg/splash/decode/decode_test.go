package decode_test

import (
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
	"github.com/provide-io/bootsplash/pkg/splash/splashtest"
)

// makeBMP assembles a BMP file with a 40-byte info header.
func makeBMP(width, height int32, bpp uint16, compression uint32, pixels []byte) []byte {
	buf := make([]byte, 54+len(pixels))
	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[2:], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[10:], 54)
	binary.LittleEndian.PutUint32(buf[14:], 40)
	binary.LittleEndian.PutUint32(buf[18:], uint32(width))
	binary.LittleEndian.PutUint32(buf[22:], uint32(height))
	binary.LittleEndian.PutUint16(buf[26:], 1)
	binary.LittleEndian.PutUint16(buf[28:], bpp)
	binary.LittleEndian.PutUint32(buf[30:], compression)
	copy(buf[54:], pixels)
	return buf
}

func newBuffer(t *testing.T, w, h int) *decode.FrameBuffer {
	t.Helper()
	fb, err := decode.NewFrameBuffer(w, h)
	require.NoError(t, err)
	return fb
}

func TestNewFrameBuffer(t *testing.T) {
	fb := newBuffer(t, 3, 2)
	assert.Equal(t, 3, fb.Stride)
	assert.Len(t, fb.Pix, 24)

	_, err := decode.NewFrameBuffer(0, 2)
	assert.ErrorIs(t, err, splasherr.ErrInvalidArgument)
}

func TestDecodeRaw(t *testing.T) {
	payload := splashtest.SolidRaw(4, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	first := newBuffer(t, 4, 3)
	require.NoError(t, decode.Decode(payload, decode.FormatBGRA32, first))
	assert.Equal(t, payload, first.Pix)

	second := newBuffer(t, 4, 3)
	require.NoError(t, decode.Decode(payload, decode.FormatBGRA32, second))
	assert.Equal(t, first.Pix, second.Pix, "decoding is deterministic")

	b, g, r, a := first.At(3, 2)
	assert.Equal(t, []byte{3, 2, 1, 4}, []byte{b, g, r, a})
}

func TestDecodeRawLengthMismatch(t *testing.T) {
	fb := newBuffer(t, 2, 2)
	for _, n := range []int{0, 15, 17} {
		err := decode.DecodeRaw(make([]byte, n), fb)
		assert.ErrorIs(t, err, splasherr.ErrCorruptData, "length %d", n)
	}
}

func TestDecodeBMPBottomUp24(t *testing.T) {
	// 1x2, rows stored bottom row first, each padded to 4 bytes.
	r0 := []byte{0x10, 0x11, 0x12, 0}
	r1 := []byte{0x20, 0x21, 0x22, 0}
	payload := makeBMP(1, 2, 24, 0, append(append([]byte{}, r0...), r1...))

	fb := newBuffer(t, 1, 2)
	require.NoError(t, decode.Decode(payload, decode.FormatBMP, fb))

	assert.Equal(t, []byte{0x20, 0x21, 0x22, 0xFF}, fb.Row(0), "top row comes from the last stored row")
	assert.Equal(t, []byte{0x10, 0x11, 0x12, 0xFF}, fb.Row(1))
}

func TestDecodeBMPTopDown32(t *testing.T) {
	pixels := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	payload := makeBMP(2, -2, 32, 0, pixels)

	fb := newBuffer(t, 2, 2)
	require.NoError(t, decode.DecodeBMP(payload, fb))
	assert.Equal(t, pixels, fb.Pix)
}

func TestDecodeBMPEncodedImage(t *testing.T) {
	img := splashtest.SolidImage(5, 3, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	payload := splashtest.EncodeBMP(t, img)
	require.True(t, decode.IsBMP(payload))

	fb := newBuffer(t, 5, 3)
	require.NoError(t, decode.DecodeBMP(payload, fb))

	b, g, r, a := fb.At(0, 0)
	assert.Equal(t, []byte{3, 2, 1, 255}, []byte{b, g, r, a})
	b, g, r, a = fb.At(4, 2)
	assert.Equal(t, []byte{50, 100, 200, 255}, []byte{b, g, r, a})
}

func TestDecodeBMPRejects(t *testing.T) {
	good := makeBMP(2, 2, 24, 0, make([]byte, 16))

	tests := []struct {
		name    string
		payload []byte
		want    error
	}{
		{"short header", good[:53], splasherr.ErrCorruptData},
		{"signature", append([]byte("XM"), good[2:]...), splasherr.ErrUnsupported},
		{"16 bpp", makeBMP(2, 2, 16, 0, make([]byte, 16)), splasherr.ErrUnsupported},
		{"compressed", makeBMP(2, 2, 24, 1, make([]byte, 16)), splasherr.ErrUnsupported},
		{"width mismatch", makeBMP(3, 2, 24, 0, make([]byte, 24)), splasherr.ErrOutOfRange},
		{"height mismatch", makeBMP(2, -3, 24, 0, make([]byte, 24)), splasherr.ErrOutOfRange},
		{"truncated pixels", good[:len(good)-1], splasherr.ErrCorruptData},
		{"offset past end", func() []byte {
			b := append([]byte{}, good...)
			binary.LittleEndian.PutUint32(b[10:], uint32(len(b)))
			return b
		}(), splasherr.ErrCorruptData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newBuffer(t, 2, 2)
			err := decode.DecodeBMP(tt.payload, fb)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, make([]byte, 16), fb.Pix, "target untouched")
		})
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	fb := newBuffer(t, 1, 1)
	assert.ErrorIs(t, decode.Decode([]byte{0, 0, 0, 0}, decode.PixelFormat(7), fb), splasherr.ErrUnsupported)
	assert.ErrorIs(t, decode.Decode(nil, decode.FormatBGRA32, fb), splasherr.ErrInvalidArgument)
	assert.Equal(t, "bmp", decode.FormatBMP.String())
}
