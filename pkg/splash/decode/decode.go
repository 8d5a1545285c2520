package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// PixelFormat is the payload encoding hint carried by a package header.
type PixelFormat uint32

const (
	FormatBGRA32 PixelFormat = 0 // tight BGRA rows, 4 bytes per pixel
	FormatBMP    PixelFormat = 1 // uncompressed 24/32-bit BMP file
)

func (f PixelFormat) String() string {
	switch f {
	case FormatBGRA32:
		return "bgra32"
	case FormatBMP:
		return "bmp"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(f))
	}
}

// BMP layout: 14-byte file header followed by a 40-byte info header.
const (
	bmpFileHeaderSize = 14
	bmpHeaderSize     = bmpFileHeaderSize + 40
)

// IsBMP reports whether payload starts with the BMP signature.
func IsBMP(payload []byte) bool {
	return len(payload) >= 2 && payload[0] == 'B' && payload[1] == 'M'
}

// Decode fills target from payload according to format.
func Decode(payload []byte, format PixelFormat, target *FrameBuffer) error {
	if target == nil || payload == nil {
		return fmt.Errorf("%w: nil payload or target", splasherr.ErrInvalidArgument)
	}
	switch format {
	case FormatBGRA32:
		return DecodeRaw(payload, target)
	case FormatBMP:
		return DecodeBMP(payload, target)
	default:
		return fmt.Errorf("%w: pixel format %s", splasherr.ErrUnsupported, format)
	}
}

// DecodeRaw copies a tight BGRA payload into target. The payload must be
// exactly width*height*4 bytes.
func DecodeRaw(payload []byte, target *FrameBuffer) error {
	expected := SizeBytes(target.Width, target.Height)
	if uint64(len(payload)) != expected {
		return splasherr.Corruptf("raw payload is %d bytes, want %d", len(payload), expected)
	}

	rowBytes := target.Width * BytesPerPixel
	if target.Stride == target.Width {
		copy(target.Pix, payload)
		return nil
	}
	for y := 0; y < target.Height; y++ {
		copy(target.Row(y), payload[y*rowBytes:(y+1)*rowBytes])
	}
	return nil
}

// bmpInfo is the part of the BMP headers the decoder looks at.
type bmpInfo struct {
	imageOffset  uint32
	width        int32
	height       int32
	bitsPerPixel uint16
	compression  uint32
}

func parseBMPHeader(payload []byte) bmpInfo {
	return bmpInfo{
		imageOffset:  binary.LittleEndian.Uint32(payload[10:14]),
		width:        int32(binary.LittleEndian.Uint32(payload[18:22])),
		height:       int32(binary.LittleEndian.Uint32(payload[22:26])),
		bitsPerPixel: binary.LittleEndian.Uint16(payload[28:30]),
		compression:  binary.LittleEndian.Uint32(payload[30:34]),
	}
}

// DecodeBMP decodes an uncompressed 24 or 32 bpp BMP whose dimensions match
// target exactly. A positive height means rows are stored bottom-up. Every
// check runs before target is written.
func DecodeBMP(payload []byte, target *FrameBuffer) error {
	if len(payload) < bmpHeaderSize {
		return splasherr.Corruptf("bmp payload of %d bytes is shorter than its headers", len(payload))
	}
	if !IsBMP(payload) {
		return fmt.Errorf("%w: missing BM signature", splasherr.ErrUnsupported)
	}

	info := parseBMPHeader(payload)
	if info.bitsPerPixel != 24 && info.bitsPerPixel != 32 {
		return fmt.Errorf("%w: bmp depth %d bpp", splasherr.ErrUnsupported, info.bitsPerPixel)
	}

	absHeight := int64(info.height)
	if absHeight < 0 {
		absHeight = -absHeight
	}
	if int64(info.width) != int64(target.Width) || absHeight != int64(target.Height) {
		return fmt.Errorf("%w: bmp is %dx%d, frame is %dx%d",
			splasherr.ErrOutOfRange, info.width, absHeight, target.Width, target.Height)
	}
	if info.compression != 0 {
		return fmt.Errorf("%w: bmp compression %d", splasherr.ErrUnsupported, info.compression)
	}

	size := uint64(len(payload))
	if uint64(info.imageOffset) >= size {
		return splasherr.Corruptf("bmp image offset %d outside %d byte payload", info.imageOffset, size)
	}

	bytesPerPixel := int(info.bitsPerPixel) / 8
	rowSize := ((uint64(info.bitsPerPixel)*uint64(target.Width) + 31) / 32) * 4
	pixelBytes := rowSize * uint64(target.Height)
	if pixelBytes > size || uint64(info.imageOffset)+pixelBytes > size {
		return splasherr.Corruptf("bmp pixel data (%d bytes at %d) exceeds %d byte payload",
			pixelBytes, info.imageOffset, size)
	}

	image := payload[info.imageOffset:]
	bottomUp := info.height > 0
	for row := 0; row < target.Height; row++ {
		srcRow := row
		if bottomUp {
			srcRow = target.Height - 1 - row
		}
		src := image[uint64(srcRow)*rowSize:]
		dst := target.Row(row)
		for x := 0; x < target.Width; x++ {
			px := src[x*bytesPerPixel:]
			d := dst[x*BytesPerPixel:]
			d[0] = px[0]
			d[1] = px[1]
			d[2] = px[2]
			if bytesPerPixel == 4 {
				d[3] = px[3]
			} else {
				d[3] = 0xFF
			}
		}
	}
	return nil
}
