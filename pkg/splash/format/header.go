package format

import (
	"encoding/binary"
	"fmt"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// Header is the fixed block at the start of every package.
type Header struct {
	Magic        [8]byte
	VersionMajor uint16
	VersionMinor uint16
	HeaderSize   uint16
	Flags        uint16

	ManifestSize     uint32 // embedded manifest bytes following the header
	FrameCount       uint32
	FrameTableOffset uint32 // absolute
	FrameDataOffset  uint32 // absolute; descriptor offsets are relative to it
	LogicalWidth     uint32
	LogicalHeight    uint32
	PixelFormat      uint32
	TargetFPS        uint32
	LoopCount        uint32

	Reserved [6]uint32
}

// NewHeader returns a header with the magic, version and size filled in.
func NewHeader() *Header {
	return &Header{
		Magic:        Magic,
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		HeaderSize:   HeaderSize,
	}
}

// Pack serializes the header to bytes
func (h *Header) Pack() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.VersionMajor)
	binary.LittleEndian.PutUint16(buf[10:12], h.VersionMinor)
	binary.LittleEndian.PutUint16(buf[12:14], h.HeaderSize)
	binary.LittleEndian.PutUint16(buf[14:16], h.Flags)

	fields := []uint32{
		h.ManifestSize, h.FrameCount, h.FrameTableOffset, h.FrameDataOffset,
		h.LogicalWidth, h.LogicalHeight, h.PixelFormat, h.TargetFPS, h.LoopCount,
	}
	for i, v := range fields {
		binary.LittleEndian.PutUint32(buf[16+4*i:], v)
	}
	for i, v := range h.Reserved {
		binary.LittleEndian.PutUint32(buf[52+4*i:], v)
	}
	return buf
}

// Unpack deserializes the header from bytes
func (h *Header) Unpack(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", splasherr.ErrInvalidArgument, len(data), HeaderSize)
	}

	copy(h.Magic[:], data[0:8])
	h.VersionMajor = binary.LittleEndian.Uint16(data[8:10])
	h.VersionMinor = binary.LittleEndian.Uint16(data[10:12])
	h.HeaderSize = binary.LittleEndian.Uint16(data[12:14])
	h.Flags = binary.LittleEndian.Uint16(data[14:16])

	u32 := func(i int) uint32 { return binary.LittleEndian.Uint32(data[16+4*i:]) }
	h.ManifestSize = u32(0)
	h.FrameCount = u32(1)
	h.FrameTableOffset = u32(2)
	h.FrameDataOffset = u32(3)
	h.LogicalWidth = u32(4)
	h.LogicalHeight = u32(5)
	h.PixelFormat = u32(6)
	h.TargetFPS = u32(7)
	h.LoopCount = u32(8)
	for i := range h.Reserved {
		h.Reserved[i] = u32(9 + i)
	}
	return nil
}

// Validate checks the fields that can be judged without the file size.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return splasherr.Corruptf("bad magic %q", h.Magic[:])
	}
	if h.FrameCount == 0 || h.FrameCount > MaxFrameCount {
		return splasherr.Corruptf("frame count %d outside [1, %d]", h.FrameCount, MaxFrameCount)
	}
	return nil
}

// Format returns the pixel format tag as a decoder format.
func (h *Header) Format() decode.PixelFormat {
	return decode.PixelFormat(h.PixelFormat)
}

// HasManifest reports whether an embedded manifest follows the header.
func (h *Header) HasManifest() bool {
	return h.ManifestSize > 0
}
