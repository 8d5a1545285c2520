package format

import (
	"encoding/binary"
	"fmt"

	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// FrameDescriptor locates one frame payload inside a package.
type FrameDescriptor struct {
	Offset     uint64 // relative to Header.FrameDataOffset
	Length     uint32
	DurationUs uint32 // 0 means the resolved default
}

// Pack serializes the descriptor to bytes
func (d *FrameDescriptor) Pack() []byte {
	buf := make([]byte, DescriptorSize)
	binary.LittleEndian.PutUint64(buf[0:8], d.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], d.Length)
	binary.LittleEndian.PutUint32(buf[12:16], d.DurationUs)
	return buf
}

// Unpack deserializes the descriptor from bytes
func (d *FrameDescriptor) Unpack(data []byte) error {
	if len(data) != DescriptorSize {
		return fmt.Errorf("%w: descriptor is %d bytes, want %d", splasherr.ErrInvalidArgument, len(data), DescriptorSize)
	}
	d.Offset = binary.LittleEndian.Uint64(data[0:8])
	d.Length = binary.LittleEndian.Uint32(data[8:12])
	d.DurationUs = binary.LittleEndian.Uint32(data[12:16])
	return nil
}

// Bounds returns the absolute [start, end) byte range of the payload given
// the frame data region offset. ok is false if the range overflows.
func (d *FrameDescriptor) Bounds(dataOffset uint32) (start, end uint64, ok bool) {
	start = uint64(dataOffset) + d.Offset
	if start < d.Offset {
		return 0, 0, false
	}
	end = start + uint64(d.Length)
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

// CheckBounds validates the descriptor against the file size and the per
// frame size cap.
func (d *FrameDescriptor) CheckBounds(dataOffset uint32, fileSize int64) error {
	if d.Length == 0 || d.Length > MaxFrameBytes {
		return splasherr.Corruptf("frame length %d outside (0, %d]", d.Length, MaxFrameBytes)
	}
	start, end, ok := d.Bounds(dataOffset)
	if !ok || fileSize < 0 || end > uint64(fileSize) {
		return splasherr.Corruptf("frame [%d, %d) beyond end of %d byte file", start, end, fileSize)
	}
	return nil
}
