// Package format reads and writes animation packages.
//
// A package is a single file laid out as
//
//	header (76 bytes) | embedded manifest text | frame table | frame data
//
// All integers are little-endian and fields are packed without padding.
package format

// Core format constants
const (
	HeaderSize     = 76 // fixed header block
	DescriptorSize = 16 // one frame table entry
	Alignment      = 32 // writer alignment of the frame table and data region

	VersionMajor = 1
	VersionMinor = 0

	MaxFrameCount    = 4096
	MaxFrameBytes    = 16 * 1024 * 1024
	MaxManifestBytes = 256 * 1024
	MaxDimension     = 1920
)

// Header flags
const (
	FlagManifest  = 0x1 // embedded manifest text present
	FlagRawPixels = 0x2 // frames are tight BGRA32
)

// Magic identifies a package file.
var Magic = [8]byte{'A', 'B', 'A', 'N', 'I', 'M', 0, 0}

// AlignOffset rounds offset up to a multiple of alignment.
func AlignOffset(offset, alignment int64) int64 {
	if alignment <= 1 {
		return offset
	}
	return (offset + alignment - 1) / alignment * alignment
}
