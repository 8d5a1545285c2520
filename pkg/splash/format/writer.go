package format

import (
	"fmt"
	"io"
	"math"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// FrameSource supplies one frame payload to the writer. Size must match the
// number of bytes Load returns.
type FrameSource struct {
	Name       string
	Size       int64
	DurationUs uint32
	Load       func() ([]byte, error)
}

// PackageSpec describes a package to write.
type PackageSpec struct {
	LogicalWidth    uint32
	LogicalHeight   uint32
	PixelFormat     decode.PixelFormat
	FrameDurationUs uint32 // stored as a rounded frame rate
	LoopCount       uint32
	Manifest        []byte // embedded verbatim when non-empty
	Frames          []FrameSource
}

// Writer lays out packages.
type Writer struct {
	logger hclog.Logger

	// Progress, if set, is called after each frame payload is written.
	Progress func(done, total int)
}

// NewWriter creates a package writer
func NewWriter(logger hclog.Logger) *Writer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Writer{logger: logger}
}

// Layout computes the header for spec without writing anything.
func Layout(spec *PackageSpec) (*Header, []FrameDescriptor, error) {
	n := len(spec.Frames)
	if n == 0 || n > MaxFrameCount {
		return nil, nil, fmt.Errorf("%w: %d frames, want 1..%d", splasherr.ErrOutOfRange, n, MaxFrameCount)
	}
	if len(spec.Manifest) > MaxManifestBytes {
		return nil, nil, fmt.Errorf("%w: manifest is %d bytes, limit %d",
			splasherr.ErrResourceExhausted, len(spec.Manifest), MaxManifestBytes)
	}

	h := NewHeader()
	h.ManifestSize = uint32(len(spec.Manifest))
	h.FrameCount = uint32(n)
	h.LogicalWidth = spec.LogicalWidth
	h.LogicalHeight = spec.LogicalHeight
	h.PixelFormat = uint32(spec.PixelFormat)
	h.LoopCount = spec.LoopCount
	if spec.FrameDurationUs > 0 {
		h.TargetFPS = uint32(math.Round(1e6 / float64(spec.FrameDurationUs)))
	}
	if h.HasManifest() {
		h.Flags |= FlagManifest
	}
	if spec.PixelFormat == decode.FormatBGRA32 {
		h.Flags |= FlagRawPixels
	}

	tableOffset := AlignOffset(HeaderSize+int64(len(spec.Manifest)), Alignment)
	dataOffset := AlignOffset(tableOffset+int64(n)*DescriptorSize, Alignment)
	if dataOffset > math.MaxUint32 {
		return nil, nil, fmt.Errorf("%w: frame data offset %d", splasherr.ErrOutOfRange, dataOffset)
	}
	h.FrameTableOffset = uint32(tableOffset)
	h.FrameDataOffset = uint32(dataOffset)

	frames := make([]FrameDescriptor, n)
	var offset uint64
	for i, src := range spec.Frames {
		if src.Size <= 0 || src.Size > MaxFrameBytes {
			return nil, nil, fmt.Errorf("%w: frame %d (%s) is %d bytes, want 1..%d",
				splasherr.ErrOutOfRange, i, src.Name, src.Size, MaxFrameBytes)
		}
		frames[i] = FrameDescriptor{
			Offset:     offset,
			Length:     uint32(src.Size),
			DurationUs: src.DurationUs,
		}
		offset += uint64(src.Size)
	}
	return h, frames, nil
}

// Write lays out spec and streams the package to out.
func (w *Writer) Write(out io.Writer, spec *PackageSpec) (*Header, error) {
	h, frames, err := Layout(spec)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("📐 Package layout",
		"frames", h.FrameCount,
		"manifest_bytes", h.ManifestSize,
		"table_offset", h.FrameTableOffset,
		"data_offset", h.FrameDataOffset,
		"fps", h.TargetFPS)

	cw := &countingWriter{w: out}
	if _, err := cw.Write(h.Pack()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if _, err := cw.Write(spec.Manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := cw.padTo(int64(h.FrameTableOffset)); err != nil {
		return nil, err
	}
	for i := range frames {
		if _, err := cw.Write(frames[i].Pack()); err != nil {
			return nil, fmt.Errorf("write frame table: %w", err)
		}
	}
	if err := cw.padTo(int64(h.FrameDataOffset)); err != nil {
		return nil, err
	}

	for i, src := range spec.Frames {
		data, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("load frame %d (%s): %w", i, src.Name, err)
		}
		if int64(len(data)) != src.Size {
			return nil, fmt.Errorf("%w: frame %d (%s) changed size: %d != %d",
				splasherr.ErrCorruptData, i, src.Name, len(data), src.Size)
		}
		if _, err := cw.Write(data); err != nil {
			return nil, fmt.Errorf("write frame %d: %w", i, err)
		}
		w.logger.Trace("🖼️ Frame written", "index", i, "name", src.Name, "bytes", len(data))
		if w.Progress != nil {
			w.Progress(i+1, len(spec.Frames))
		}
	}

	w.logger.Info("✅ Package written", "frames", h.FrameCount, "bytes", cw.n)
	return h, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (c *countingWriter) padTo(offset int64) error {
	if offset < c.n {
		return fmt.Errorf("%w: cannot pad back to %d from %d", splasherr.ErrInvalidArgument, offset, c.n)
	}
	if offset == c.n {
		return nil
	}
	_, err := c.Write(make([]byte, offset-c.n))
	return err
}
