package format

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/pkg/splash/litetext"
	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// Package is an open, validated animation package. It owns its file until
// Close is called.
type Package struct {
	Path     string
	Header   Header
	Frames   []FrameDescriptor
	Manifest litetext.Text // nil unless the header declares one
	FileSize int64

	file   platform.File
	logger hclog.Logger
}

// Open opens and validates the package at path on root.
func Open(root platform.Root, path string, logger hclog.Logger) (*Package, error) {
	if root == nil || path == "" {
		return nil, fmt.Errorf("%w: open package %q", splasherr.ErrInvalidArgument, path)
	}
	f, err := root.Open(path)
	if err != nil {
		return nil, err
	}
	pkg, err := Load(f, logger)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	pkg.Path = path
	return pkg, nil
}

// Load validates the package held by f and indexes its frame table. On
// failure f is closed before the error is returned; on success the returned
// package owns f.
func Load(f platform.File, logger hclog.Logger) (pkg *Package, err error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil package file", splasherr.ErrInvalidArgument)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	p := &Package{file: f, logger: logger}

	raw := make([]byte, HeaderSize)
	if err := platform.ReadFull(f, raw, 0); err != nil {
		return nil, platform.ReadError(err, "read header")
	}
	if err := p.Header.Unpack(raw); err != nil {
		return nil, err
	}
	if err := p.Header.Validate(); err != nil {
		return nil, err
	}
	h := &p.Header

	p.FileSize, err = f.Size()
	if err != nil {
		return nil, splasherr.IOf(err, "package size")
	}

	logger.Debug("📦 Package header",
		"version", fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor),
		"frames", h.FrameCount,
		"size", fmt.Sprintf("%dx%d", h.LogicalWidth, h.LogicalHeight),
		"format", h.Format(),
		"fps", h.TargetFPS,
		"file_size", p.FileSize)

	if h.HasManifest() {
		if h.ManifestSize > MaxManifestBytes {
			return nil, fmt.Errorf("%w: embedded manifest is %d bytes, limit %d",
				splasherr.ErrResourceExhausted, h.ManifestSize, MaxManifestBytes)
		}
		text := make([]byte, h.ManifestSize)
		if err := platform.ReadFull(f, text, HeaderSize); err != nil {
			return nil, platform.ReadError(err, "read embedded manifest")
		}
		p.Manifest = litetext.New(text)
		logger.Trace("📜 Embedded manifest", "bytes", h.ManifestSize)
	}

	table := make([]byte, int(h.FrameCount)*DescriptorSize)
	if err := platform.ReadFull(f, table, int64(h.FrameTableOffset)); err != nil {
		return nil, platform.ReadError(err, "read frame table at %d", h.FrameTableOffset)
	}

	if int64(h.FrameDataOffset) >= p.FileSize {
		return nil, splasherr.Corruptf("frame data offset %d beyond end of %d byte file", h.FrameDataOffset, p.FileSize)
	}

	p.Frames = make([]FrameDescriptor, h.FrameCount)
	for i := range p.Frames {
		d := &p.Frames[i]
		if err := d.Unpack(table[i*DescriptorSize : (i+1)*DescriptorSize]); err != nil {
			return nil, err
		}
		if err := d.CheckBounds(h.FrameDataOffset, p.FileSize); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	logger.Debug("✅ Package indexed", "frames", len(p.Frames))
	return p, nil
}

// ReadFrame reads the payload of frame i.
func (p *Package) ReadFrame(i int) ([]byte, error) {
	if p.file == nil {
		return nil, fmt.Errorf("%w: package is closed", splasherr.ErrInvalidArgument)
	}
	if i < 0 || i >= len(p.Frames) {
		return nil, fmt.Errorf("%w: frame %d of %d", splasherr.ErrOutOfRange, i, len(p.Frames))
	}

	d := p.Frames[i]
	start, _, _ := d.Bounds(p.Header.FrameDataOffset)
	payload := make([]byte, d.Length)
	if err := platform.ReadFull(p.file, payload, int64(start)); err != nil {
		return nil, platform.ReadError(err, "read frame %d", i)
	}
	return payload, nil
}

// Close releases the package file. It is safe to call more than once.
func (p *Package) Close() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	p.Frames = nil
	p.Manifest = nil
	return err
}
