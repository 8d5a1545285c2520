package playback

import (
	"fmt"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/loose"
	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// FrameLoader decodes frames on demand.
type FrameLoader interface {
	FrameCount() int
	// LoadFrame decodes frame i into target and returns its stored duration,
	// 0 when the frame has none.
	LoadFrame(i int, target *decode.FrameBuffer) (durationUs uint32, err error)
}

// PackageLoader reads frames from an open package.
type PackageLoader struct {
	pkg *format.Package
}

// NewPackageLoader creates a loader over pkg. The caller keeps ownership of pkg.
func NewPackageLoader(pkg *format.Package) *PackageLoader {
	return &PackageLoader{pkg: pkg}
}

func (l *PackageLoader) FrameCount() int { return len(l.pkg.Frames) }

func (l *PackageLoader) LoadFrame(i int, target *decode.FrameBuffer) (uint32, error) {
	payload, err := l.pkg.ReadFrame(i)
	if err != nil {
		return 0, err
	}
	if err := decode.Decode(payload, l.pkg.Header.Format(), target); err != nil {
		return 0, fmt.Errorf("decode frame %d: %w", i, err)
	}
	return l.pkg.Frames[i].DurationUs, nil
}

// LooseLoader reads one file per frame.
type LooseLoader struct {
	root    platform.Root
	entries []loose.Entry
}

// NewLooseLoader creates a loader for entries on root.
func NewLooseLoader(root platform.Root, entries []loose.Entry) *LooseLoader {
	return &LooseLoader{root: root, entries: entries}
}

func (l *LooseLoader) FrameCount() int { return len(l.entries) }

func (l *LooseLoader) LoadFrame(i int, target *decode.FrameBuffer) (uint32, error) {
	if i < 0 || i >= len(l.entries) {
		return 0, fmt.Errorf("%w: frame %d of %d", splasherr.ErrOutOfRange, i, len(l.entries))
	}
	entry := l.entries[i]

	payload, err := readFrameFile(l.root, entry.Path)
	if err != nil {
		return 0, err
	}
	if decode.IsBMP(payload) {
		err = decode.DecodeBMP(payload, target)
	} else {
		err = decode.DecodeRaw(payload, target)
	}
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", entry.Path, err)
	}
	return entry.DurationUs, nil
}

func readFrameFile(root platform.Root, path string) ([]byte, error) {
	f, err := root.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, err := f.Size()
	if err != nil {
		return nil, splasherr.IOf(err, "size of %s", path)
	}
	if size <= 0 || size > format.MaxFrameBytes {
		return nil, splasherr.Corruptf("frame file %s is %d bytes, want 1..%d", path, size, format.MaxFrameBytes)
	}

	payload := make([]byte, size)
	if err := platform.ReadFull(f, payload, 0); err != nil {
		return nil, platform.ReadError(err, "read %s", path)
	}
	return payload, nil
}
