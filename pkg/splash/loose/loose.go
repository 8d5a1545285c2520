// Package loose resolves loose manifests: text files listing one image file
// per frame.
//
//	{"logical_width": 640, "frames": [{"path": "f0.bmp", "duration_us": 50000}, {"path": "f1.bmp"}]}
//
// The frame list is found with the same first-match scanning as every other
// key, so neither nested arrays nor nested objects are understood.
package loose

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/pkg/splash/litetext"
	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// Separator is the boot path separator.
const Separator = '\\'

// MaxPathBytes is the longest frame path read from a manifest.
const MaxPathBytes = 255

// Entry is one frame of a loose manifest.
type Entry struct {
	Path       string // absolute on the manifest's volume
	DurationUs uint32 // 0 when the manifest gives none
}

// NormalizeSeparators turns forward slashes into the boot separator.
func NormalizeSeparators(path string) string {
	return strings.ReplaceAll(path, "/", string(Separator))
}

// Directory returns the directory part of path, ending in a separator.
// A path without a separator yields the volume root.
func Directory(path string) string {
	path = NormalizeSeparators(path)
	i := strings.LastIndexByte(path, Separator)
	if i < 0 {
		return string(Separator)
	}
	return path[:i+1]
}

// JoinPaths resolves child against dir. Absolute children are kept as is.
func JoinPaths(dir, child string) string {
	child = NormalizeSeparators(child)
	if strings.HasPrefix(child, string(Separator)) {
		return child
	}
	dir = NormalizeSeparators(dir)
	if dir == "" {
		dir = string(Separator)
	}
	if !strings.HasSuffix(dir, string(Separator)) {
		dir += string(Separator)
	}
	return dir + child
}

// Resolve extracts the frame list from manifest text. manifestPath locates
// relative frame paths. A missing "frames" key or an empty list is
// ErrNotFound; a malformed list is ErrCorruptData.
func Resolve(text litetext.Text, manifestPath string) ([]Entry, error) {
	at := text.FindKey("frames")
	if at < 0 {
		return nil, fmt.Errorf("%w: no frames key", splasherr.ErrNotFound)
	}

	rest := text[at:]
	open := bytes.IndexByte(rest, '[')
	end := bytes.IndexByte(rest, ']')
	if open < 0 || end < 0 || end <= open {
		return nil, splasherr.Corruptf("frames array is not bracketed")
	}
	list := rest[open+1 : end]

	count := bytes.Count(list, []byte{'{'})
	if count == 0 {
		return nil, fmt.Errorf("%w: frames array is empty", splasherr.ErrNotFound)
	}

	base := Directory(manifestPath)
	entries := make([]Entry, 0, count)
	cursor := 0
	for len(entries) < count {
		o := bytes.IndexByte(list[cursor:], '{')
		if o < 0 {
			break
		}
		o += cursor
		c := bytes.IndexByte(list[o:], '}')
		if c < 0 {
			return nil, splasherr.Corruptf("frame object %d is not closed", len(entries))
		}
		c += o

		entry, err := parseEntry(litetext.Text(list[o:c+1]), base)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(entries), err)
		}
		entries = append(entries, entry)
		cursor = c + 1
	}

	if len(entries) != count {
		return nil, splasherr.Corruptf("parsed %d of %d frame objects", len(entries), count)
	}
	return entries, nil
}

func parseEntry(obj litetext.Text, base string) (Entry, error) {
	path, ok := obj.String("path", MaxPathBytes)
	if !ok || path == "" {
		return Entry{}, splasherr.Corruptf("frame object has no path")
	}
	e := Entry{Path: JoinPaths(base, path)}
	if d, ok := obj.Uint("duration_us"); ok {
		if d > math.MaxUint32 {
			d = math.MaxUint32
		}
		e.DurationUs = uint32(d)
	}
	return e, nil
}

// ReadManifest reads and resolves the manifest at path on root. The text is
// returned for configuration overrides.
func ReadManifest(root platform.Root, path string, logger hclog.Logger) (litetext.Text, []Entry, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	raw, err := platform.ReadTextFile(root, path)
	if err != nil {
		return nil, nil, err
	}
	text := litetext.New(raw)
	entries, err := Resolve(text, path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("📜 Loose manifest resolved", "path", path, "frames", len(entries), "base", Directory(path))
	return text, entries, nil
}
