package authoring

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// BuildOptions tunes BuildPackage.
type BuildOptions struct {
	// FramesRoot resolves relative frame paths; defaults to the manifest's directory.
	FramesRoot string
	// Progress is called after each frame is written.
	Progress func(done, total int)
}

// PixelFormatFor picks the package pixel format from a frame file name:
// ".raw" frames are tight BGRA, everything else is BMP.
func PixelFormatFor(name string) decode.PixelFormat {
	if strings.EqualFold(filepath.Ext(name), ".raw") {
		return decode.FormatBGRA32
	}
	return decode.FormatBMP
}

// PackageSpecFor turns a document into a writer spec, statting every frame
// under framesRoot.
func PackageSpecFor(doc *Document, framesRoot string) (*format.PackageSpec, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	manifest, err := doc.Compact()
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	spec := &format.PackageSpec{
		LogicalWidth:    doc.LogicalWidth,
		LogicalHeight:   doc.LogicalHeight,
		PixelFormat:     PixelFormatFor(doc.Frames[0].Path),
		FrameDurationUs: doc.FrameDurationUs,
		LoopCount:       doc.LoopCount,
		Manifest:        manifest,
	}
	rawSize := decode.SizeBytes(int(doc.LogicalWidth), int(doc.LogicalHeight))

	for i, entry := range doc.Frames {
		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(framesRoot, filepath.FromSlash(path))
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %w", splasherr.ErrNotFound, i, err)
		}
		if spec.PixelFormat == decode.FormatBGRA32 && uint64(info.Size()) != rawSize {
			return nil, splasherr.Corruptf("raw frame %s is %d bytes, want %d", entry.Path, info.Size(), rawSize)
		}
		spec.Frames = append(spec.Frames, format.FrameSource{
			Name:       entry.Path,
			Size:       info.Size(),
			DurationUs: entry.DurationUs,
			Load:       func() ([]byte, error) { return os.ReadFile(path) },
		})
	}
	return spec, nil
}

// BuildPackage packs the manifest document at manifestPath into outputPath.
func BuildPackage(manifestPath, outputPath string, opts BuildOptions, logger hclog.Logger) (*format.Header, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	logger.Info("📋 Reading manifest", "path", manifestPath)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		logger.Error("❌ Failed to read manifest", "error", err)
		return nil, splasherr.IOf(err, "read manifest")
	}
	doc, err := ParseDocument(data)
	if err != nil {
		logger.Error("❌ Failed to parse manifest", "error", err)
		return nil, err
	}

	framesRoot := opts.FramesRoot
	if framesRoot == "" {
		framesRoot = filepath.Dir(manifestPath)
	}
	spec, err := PackageSpecFor(doc, framesRoot)
	if err != nil {
		logger.Error("❌ Failed to collect frames", "error", err)
		return nil, err
	}
	logger.Debug("🖼️ Frames collected", "count", len(spec.Frames), "format", spec.PixelFormat, "root", framesRoot)

	outputDir := filepath.Dir(outputPath)
	logger.Debug("📁 Ensuring output directory exists", "dir", outputDir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, splasherr.IOf(err, "create output directory")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		logger.Error("❌ Failed to create output file", "error", err)
		return nil, splasherr.IOf(err, "create %s", outputPath)
	}

	w := format.NewWriter(logger.Named("writer"))
	w.Progress = opts.Progress
	header, err := w.Write(out, spec)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = splasherr.IOf(cerr, "close %s", outputPath)
	}
	if err != nil {
		os.Remove(outputPath)
		return nil, err
	}

	logger.Info("📦 Package built", "path", outputPath, "frames", header.FrameCount)
	return header, nil
}
