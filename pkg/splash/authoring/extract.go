package authoring

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/playback"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// Fit modes for Extract
const (
	FitLetterbox = "letterbox" // scale to fit, pad with the background
	FitFill      = "fill"      // scale to cover, crop the overflow
	FitCenter    = "center"    // no scaling, centred and clipped
)

// SequenceFileName is the loose manifest Extract writes.
const SequenceFileName = "sequence.anim.json"

// ExtractOptions tunes Extract.
type ExtractOptions struct {
	Width, Height int
	Fit           string
	Background    string
	Prefix        string
	// FrameDurationUs overrides the source timing when non-zero.
	FrameDurationUs uint32
	LoopCount       uint32
	MaxFrames       int
	Progress        func(done, total int)
}

func (o *ExtractOptions) defaults() {
	if o.Width == 0 {
		o.Width = playback.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = playback.DefaultHeight
	}
	if o.Fit == "" {
		o.Fit = FitLetterbox
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Prefix == "" {
		o.Prefix = "frame_"
	}
	if o.MaxFrames <= 0 || o.MaxFrames > format.MaxFrameCount {
		o.MaxFrames = format.MaxFrameCount
	}
}

// ParseBackground parses a #RRGGBB colour.
func ParseBackground(s string) (color.RGBA, error) {
	if !backgroundPattern.MatchString(s) {
		return color.RGBA{}, fmt.Errorf("%w: background %q, want #RRGGBB", splasherr.ErrInvalidArgument, s)
	}
	v, _ := strconv.ParseUint(s[1:], 16, 32)
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// sourceFrame is one decoded input frame with its delay.
type sourceFrame struct {
	img     image.Image
	delayUs uint32
}

// Extract converts an image or animated GIF into BMP frames plus a loose
// manifest in outDir.
func Extract(inputPath, outDir string, opts ExtractOptions, logger hclog.Logger) (*Document, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	opts.defaults()
	if opts.Width > playback.MaxDimension || opts.Height > playback.MaxDimension || opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("%w: output size %dx%d", splasherr.ErrOutOfRange, opts.Width, opts.Height)
	}
	switch opts.Fit {
	case FitLetterbox, FitFill, FitCenter:
	default:
		return nil, fmt.Errorf("%w: fit mode %q", splasherr.ErrInvalidArgument, opts.Fit)
	}
	bg, err := ParseBackground(opts.Background)
	if err != nil {
		return nil, err
	}

	frames, err := readSource(inputPath)
	if err != nil {
		return nil, err
	}
	if len(frames) > opts.MaxFrames {
		logger.Warn("⚠️ Truncating frames", "available", len(frames), "max", opts.MaxFrames)
		frames = frames[:opts.MaxFrames]
	}
	logger.Info("🎞️ Source decoded", "path", inputPath, "frames", len(frames))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, splasherr.IOf(err, "create %s", outDir)
	}

	doc := NewDocument()
	doc.LogicalWidth = uint32(opts.Width)
	doc.LogicalHeight = uint32(opts.Height)
	doc.LoopCount = opts.LoopCount
	doc.Background = strings.ToUpper(opts.Background)
	doc.Scaling = playback.ScalingLetterbox
	if opts.Fit == FitFill {
		doc.Scaling = playback.ScalingFill
	}
	switch {
	case opts.FrameDurationUs > 0:
		doc.FrameDurationUs = opts.FrameDurationUs
	case frames[0].delayUs > 0:
		doc.FrameDurationUs = frames[0].delayUs
	}

	for i, frame := range frames {
		canvas := FitImage(frame.img, opts.Width, opts.Height, opts.Fit, bg)
		name := fmt.Sprintf("%s%04d.bmp", opts.Prefix, i+1)
		if err := writeBMP(filepath.Join(outDir, name), canvas); err != nil {
			return nil, err
		}

		entry := FrameEntry{Path: name}
		if opts.FrameDurationUs == 0 && frame.delayUs > 0 && frame.delayUs != doc.FrameDurationUs {
			entry.DurationUs = frame.delayUs
		}
		doc.Frames = append(doc.Frames, entry)
		logger.Trace("🖼️ Frame extracted", "index", i+1, "file", name)
		if opts.Progress != nil {
			opts.Progress(i+1, len(frames))
		}
	}

	data, err := doc.Indented()
	if err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(outDir, SequenceFileName)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return nil, splasherr.IOf(err, "write %s", manifestPath)
	}
	logger.Info("✅ Frames extracted", "dir", outDir, "frames", len(doc.Frames), "manifest", manifestPath)
	return doc, nil
}

func readSource(path string) ([]sourceFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, splasherr.IOf(err, "open %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".gif") {
		g, err := gif.DecodeAll(f)
		if err != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", splasherr.ErrUnsupported, path, err)
		}
		return compositeGIF(g), nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", splasherr.ErrUnsupported, path, err)
	}
	return []sourceFrame{{img: img}}, nil
}

// compositeGIF renders every GIF frame onto the full logical screen,
// honouring the disposal method of the frame before it.
func compositeGIF(g *gif.GIF) []sourceFrame {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)

	frames := make([]sourceFrame, 0, len(g.Image))
	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		var delay uint32
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = uint32(g.Delay[i]) * 10000
		}
		frames = append(frames, sourceFrame{img: cloneRGBA(canvas), delayUs: delay})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return frames
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// FitImage places img on a width×height canvas filled with bg.
func FitImage(img image.Image, width, height int, fit string, bg color.RGBA) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	sb := img.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return canvas
	}

	src := img
	if fit != FitCenter {
		sx := float64(width) / float64(sw)
		sy := float64(height) / float64(sh)
		scale := math.Min(sx, sy)
		if fit == FitFill {
			scale = math.Max(sx, sy)
		}
		nw := int(math.Max(1, math.Round(float64(sw)*scale)))
		nh := int(math.Max(1, math.Round(float64(sh)*scale)))
		if nw != sw || nh != sh {
			src = resize.Resize(uint(nw), uint(nh), img, resize.Lanczos3)
		}
	}

	rb := src.Bounds()
	// Centre the source on the canvas; negative offsets crop it.
	offset := image.Pt((width-rb.Dx())/2, (height-rb.Dy())/2)
	dstRect := rb.Sub(rb.Min).Add(offset)
	draw.Draw(canvas, dstRect, src, rb.Min, draw.Over)
	return canvas
}

func writeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return splasherr.IOf(err, "create %s", path)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return splasherr.IOf(err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		return splasherr.IOf(err, "close %s", path)
	}
	return nil
}
