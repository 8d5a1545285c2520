package authoring

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/litetext"
	"github.com/provide-io/bootsplash/pkg/splash/loose"
	"github.com/provide-io/bootsplash/pkg/splash/playback"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
	"github.com/provide-io/bootsplash/pkg/splash/splashtest"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"logical_width": 800,
		"loop_count": 0,
		"allow_key_skip": false,
		"frames": [{"path": "a.bmp", "duration_us": 20000}, {"path": "b.bmp"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, uint32(800), doc.LogicalWidth)
	assert.Equal(t, uint32(playback.DefaultHeight), doc.LogicalHeight)
	assert.Equal(t, uint32(0), doc.LoopCount)
	assert.False(t, doc.AllowKeySkip)
	assert.Equal(t, DefaultBackground, doc.Background)
	assert.Equal(t, []FrameEntry{{Path: "a.bmp", DurationUs: 20000}, {Path: "b.bmp"}}, doc.Frames)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{"frames": [`, splasherr.ErrCorruptData},
		{"not an object", `[1, 2]`, splasherr.ErrCorruptData},
		{"no frames", `{"logical_width": 10}`, splasherr.ErrInvalidArgument},
		{"frame without path", `{"frames": [{"duration_us": 1}]}`, splasherr.ErrCorruptData},
		{"too wide", `{"logical_width": 4000, "frames": [{"path": "a"}]}`, splasherr.ErrOutOfRange},
		{"bad background", `{"background": "red", "frames": [{"path": "a"}]}`, splasherr.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDocumentReadableAtBoot(t *testing.T) {
	doc := NewDocument()
	doc.LogicalWidth = 1024
	doc.LoopCount = 7
	doc.Scaling = playback.ScalingFill
	doc.Frames = []FrameEntry{{Path: "frames/f0.bmp", DurationUs: 50000}, {Path: "frames/f1.bmp"}}

	for _, encode := range []func() ([]byte, error){doc.Compact, doc.Indented} {
		data, err := encode()
		require.NoError(t, err)
		text := litetext.New(data)

		cfg := playback.Defaults()
		cfg.ApplyOverrides(text)
		assert.Equal(t, uint32(1024), cfg.Width)
		assert.Equal(t, uint32(7), cfg.LoopCount)
		assert.Equal(t, playback.ScalingFill, cfg.Scaling)

		entries, err := loose.Resolve(text, `\EFI\BootSplash\sequence.anim.json`)
		require.NoError(t, err)
		assert.Equal(t, []loose.Entry{
			{Path: `\EFI\BootSplash\frames\f0.bmp`, DurationUs: 50000},
			{Path: `\EFI\BootSplash\frames\f1.bmp`},
		}, entries)
	}
}

func TestBuildPackage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "frames"), 0o755))
	for name, c := range map[string]color.NRGBA{"f0.bmp": red, "f1.bmp": blue} {
		data := splashtest.EncodeBMP(t, splashtest.SolidImage(4, 2, c))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "frames", name), data, 0o644))
	}
	manifest := filepath.Join(dir, "anim.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{
		"logical_width": 4, "logical_height": 2, "frame_duration_us": 40000,
		"frames": [{"path": "frames/f0.bmp"}, {"path": "frames/f1.bmp", "duration_us": 80000}]
	}`), 0o644))

	var progress []int
	out := filepath.Join(dir, "out", "splash.anim")
	header, err := BuildPackage(manifest, out, BuildOptions{Progress: func(done, _ int) { progress = append(progress, done) }}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, progress)
	assert.Equal(t, uint32(25), header.TargetFPS)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	pkg, err := format.Load(splashtest.OpenBytes(data), nil)
	require.NoError(t, err)
	defer pkg.Close()

	assert.Equal(t, decode.FormatBMP, pkg.Header.Format())
	assert.Equal(t, uint16(format.FlagManifest), pkg.Header.Flags)
	assert.Equal(t, uint32(80000), pkg.Frames[1].DurationUs)

	payload, err := pkg.ReadFrame(1)
	require.NoError(t, err)
	fb, err := decode.NewFrameBuffer(4, 2)
	require.NoError(t, err)
	require.NoError(t, decode.DecodeBMP(payload, fb))
	assert.Equal(t, splashtest.SolidRaw(4, 2, blue), fb.Pix)
}

func TestBuildPackageRawSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f0.raw"), make([]byte, 10), 0o644))
	manifest := filepath.Join(dir, "anim.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"logical_width": 2, "logical_height": 2, "frames": [{"path": "f0.raw"}]}`), 0o644))

	_, err := BuildPackage(manifest, filepath.Join(dir, "splash.anim"), BuildOptions{}, nil)
	assert.ErrorIs(t, err, splasherr.ErrCorruptData)
	assert.NoFileExists(t, filepath.Join(dir, "splash.anim"))
	assert.Equal(t, decode.FormatBGRA32, PixelFormatFor("X.RAW"))
}

func TestFitImage(t *testing.T) {
	bg := color.RGBA{B: 255, A: 255}
	src := splashtest.SolidImage(8, 4, red)

	letterbox := FitImage(src, 4, 4, FitLetterbox, bg)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, letterbox.RGBAAt(0, 0), "padding uses the background")
	assert.Greater(t, letterbox.RGBAAt(2, 2).R, uint8(200))

	fill := FitImage(src, 4, 4, FitFill, bg)
	assert.Greater(t, fill.RGBAAt(0, 0).R, uint8(200), "fill covers the canvas")

	center := FitImage(splashtest.SolidImage(2, 2, red), 4, 4, FitCenter, bg)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, center.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, center.RGBAAt(3, 3))
}

func TestParseBackground(t *testing.T) {
	c, err := ParseBackground("#10A0fF")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0xA0, B: 0xFF, A: 0xFF}, c)

	_, err = ParseBackground("10A0FF")
	assert.ErrorIs(t, err, splasherr.ErrInvalidArgument)
}

func writeGIF(t *testing.T, path string) {
	palette := color.Palette{color.RGBA{A: 255}, color.RGBA{R: 255, A: 255}, color.RGBA{G: 255, A: 255}}
	frame := func(idx uint8) *image.Paletted {
		img := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
		for i := range img.Pix {
			img.Pix[i] = idx
		}
		return img
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gif.EncodeAll(f, &gif.GIF{
		Image: []*image.Paletted{frame(1), frame(2)},
		Delay: []int{5, 10},
	}))
}

func TestExtractGIF(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.gif")
	writeGIF(t, input)

	out := filepath.Join(dir, "frames")
	doc, err := Extract(input, out, ExtractOptions{Width: 4, Height: 4}, nil)
	require.NoError(t, err)

	assert.Equal(t, uint32(50000), doc.FrameDurationUs)
	assert.Equal(t, []FrameEntry{{Path: "frame_0001.bmp"}, {Path: "frame_0002.bmp", DurationUs: 100000}}, doc.Frames)

	data, err := os.ReadFile(filepath.Join(out, "frame_0002.bmp"))
	require.NoError(t, err)
	fb, err := decode.NewFrameBuffer(4, 4)
	require.NoError(t, err)
	require.NoError(t, decode.DecodeBMP(data, fb))
	b, g, r, a := fb.At(1, 1)
	assert.Equal(t, []byte{0, 255, 0, 255}, []byte{b, g, r, a})

	manifest, err := os.ReadFile(filepath.Join(out, SequenceFileName))
	require.NoError(t, err)
	parsed, err := ParseDocument(manifest)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
}

func TestExtractPNG(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "logo.png")
	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, splashtest.SolidImage(2, 2, red)))
	require.NoError(t, f.Close())

	doc, err := Extract(input, dir, ExtractOptions{Width: 4, Height: 4, Fit: FitCenter, Background: "#0000ff", Prefix: "logo", LoopCount: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []FrameEntry{{Path: "logo0001.bmp"}}, doc.Frames)
	assert.Equal(t, "#0000FF", doc.Background)
	assert.Equal(t, uint32(3), doc.LoopCount)
	assert.FileExists(t, filepath.Join(dir, "logo0001.bmp"))

	_, err = Extract(input, dir, ExtractOptions{Fit: "stretch"}, nil)
	assert.ErrorIs(t, err, splasherr.ErrInvalidArgument)
}
