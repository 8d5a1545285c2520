package playback

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/loose"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
	"github.com/provide-io/bootsplash/pkg/splash/splashtest"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestPlayPackage(t *testing.T) {
	data := splashtest.PackageBytes(t, format.PackageSpec{
		LogicalWidth:  2,
		LogicalHeight: 2,
		PixelFormat:   decode.FormatBGRA32,
		LoopCount:     3,
		Manifest:      []byte(`{"loop_count": 2, "scaling": "fill"}`),
	},
		splashtest.Frame{Data: splashtest.SolidRaw(2, 2, red), DurationUs: 20000},
		splashtest.Frame{Data: splashtest.SolidRaw(2, 2, blue)},
	)
	vols := splashtest.NewMemVolumes().Put("", `\splash.anim`, data)
	root, err := vols.OpenRoot("")
	require.NoError(t, err)

	r := newRig(t)
	require.NoError(t, r.engine.PlayPackage(root, `\splash.anim`))

	require.Len(t, r.display.Blits, 4, "embedded manifest overrides the header loop count")
	assert.Equal(t, 0, r.display.Blits[0].X, "fill pins the frame to the origin")
	assert.Equal(t, splashtest.SolidRaw(2, 2, blue), r.display.Blits[1].Pix)
	assert.Equal(t, int64(20000), r.clock.Sleeps[0].Microseconds())
	assert.Equal(t, int64(DefaultFrameDurationUs), r.clock.Sleeps[1].Microseconds())
	assert.Zero(t, vols.OpenFiles())
}

func TestPlayPackageClosesOnFailure(t *testing.T) {
	data := splashtest.PackageBytes(t, format.PackageSpec{
		LogicalWidth:  3,
		LogicalHeight: 2,
		PixelFormat:   decode.FormatBGRA32,
		LoopCount:     1,
	}, splashtest.Frame{Data: splashtest.SolidRaw(2, 2, red)})
	vols := splashtest.NewMemVolumes().Put("", `\splash.anim`, data)
	root, err := vols.OpenRoot("")
	require.NoError(t, err)

	r := newRig(t)
	err = r.engine.PlayPackage(root, `\splash.anim`)
	assert.ErrorIs(t, err, splasherr.ErrCorruptData, "2x2 payload in a 3x2 package")
	assert.Zero(t, vols.OpenFiles())
}

func TestPlayLoose(t *testing.T) {
	bmp := splashtest.EncodeBMP(t, splashtest.SolidImage(2, 2, blue))
	vols := splashtest.NewMemVolumes().
		Put("", `\EFI\BootSplash\sequence.anim.json`, []byte(`{
			"logical_width": 2, "logical_height": 2, "loop_count": 1,
			"frames": [{"path": "f0.bin", "duration_us": 50000}, {"path": "frames/f1.bmp"}]
		}`)).
		Put("", `\EFI\BootSplash\f0.bin`, splashtest.SolidRaw(2, 2, red)).
		Put("", `\EFI\BootSplash\frames\f1.bmp`, bmp)
	root, err := vols.OpenRoot("")
	require.NoError(t, err)

	r := newRig(t)
	require.NoError(t, r.engine.PlayLoose(root, `\EFI\BootSplash\sequence.anim.json`))

	require.Len(t, r.display.Blits, 2)
	assert.Equal(t, splashtest.SolidRaw(2, 2, red), r.display.Blits[0].Pix)
	assert.Equal(t, splashtest.SolidRaw(2, 2, blue), r.display.Blits[1].Pix)
	assert.Equal(t, int64(50000), r.clock.Sleeps[0].Microseconds())
	assert.Equal(t, int64(DefaultFrameDurationUs), r.clock.Sleeps[1].Microseconds())
	assert.Zero(t, vols.OpenFiles())
}

func TestLooseLoaderRejectsBadFiles(t *testing.T) {
	vols := splashtest.NewMemVolumes().
		Put("", `\empty.bin`, []byte{}).
		Put("", `\short.bin`, []byte{1, 2, 3})
	root, err := vols.OpenRoot("")
	require.NoError(t, err)

	loader := NewLooseLoader(root, []loose.Entry{{Path: `\empty.bin`}, {Path: `\short.bin`}, {Path: `\gone.bin`}})
	fb, err := decode.NewFrameBuffer(2, 2)
	require.NoError(t, err)

	_, err = loader.LoadFrame(0, fb)
	assert.ErrorIs(t, err, splasherr.ErrCorruptData)
	_, err = loader.LoadFrame(1, fb)
	assert.ErrorIs(t, err, splasherr.ErrCorruptData)
	_, err = loader.LoadFrame(2, fb)
	assert.ErrorIs(t, err, splasherr.ErrNotFound)
	_, err = loader.LoadFrame(3, fb)
	assert.ErrorIs(t, err, splasherr.ErrOutOfRange)
	assert.Zero(t, vols.OpenFiles())
}
