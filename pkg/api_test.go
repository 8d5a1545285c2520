package pkg

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/bootsplash/pkg/splash/authoring"
	"github.com/provide-io/bootsplash/pkg/splash/boot"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
	"github.com/provide-io/bootsplash/pkg/splash/splashtest"
)

func quietLogger() hclog.Logger { return hclog.NewNullLogger() }

// buildESP lays out a boot volume with a packed splash and a next stage image.
func buildESP(t *testing.T) (dir, pkgPath string) {
	t.Helper()
	src := t.TempDir()
	for i, c := range []color.NRGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}} {
		name := filepath.Join(src, fmt.Sprintf("f%d.raw", i))
		require.NoError(t, os.WriteFile(name, splashtest.SolidRaw(4, 4, c), 0o644))
	}
	manifest := filepath.Join(src, "anim.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{
		"logical_width": 4, "logical_height": 4, "loop_count": 2, "frame_duration_us": 20000,
		"frames": [{"path": "f0.raw"}, {"path": "f1.raw"}, {"path": "f2.raw"}]
	}`), 0o644))

	dir = t.TempDir()
	pkgPath = filepath.Join(dir, "EFI", "BootSplash", "splash.anim")
	_, err := BuildPackageWithOptions(manifest, pkgPath, authoring.BuildOptions{}, quietLogger())
	require.NoError(t, err)

	next := filepath.Join(dir, "EFI", "Microsoft", "Boot", "bootmgfw.efi")
	require.NoError(t, os.MkdirAll(filepath.Dir(next), 0o755))
	require.NoError(t, os.WriteFile(next, []byte("MZ"), 0o644))
	return dir, pkgPath
}

func TestVerifyPackage(t *testing.T) {
	_, pkgPath := buildESP(t)

	report, err := VerifyPackageWithLogger(pkgPath, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Frames)
	assert.Equal(t, 3, report.Decoded)
	assert.Equal(t, uint32(2), report.Config.LoopCount)

	data, err := os.ReadFile(pkgPath)
	require.NoError(t, err)
	// Chop the last frame short by one pixel's worth of bytes.
	truncated := filepath.Join(t.TempDir(), "bad.anim")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)-4], 0o644))
	_, err = VerifyPackageWithLogger(truncated, quietLogger())
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.ErrorIs(t, err, splasherr.ErrCorruptData)

	_, err = VerifyPackageWithLogger(filepath.Join(t.TempDir(), "none.anim"), quietLogger())
	assert.ErrorIs(t, err, splasherr.ErrNotFound)
}

func TestBootWithOptions(t *testing.T) {
	dir, _ := buildESP(t)
	clock := &splashtest.FakeClock{}
	display := splashtest.NewRecordingDisplay(640, 480)

	report, err := BootWithOptions(BootOptions{
		DefaultVolume: dir,
		Display:       display,
		Clock:         clock,
		Logger:        quietLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, report.Played)
	assert.Equal(t, boot.SourcePackage, report.Played.Source)
	assert.Len(t, display.Blits, 6)
	assert.Equal(t, 1, display.Restored)
	assert.Len(t, clock.Sleeps, 6)
}

func TestBootWithOptionsErrors(t *testing.T) {
	_, err := BootWithOptions(BootOptions{Logger: quietLogger()})
	assert.ErrorIs(t, err, splasherr.ErrInvalidArgument)

	_, err = BootWithOptions(BootOptions{DefaultVolume: t.TempDir(), Volumes: []string{"bad"}, Logger: quietLogger()})
	assert.ErrorIs(t, err, splasherr.ErrInvalidArgument)

	report, err := BootWithOptions(BootOptions{DefaultVolume: t.TempDir(), Clock: &splashtest.FakeClock{}, Logger: quietLogger()})
	assert.ErrorIs(t, err, splasherr.ErrNotFound, "missing next stage image is the only surfaced failure")
	require.NotNil(t, report)
	assert.Nil(t, report.Played)
}
