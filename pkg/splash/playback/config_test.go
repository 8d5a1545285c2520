package playback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/litetext"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, Config{
		Width:           640,
		Height:          360,
		FrameDurationUs: 41666,
		LoopCount:       1,
		AllowKeySkip:    true,
		MaxMemory:       64 << 20,
		Scaling:         "letterbox",
	}, cfg)
}

func TestConfigPrecedence(t *testing.T) {
	header := format.NewHeader()
	header.LogicalWidth = 800
	header.LogicalHeight = 600
	header.TargetFPS = 30
	header.LoopCount = 3

	tests := []struct {
		name      string
		overrides string
		width     uint32
	}{
		{"header wins over defaults", ``, 800},
		{"manifest wins over header", `{"logical_width": 1024}`, 1024},
		{"manifest is clamped", `{"logical_width": 5000}`, 1920},
		{"zero is ignored", `{"logical_width": 0}`, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.ApplyHeader(header)
			cfg.ApplyOverrides(litetext.New([]byte(tt.overrides)))
			assert.Equal(t, tt.width, cfg.Width)
			assert.Equal(t, uint32(600), cfg.Height)
			assert.Equal(t, uint32(33333), cfg.FrameDurationUs)
			assert.Equal(t, uint32(3), cfg.LoopCount)
		})
	}
}

func TestApplyHeaderKeepsPriorValues(t *testing.T) {
	header := format.NewHeader()
	header.LogicalWidth = 4000
	header.LoopCount = 250

	cfg := Defaults()
	cfg.ApplyHeader(header)
	assert.Equal(t, uint32(1920), cfg.Width)
	assert.Equal(t, uint32(360), cfg.Height)
	assert.Equal(t, uint32(DefaultFrameDurationUs), cfg.FrameDurationUs, "fps 0 keeps the default")
	assert.Equal(t, uint32(100), cfg.LoopCount)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Defaults()
	cfg.ApplyOverrides(litetext.New([]byte(`{
		"logical_height": 2000,
		"frame_duration_us": 0,
		"loop_count": 0,
		"max_memory": 1048576,
		"max_total_duration_ms": 1500,
		"allow_key_skip": false,
		"scaling": "fill-and-then-some"
	}`)))

	assert.Equal(t, uint32(1920), cfg.Height)
	assert.Equal(t, uint32(DefaultFrameDurationUs), cfg.FrameDurationUs)
	assert.Equal(t, uint32(0), cfg.LoopCount)
	assert.Equal(t, uint64(1<<20), cfg.MaxMemory)
	assert.Equal(t, uint64(1500), cfg.MaxTotalDurationMs)
	assert.False(t, cfg.AllowKeySkip)
	assert.Equal(t, "fill-and-then-s", cfg.Scaling)

	cfg.ApplyOverrides(litetext.New([]byte(`{"loop_count": 101, "max_memory": 0}`)))
	assert.Equal(t, uint32(100), cfg.LoopCount)
	assert.Equal(t, uint64(1<<20), cfg.MaxMemory)
}

func TestPlacement(t *testing.T) {
	tests := []struct {
		name           string
		sw, sh, fw, fh int
		scaling        string
		wantX, wantY   int
	}{
		{"centred", 800, 600, 640, 360, ScalingLetterbox, 80, 120},
		{"screen narrower", 600, 600, 640, 360, ScalingLetterbox, 0, 120},
		{"screen smaller", 320, 200, 640, 360, ScalingLetterbox, 0, 0},
		{"fill pins origin", 800, 600, 640, 360, ScalingFill, 0, 0},
		{"unknown tag centres", 800, 600, 640, 360, "stretch", 80, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Placement(tt.sw, tt.sh, tt.fw, tt.fh, tt.scaling)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestOverridesClampTotalDuration(t *testing.T) {
	cfg := Defaults()
	cfg.ApplyOverrides(litetext.New([]byte(`{"max_total_duration_ms": 18446744073709552}`)))
	assert.Equal(t, uint64(math.MaxUint32), cfg.MaxTotalDurationMs)

	cfg.ApplyOverrides(litetext.New([]byte(`{"max_total_duration_ms": 2500}`)))
	assert.Equal(t, uint64(2500), cfg.MaxTotalDurationMs)
}
