// Package playback resolves playback settings and runs the frame loop.
package playback

import (
	"math"

	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/litetext"
)

// Defaults and limits
const (
	DefaultWidth           = 640
	DefaultHeight          = 360
	DefaultFPS             = 24
	DefaultFrameDurationUs = 1000000 / DefaultFPS
	DefaultLoopCount       = 1
	DefaultMaxMemory       = 64 * 1024 * 1024

	MaxDimension         = format.MaxDimension
	MaxLoopCount         = 100
	MinDisplayDurationUs = 10000
	MaxScalingBytes      = 15
)

// Placement tags
const (
	ScalingLetterbox = "letterbox"
	ScalingFill      = "fill"
)

// Config is a resolved set of playback settings.
type Config struct {
	Width              uint32
	Height             uint32
	FrameDurationUs    uint32
	LoopCount          uint32 // 0 loops forever
	AllowKeySkip       bool
	MaxMemory          uint64 // budget for both frame buffers
	MaxTotalDurationMs uint64 // 0 is unbounded; overrides stay within uint32
	Scaling            string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		FrameDurationUs: DefaultFrameDurationUs,
		LoopCount:       DefaultLoopCount,
		AllowKeySkip:    true,
		MaxMemory:       DefaultMaxMemory,
		Scaling:         ScalingLetterbox,
	}
}

func clampU32(v, max uint64) uint32 {
	if v > max {
		v = max
	}
	return uint32(v)
}

// ApplyHeader overrides dimensions, loop count and frame rate from a package
// header. Zero dimensions and a zero frame rate keep the prior values.
func (c *Config) ApplyHeader(h *format.Header) {
	if h == nil {
		return
	}
	if h.LogicalWidth > 0 {
		c.Width = clampU32(uint64(h.LogicalWidth), MaxDimension)
	}
	if h.LogicalHeight > 0 {
		c.Height = clampU32(uint64(h.LogicalHeight), MaxDimension)
	}
	c.LoopCount = clampU32(uint64(h.LoopCount), MaxLoopCount)
	if h.TargetFPS > 0 {
		c.FrameDurationUs = 1000000 / h.TargetFPS
	}
	c.normalize()
}

// ApplyOverrides applies the playback keys found in text. Absent keys and
// values of the wrong type leave the field unchanged.
func (c *Config) ApplyOverrides(text litetext.Text) {
	if len(text) == 0 {
		return
	}
	if v, ok := text.Uint("logical_width"); ok && v > 0 {
		c.Width = clampU32(v, MaxDimension)
	}
	if v, ok := text.Uint("logical_height"); ok && v > 0 {
		c.Height = clampU32(v, MaxDimension)
	}
	if v, ok := text.Uint("frame_duration_us"); ok && v > 0 {
		c.FrameDurationUs = clampU32(v, math.MaxUint32)
	}
	if v, ok := text.Uint("loop_count"); ok {
		c.LoopCount = clampU32(v, MaxLoopCount)
	}
	if v, ok := text.Uint("max_memory"); ok && v > 0 {
		c.MaxMemory = v
	}
	if v, ok := text.Uint("max_total_duration_ms"); ok {
		c.MaxTotalDurationMs = uint64(clampU32(v, math.MaxUint32))
	}
	if v, ok := text.Bool("allow_key_skip"); ok {
		c.AllowKeySkip = v
	}
	if v, ok := text.String("scaling", MaxScalingBytes); ok {
		c.Scaling = v
	}
	c.normalize()
}

func (c *Config) normalize() {
	if c.FrameDurationUs == 0 {
		c.FrameDurationUs = DefaultFrameDurationUs
	}
}

// FrameBytes is the size of one frame buffer for c.
func (c *Config) FrameBytes() uint64 {
	return uint64(c.Width) * uint64(c.Height) * 4
}
