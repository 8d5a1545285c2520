package playback

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/loose"
	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// errUserSkip ends playback early on a keystroke. It never leaves Run.
var errUserSkip = errors.New("playback skipped by user")

// Engine plays frames onto a display.
type Engine struct {
	display platform.Display
	input   platform.Input
	clock   platform.Clock
	logger  hclog.Logger
}

// NewEngine creates an engine. input may be nil when skipping is impossible.
func NewEngine(display platform.Display, input platform.Input, clock platform.Clock) *Engine {
	return NewEngineWithLogger(display, input, clock, hclog.NewNullLogger())
}

// NewEngineWithLogger creates an engine with a custom logger
func NewEngineWithLogger(display platform.Display, input platform.Input, clock platform.Clock, logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{display: display, input: input, clock: clock, logger: logger}
}

// Placement returns the top-left position of a frame on a screen. Frames are
// centred unless the screen is smaller in that dimension; "fill" pins the
// frame to the origin. Pixels are never resampled.
func Placement(screenW, screenH, frameW, frameH int, scaling string) (x, y int) {
	if scaling == ScalingFill {
		return 0, 0
	}
	if screenW > frameW {
		x = (screenW - frameW) / 2
	}
	if screenH > frameH {
		y = (screenH - frameH) / 2
	}
	return x, y
}

// Run plays the first frameCount frames from loader with cfg. A keystroke
// (when allowed) or an exhausted duration budget ends playback successfully.
func (e *Engine) Run(frameCount int, cfg Config, loader FrameLoader) error {
	if loader == nil || e.display == nil || e.clock == nil {
		return fmt.Errorf("%w: engine needs a display, a clock and a frame loader", splasherr.ErrInvalidArgument)
	}
	if cfg.Width == 0 || cfg.Width > MaxDimension || cfg.Height == 0 || cfg.Height > MaxDimension {
		return fmt.Errorf("%w: frame size %dx%d", splasherr.ErrOutOfRange, cfg.Width, cfg.Height)
	}
	if frameCount < 1 || frameCount > format.MaxFrameCount {
		return fmt.Errorf("%w: %d frames", splasherr.ErrOutOfRange, frameCount)
	}
	if available := loader.FrameCount(); frameCount > available {
		return fmt.Errorf("%w: %d frames requested, loader has %d", splasherr.ErrOutOfRange, frameCount, available)
	}
	if cfg.LoopCount > MaxLoopCount {
		cfg.LoopCount = MaxLoopCount
	}
	cfg.normalize()

	if required := 2 * cfg.FrameBytes(); required > cfg.MaxMemory {
		return fmt.Errorf("%w: two %dx%d buffers need %d bytes, budget is %d",
			splasherr.ErrResourceExhausted, cfg.Width, cfg.Height, required, cfg.MaxMemory)
	}

	front, err := decode.NewFrameBuffer(int(cfg.Width), int(cfg.Height))
	if err != nil {
		return err
	}
	back, err := decode.NewFrameBuffer(int(cfg.Width), int(cfg.Height))
	if err != nil {
		return err
	}

	if e.input != nil {
		e.input.Flush()
	}
	screenW, screenH := e.display.Resolution()
	x, y := Placement(screenW, screenH, front.Width, front.Height, cfg.Scaling)

	e.logger.Info("🎬 Playback starting",
		"frames", frameCount,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"screen", fmt.Sprintf("%dx%d", screenW, screenH),
		"at", fmt.Sprintf("%d,%d", x, y),
		"loops", cfg.LoopCount,
		"frame_us", cfg.FrameDurationUs)

	err = e.loop(frameCount, &cfg, loader, front, back, x, y)
	if errors.Is(err, errUserSkip) {
		e.logger.Info("⏭️ Playback skipped")
		return nil
	}
	return err
}

func (e *Engine) loop(frameCount int, cfg *Config, loader FrameLoader, front, back *decode.FrameBuffer, x, y int) error {
	budgetUs := budgetMicros(cfg.MaxTotalDurationMs)
	var elapsedUs uint64

	for pass := uint32(0); cfg.LoopCount == 0 || pass < cfg.LoopCount; pass++ {
		for i := 0; i < frameCount; i++ {
			duration, err := loader.LoadFrame(i, back)
			if err != nil {
				return fmt.Errorf("load frame %d: %w", i, err)
			}
			if duration == 0 {
				duration = cfg.FrameDurationUs
			}
			if err := e.display.Blit(back, x, y); err != nil {
				return fmt.Errorf("%w: blit frame %d: %w", splasherr.ErrIOFailure, i, err)
			}

			shown := duration
			if shown < MinDisplayDurationUs {
				shown = MinDisplayDurationUs
			}
			if cfg.AllowKeySkip && e.input != nil && e.input.PollKey() {
				return errUserSkip
			}

			front, back = back, front
			e.clock.Sleep(time.Duration(shown) * time.Microsecond)
			elapsedUs += uint64(shown)

			if budgetUs > 0 && elapsedUs >= budgetUs {
				e.logger.Info("⏱️ Playback duration budget reached", "elapsed_us", elapsedUs, "budget_us", budgetUs)
				return nil
			}
		}
		e.logger.Trace("🔁 Loop finished", "pass", pass+1)
	}

	e.logger.Debug("✅ Playback finished", "elapsed_us", elapsedUs)
	return nil
}

// budgetMicros converts a millisecond budget to microseconds, saturating
// instead of wrapping.
func budgetMicros(ms uint64) uint64 {
	if ms > math.MaxUint64/1000 {
		return math.MaxUint64
	}
	return ms * 1000
}

// PlayPackage plays the package at path on root. The package is closed
// before PlayPackage returns.
func (e *Engine) PlayPackage(root platform.Root, path string) error {
	pkg, err := format.Open(root, path, e.logger.Named("package"))
	if err != nil {
		return err
	}
	defer pkg.Close()

	cfg := Defaults()
	cfg.ApplyHeader(&pkg.Header)
	cfg.ApplyOverrides(pkg.Manifest)

	return e.Run(len(pkg.Frames), cfg, NewPackageLoader(pkg))
}

// PlayLoose plays the loose manifest at path on root.
func (e *Engine) PlayLoose(root platform.Root, path string) error {
	text, entries, err := loose.ReadManifest(root, path, e.logger.Named("loose"))
	if err != nil {
		return err
	}

	cfg := Defaults()
	cfg.ApplyOverrides(text)

	return e.Run(len(entries), cfg, NewLooseLoader(root, entries))
}
