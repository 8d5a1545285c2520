package boot

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/playback"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// Source kinds
const (
	SourcePackage = "package"
	SourceLoose   = "loose"
)

// Attempt records one playback try.
type Attempt struct {
	Source string
	Spec   string
	Err    error
}

// Report summarises a boot.
type Report struct {
	Config   *SourceConfig
	Attempts []Attempt
	// Played is the attempt that succeeded, nil if none did.
	Played *Attempt
}

// Services bundles the platform services a boot needs.
type Services struct {
	Volumes     platform.Volumes
	Display     platform.Display
	Input       platform.Input
	Clock       platform.Clock
	Chainloader platform.Chainloader
}

// Orchestrator plays the splash and chainloads the next stage.
type Orchestrator struct {
	services Services
	engine   *playback.Engine
	logger   hclog.Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(services Services) *Orchestrator {
	return NewOrchestratorWithLogger(services, hclog.NewNullLogger())
}

// NewOrchestratorWithLogger creates an orchestrator with a custom logger
func NewOrchestratorWithLogger(services Services, logger hclog.Logger) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Orchestrator{
		services: services,
		engine:   playback.NewEngineWithLogger(services.Display, services.Input, services.Clock, logger.Named("playback")),
		logger:   logger,
	}
}

// Boot plays the splash from the first source that works, restores the
// display, releases a closable input and starts the next stage. Playback failures are logged and
// absorbed; only a failed hand-off is returned.
func (o *Orchestrator) Boot() (*Report, error) {
	cfg := LoadSourceConfig(o.services.Volumes, o.logger.Named("config"))
	report := o.Play(cfg)

	if o.services.Display != nil {
		if err := o.services.Display.Restore(); err != nil {
			o.logger.Warn("⚠️ Failed to restore display mode", "error", err)
		}
	}
	if closer, ok := o.services.Input.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			o.logger.Warn("⚠️ Failed to release input", "error", err)
		}
	}

	return report, o.chainload(cfg.NextStagePath)
}

// Play runs the fallback sequence for cfg without chainloading.
func (o *Orchestrator) Play(cfg *SourceConfig) *Report {
	report := &Report{Config: cfg}
	steps := fallbackSteps(cfg)

	for _, st := range steps {
		err := o.attempt(st.source, st.spec)
		report.Attempts = append(report.Attempts, Attempt{Source: st.source, Spec: st.spec, Err: err})
		if err == nil {
			report.Played = &report.Attempts[len(report.Attempts)-1]
			o.logger.Info("✅ Splash played", "source", st.source, "spec", st.spec)
			return report
		}
		o.logger.Warn("⚠️ Playback attempt failed",
			"source", st.source,
			"spec", st.spec,
			"kind", splasherr.Kind(err),
			"error", err)
	}

	o.logger.Warn("⚠️ No splash source could be played", "attempts", len(report.Attempts))
	return report
}

type step struct{ source, spec string }

// fallbackSteps orders the sources to try. A configured volume falls back to
// the default package before any loose manifest is tried.
func fallbackSteps(cfg *SourceConfig) []step {
	if !cfg.UseCustomVolume {
		return []step{
			{SourcePackage, cfg.AnimationPath},
			{SourceLoose, cfg.ManifestPath},
		}
	}
	return []step{
		{SourcePackage, cfg.AnimationPath},
		{SourcePackage, DefaultAnimationPath},
		{SourceLoose, cfg.ManifestPath},
		{SourceLoose, DefaultManifestPath},
	}
}

func (o *Orchestrator) attempt(source, spec string) error {
	ps, err := ParsePathSpec(spec)
	if err != nil {
		return err
	}
	if o.services.Volumes == nil {
		return fmt.Errorf("%w: no volumes", splasherr.ErrInvalidArgument)
	}
	root, err := o.services.Volumes.OpenRoot(ps.Volume)
	if err != nil {
		return err
	}
	defer root.Close()

	o.logger.Debug("🎞️ Trying splash source", "source", source, "volume", ps.Volume, "path", ps.Path)
	if source == SourcePackage {
		return o.engine.PlayPackage(root, ps.Path)
	}
	return o.engine.PlayLoose(root, ps.Path)
}

func (o *Orchestrator) chainload(spec string) error {
	if o.services.Chainloader == nil {
		return fmt.Errorf("%w: no chainloader", splasherr.ErrInvalidArgument)
	}
	ps, err := ParsePathSpec(spec)
	if err != nil {
		o.logger.Error("❌ Invalid next stage path", "spec", spec, "error", err)
		return err
	}

	o.logger.Info("🚀 Starting next boot stage", "volume", ps.Volume, "path", ps.Path)
	if err := o.services.Chainloader.Chainload(ps.Volume, ps.Path); err != nil {
		o.logger.Error("❌ Chainload failed", "path", ps.String(), "error", err)
		return fmt.Errorf("chainload %s: %w", ps, err)
	}
	return nil
}
