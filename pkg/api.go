// Package pkg is the public entry point for building, verifying and booting
// splash animations on a host.
package pkg

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/internal/host"
	"github.com/provide-io/bootsplash/pkg/logging"
	"github.com/provide-io/bootsplash/pkg/splash/authoring"
	"github.com/provide-io/bootsplash/pkg/splash/boot"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// BuildPackage packs a manifest document into a package file.
func BuildPackage(manifestPath, outputPath string) (*format.Header, error) {
	return BuildPackageWithOptions(manifestPath, outputPath, authoring.BuildOptions{}, nil)
}

// BuildPackageWithOptions packs a manifest with explicit options and logger.
func BuildPackageWithOptions(manifestPath, outputPath string, opts authoring.BuildOptions, logger hclog.Logger) (*format.Header, error) {
	if logger == nil {
		logger = logging.NewLogger("bootsplash-pack", logging.GetLogLevel(), nil)
	}
	return authoring.BuildPackage(manifestPath, outputPath, opts, logger)
}

// BootOptions configures a host boot.
type BootOptions struct {
	// DefaultVolume is the directory standing in for the boot volume.
	DefaultVolume string
	// Volumes holds extra LABEL=DIR mappings.
	Volumes []string
	// NextStageCommand is spawned for the hand-off; see host.CommandChainloader.
	NextStageCommand string

	DisplayWidth  int
	DisplayHeight int

	// Display and Input replace the headless display and terminal input.
	Display platform.Display
	Input   platform.Input
	Clock   platform.Clock

	Logger hclog.Logger
}

// BootWithOptions runs the full boot flow against host directories.
func BootWithOptions(opts BootOptions) (*boot.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("bootsplash", logging.GetLogLevel(), nil)
	}
	if opts.DefaultVolume == "" {
		return nil, fmt.Errorf("%w: a default volume directory is required", splasherr.ErrInvalidArgument)
	}

	volumes := host.NewDirVolumes(opts.DefaultVolume)
	for _, mapping := range opts.Volumes {
		if err := volumes.ParseVolumeFlag(mapping); err != nil {
			return nil, err
		}
	}

	display := opts.Display
	if display == nil {
		display = host.NewHeadlessDisplay(opts.DisplayWidth, opts.DisplayHeight, logger.Named("display"))
	}
	input := opts.Input
	if input == nil {
		input = host.NoInput{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = host.SystemClock{}
	}

	o := boot.NewOrchestratorWithLogger(boot.Services{
		Volumes:     volumes,
		Display:     display,
		Input:       input,
		Clock:       clock,
		Chainloader: host.NewCommandChainloader(volumes, opts.NextStageCommand, logger.Named("chainload")),
	}, logger)
	return o.Boot()
}
