// Package boot drives a boot splash: it picks an animation source, falls
// back through alternatives when one fails, and always hands off to the next
// boot stage.
package boot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/pkg/splash/litetext"
	"github.com/provide-io/bootsplash/pkg/splash/loose"
	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// Built-in locations on the default volume
const (
	ConfigPath           = `\EFI\BootSplash\config.json`
	DefaultAnimationPath = `\EFI\BootSplash\splash.anim`
	DefaultManifestPath  = `\EFI\BootSplash\sequence.anim.json`
	DefaultNextStagePath = `\EFI\Microsoft\Boot\bootmgfw.efi`
	MaxVolumeLabelBytes  = 31
	MaxPathSpecPathBytes = 255
	maxConfigValueBytes  = 255
	volumeSeparator      = ":"
)

// SourceConfig selects where the animation comes from. Each path may carry a
// volume label prefix: `LABEL:\path`.
type SourceConfig struct {
	AnimationPath string
	ManifestPath  string
	NextStagePath string

	// UseCustomVolume is set when any animation path names a volume.
	UseCustomVolume bool
}

// DefaultSourceConfig returns the built-in locations.
func DefaultSourceConfig() *SourceConfig {
	return &SourceConfig{
		AnimationPath: DefaultAnimationPath,
		ManifestPath:  DefaultManifestPath,
		NextStagePath: DefaultNextStagePath,
	}
}

// ParseSourceConfig reads path keys from configuration text over the
// defaults.
func ParseSourceConfig(text litetext.Text) *SourceConfig {
	cfg := DefaultSourceConfig()
	if v, ok := text.String("animation_path", maxConfigValueBytes); ok && v != "" {
		cfg.AnimationPath = v
	}
	if v, ok := text.String("manifest_path", maxConfigValueBytes); ok && v != "" {
		cfg.ManifestPath = v
	}
	if v, ok := text.String("next_stage_path", maxConfigValueBytes); ok && v != "" {
		cfg.NextStagePath = v
	}
	cfg.UseCustomVolume = strings.Contains(cfg.AnimationPath, volumeSeparator) ||
		strings.Contains(cfg.ManifestPath, volumeSeparator)
	return cfg
}

// LoadSourceConfig reads ConfigPath from the default volume. Any failure to
// read it yields the defaults.
func LoadSourceConfig(volumes platform.Volumes, logger hclog.Logger) *SourceConfig {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if volumes == nil {
		return DefaultSourceConfig()
	}

	root, err := volumes.OpenRoot("")
	if err != nil {
		logger.Debug("💾 Default volume unavailable, using built-in paths", "error", err)
		return DefaultSourceConfig()
	}
	defer root.Close()

	raw, err := platform.ReadTextFile(root, ConfigPath)
	if err != nil {
		if errors.Is(err, splasherr.ErrNotFound) {
			logger.Debug("📄 No configuration file, using built-in paths", "path", ConfigPath)
		} else {
			logger.Warn("⚠️ Configuration unreadable, using built-in paths", "path", ConfigPath, "error", err)
		}
		return DefaultSourceConfig()
	}

	cfg := ParseSourceConfig(litetext.New(raw))
	logger.Debug("📄 Configuration loaded",
		"animation", cfg.AnimationPath,
		"manifest", cfg.ManifestPath,
		"next_stage", cfg.NextStagePath,
		"custom_volume", cfg.UseCustomVolume)
	return cfg
}

// PathSpec is a path with an optional volume label.
type PathSpec struct {
	Volume string // "" is the default volume
	Path   string
}

func (p PathSpec) String() string {
	if p.Volume == "" {
		return p.Path
	}
	return p.Volume + volumeSeparator + p.Path
}

// ParsePathSpec splits `LABEL:\path` at the first colon. Forward slashes in
// the path become the boot separator.
func ParsePathSpec(spec string) (PathSpec, error) {
	var p PathSpec
	if i := strings.Index(spec, volumeSeparator); i >= 0 {
		p.Volume, p.Path = spec[:i], spec[i+1:]
	} else {
		p.Path = spec
	}
	p.Path = loose.NormalizeSeparators(p.Path)

	if len(p.Volume) > MaxVolumeLabelBytes {
		return PathSpec{}, fmt.Errorf("%w: volume label %q longer than %d bytes", splasherr.ErrOutOfRange, p.Volume, MaxVolumeLabelBytes)
	}
	if len(p.Path) > MaxPathSpecPathBytes {
		return PathSpec{}, fmt.Errorf("%w: path longer than %d bytes", splasherr.ErrOutOfRange, MaxPathSpecPathBytes)
	}
	if p.Path == "" {
		return PathSpec{}, fmt.Errorf("%w: empty path in %q", splasherr.ErrInvalidArgument, spec)
	}
	return p, nil
}
