package pkg

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/internal/host"
	"github.com/provide-io/bootsplash/pkg/logging"
	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/playback"
)

// VerifyReport describes a verified package.
type VerifyReport struct {
	Header  format.Header
	Config  playback.Config
	Frames  int
	Decoded int
	Errors  []string
}

// VerifyPackageWithLogger loads the package at path and decodes every frame
// exactly as boot playback would.
func VerifyPackageWithLogger(path string, logger hclog.Logger) (*VerifyReport, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	f, err := host.OpenFile(path)
	if err != nil {
		logger.Error("Failed to open package", "error", err)
		return nil, err
	}
	p, err := format.Load(f, logger.Named("package"))
	if err != nil {
		logger.Error("✗ Package structure invalid", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Debug("Failed to close package", "error", err)
		}
	}()

	logger.Info("Verifying package", "path", path)
	logger.Info("✓ Header and frame table valid", "frames", len(p.Frames))

	report := &VerifyReport{Header: p.Header, Frames: len(p.Frames)}
	report.Config = playback.Defaults()
	report.Config.ApplyHeader(&p.Header)
	report.Config.ApplyOverrides(p.Manifest)
	cfg := &report.Config

	if need := 2 * cfg.FrameBytes(); need > cfg.MaxMemory {
		report.Errors = append(report.Errors, fmt.Sprintf("frame buffers need %d bytes, memory budget is %d", need, cfg.MaxMemory))
		logger.Error("Memory budget too small", "need", need, "budget", cfg.MaxMemory)
	}

	fb, err := decode.NewFrameBuffer(int(cfg.Width), int(cfg.Height))
	if err != nil {
		return nil, err
	}
	loader := playback.NewPackageLoader(p)
	for i := range p.Frames {
		if _, err := loader.LoadFrame(i, fb); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("frame %d: %v", i, err))
			logger.Error("Frame verification failed", "index", i, "error", err)
			continue
		}
		report.Decoded++
		logger.Debug("✓ Frame decodes", "index", i, "bytes", p.Frames[i].Length)
	}

	if len(report.Errors) == 0 {
		logger.Info("✓ Package verification passed")
		return report, nil
	}
	logger.Error("✗ Package verification failed", "error_count", len(report.Errors))
	for _, e := range report.Errors {
		logger.Error("  Verification error", "details", e)
	}
	return report, fmt.Errorf("%w: %d problems", ErrVerificationFailed, len(report.Errors))
}

// VerifyPackage verifies a package using default logger settings
func VerifyPackage(path string) (*VerifyReport, error) {
	logger := logging.NewLogger("bootsplash-verify", logging.GetLogLevel(), nil)
	return VerifyPackageWithLogger(path, logger)
}
