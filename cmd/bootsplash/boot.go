package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"

	"github.com/provide-io/bootsplash/internal/host"
	"github.com/provide-io/bootsplash/internal/host/preview"
	"github.com/provide-io/bootsplash/pkg"
	"github.com/provide-io/bootsplash/pkg/splash/boot"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

const defaultDisplaySize = "1024x768"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDisplaySize parses a WIDTHxHEIGHT resolution.
func parseDisplaySize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: display size %q, want WIDTHxHEIGHT", splasherr.ErrInvalidArgument, s)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: display size %q, want WIDTHxHEIGHT", splasherr.ErrInvalidArgument, s)
	}
	return w, h, nil
}

func newBootCmd() *cobra.Command {
	var (
		defaultVolume string
		volumes       []string
		displaySize   string
		nextStageCmd  string
		keys          bool
		window        bool
		snapshotPath  string
	)

	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Simulate a boot: play the splash and start the next stage",
		Long: `Simulate a boot against host directories standing in for volumes.

The default volume holds \EFI\BootSplash\config.json, the package and the
loose frames. The next stage command may use {volume}, {path} and
{host_path}; without one the next stage image is only checked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("bootsplash")
			w, h, err := parseDisplaySize(displaySize)
			if err != nil {
				return err
			}

			opts := pkg.BootOptions{
				DefaultVolume:    defaultVolume,
				Volumes:          volumes,
				NextStageCommand: nextStageCmd,
				DisplayWidth:     w,
				DisplayHeight:    h,
				Logger:           logger,
			}

			var headless *host.HeadlessDisplay
			if !window {
				headless = host.NewHeadlessDisplay(w, h, logger.Named("display"))
				opts.Display = headless
			}
			if keys && !window {
				in, err := host.OpenTerminalInput()
				if err != nil {
					return err
				}
				defer in.Close()
				opts.Input = in
			}

			var report *boot.Report
			if window {
				win, err := preview.NewWindow(w, h, logger.Named("window"))
				if err != nil {
					return err
				}
				opts.Display = win
				opts.Input = win
				err = win.Run("bootsplash", func() error {
					var bootErr error
					report, bootErr = pkg.BootWithOptions(opts)
					return bootErr
				})
				if report == nil {
					return err
				}
				printReport(cmd, report)
				return withExitCode(ExitChainloadError, err)
			}

			report, err = pkg.BootWithOptions(opts)
			if report == nil {
				return err
			}
			printReport(cmd, report)
			if snapshotPath != "" {
				if serr := writeSnapshot(snapshotPath, headless); serr != nil {
					logger.Error("Failed to write snapshot", "path", snapshotPath, "error", serr)
				}
			}
			return withExitCode(ExitChainloadError, err)
		},
	}

	cmd.Flags().StringVar(&defaultVolume, "default-volume", envOr("BOOTSPLASH_DEFAULT_VOLUME", "."), "Directory standing in for the boot volume")
	cmd.Flags().StringArrayVar(&volumes, "volume", nil, "Extra volume as LABEL=DIR (repeatable)")
	cmd.Flags().StringVar(&displaySize, "display", envOr("BOOTSPLASH_DISPLAY", defaultDisplaySize), "Display resolution as WIDTHxHEIGHT")
	cmd.Flags().StringVar(&nextStageCmd, "next-stage-cmd", os.Getenv("BOOTSPLASH_NEXT_STAGE_CMD"), "Command that stands in for the next boot stage")
	cmd.Flags().BoolVar(&keys, "keys", false, "Read skip keystrokes from the terminal")
	cmd.Flags().BoolVar(&window, "window", false, "Show playback in a window")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Write the last presented screen to this BMP file")
	return cmd
}

func printReport(cmd *cobra.Command, report *boot.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title("Boot"))
	fmt.Fprintln(out, divider(40))
	fmt.Fprintln(out, kvf("animation", report.Config.AnimationPath))
	fmt.Fprintln(out, kvf("manifest", report.Config.ManifestPath))
	fmt.Fprintln(out, kvf("next stage", report.Config.NextStagePath))
	for _, a := range report.Attempts {
		if a.Err == nil {
			fmt.Fprintln(out, status(true, a.Source+" "+a.Spec))
			continue
		}
		fmt.Fprintln(out, status(false, fmt.Sprintf("%s %s (%s)", a.Source, a.Spec, splasherr.Kind(a.Err))))
	}
	if report.Played == nil {
		fmt.Fprintln(out, status(false, "no splash played"))
	}
}

func writeSnapshot(path string, d *host.HeadlessDisplay) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, d.Snapshot()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
