package main

import (
	"errors"
	"path/filepath"
	"strings"

	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/spf13/cobra"

	"github.com/provide-io/bootsplash/internal/host"
	"github.com/provide-io/bootsplash/internal/host/preview"
	"github.com/provide-io/bootsplash/pkg/splash/loose"
	"github.com/provide-io/bootsplash/pkg/splash/playback"
)

// isManifestPath reports whether path names a loose sequence manifest rather
// than a package.
func isManifestPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// previewResult maps a playback outcome to the command result. Closing the
// window is a normal way to stop.
func previewResult(err error) error {
	if err == nil || errors.Is(err, host.ErrDisplayClosed) {
		return nil
	}
	return withExitCode(ExitPlaybackError, err)
}

func newPreviewCmd() *cobra.Command {
	var displaySize string

	cmd := &cobra.Command{
		Use:   "preview PACKAGE|MANIFEST",
		Short: "Play a package or loose sequence in a window",
		Long: `Play a package or loose sequence in a window, exactly as boot playback
would present it. Any key skips when the source allows it; closing the
window stops playback.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("bootsplash-preview")
			w, h, err := parseDisplaySize(displaySize)
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			root, err := host.NewDirVolumes(filepath.Dir(abs)).OpenRoot("")
			if err != nil {
				return err
			}
			defer root.Close()

			win, err := preview.NewWindow(w, h, logger.Named("window"))
			if err != nil {
				return err
			}
			engine := playback.NewEngineWithLogger(win, win, host.SystemClock{}, logger.Named("playback"))
			bootPath := string(loose.Separator) + filepath.Base(abs)

			err = win.Run("bootsplash - "+filepath.Base(abs), func() error {
				if isManifestPath(abs) {
					return engine.PlayLoose(root, bootPath)
				}
				return engine.PlayPackage(root, bootPath)
			})
			return previewResult(err)
		},
	}

	cmd.Flags().StringVar(&displaySize, "display", defaultDisplaySize, "Window resolution as WIDTHxHEIGHT")
	return cmd
}
