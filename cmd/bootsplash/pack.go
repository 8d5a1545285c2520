package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/bootsplash/pkg"
	"github.com/provide-io/bootsplash/pkg/splash/authoring"
)

func newPackCmd() *cobra.Command {
	var (
		outputPath string
		framesRoot string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "pack MANIFEST",
		Short: "Build an animation package from a sequence manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := authoring.BuildOptions{FramesRoot: framesRoot}
			finish := func() {}
			if !quiet {
				opts.Progress, finish = newProgress("📦 packing")
			}

			h, err := pkg.BuildPackageWithOptions(args[0], outputPath, opts, newLogger("bootsplash-pack"))
			finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, status(true, "wrote "+outputPath))
			fmt.Fprintln(out, kvf("frames", h.FrameCount))
			fmt.Fprintln(out, kvf("size", fmt.Sprintf("%dx%d", h.LogicalWidth, h.LogicalHeight)))
			fmt.Fprintln(out, kvf("pixel format", h.Format()))
			fmt.Fprintln(out, kvf("fps", h.TargetFPS))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "splash.anim", "Output path for the package")
	cmd.Flags().StringVar(&framesRoot, "frames-root", "", "Directory relative frame paths resolve against (defaults to the manifest's)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	return cmd
}
