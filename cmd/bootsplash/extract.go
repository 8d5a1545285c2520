package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/provide-io/bootsplash/pkg/splash/authoring"
)

func newExtractCmd() *cobra.Command {
	var (
		outDir string
		opts   authoring.ExtractOptions
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "extract MEDIA",
		Short: "Convert a GIF, PNG or JPEG into BMP frames and a sequence manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finish := func() {}
			if !quiet {
				opts.Progress, finish = newProgress("🎞️ extracting")
			}

			doc, err := authoring.Extract(args[0], outDir, opts, newLogger("bootsplash-extract"))
			finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, status(true, "wrote "+filepath.Join(outDir, authoring.SequenceFileName)))
			fmt.Fprintln(out, kvf("frames", len(doc.Frames)))
			fmt.Fprintln(out, kvf("size", fmt.Sprintf("%dx%d", doc.LogicalWidth, doc.LogicalHeight)))
			fmt.Fprintln(out, kvf("frame duration", fmt.Sprintf("%dus", doc.FrameDurationUs)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Output directory for frames and manifest")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "Frame width (default 640)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "Frame height (default 360)")
	cmd.Flags().StringVar(&opts.Fit, "fit", authoring.FitLetterbox, "Resize mode: letterbox, fill or center")
	cmd.Flags().StringVar(&opts.Background, "background", authoring.DefaultBackground, "Background colour as #RRGGBB")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "frame_", "Frame file name prefix")
	cmd.Flags().Uint32Var(&opts.FrameDurationUs, "frame-duration-us", 0, "Override the source frame duration")
	cmd.Flags().Uint32Var(&opts.LoopCount, "loop", 1, "Loop count written to the manifest")
	cmd.Flags().IntVar(&opts.MaxFrames, "max-frames", 0, "Stop after this many frames")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	return cmd
}
