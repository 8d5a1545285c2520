package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/bootsplash/internal/host"
	"github.com/provide-io/bootsplash/pkg/splash/format"
	"github.com/provide-io/bootsplash/pkg/splash/playback"
)

func newInspectCmd() *cobra.Command {
	var showFrames bool

	cmd := &cobra.Command{
		Use:   "inspect PACKAGE",
		Short: "Show the header, manifest and frame table of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := host.OpenFile(args[0])
			if err != nil {
				return err
			}
			p, err := format.Load(f, newLogger("bootsplash-inspect"))
			if err != nil {
				return err
			}
			defer p.Close()

			cfg := playback.Defaults()
			cfg.ApplyHeader(&p.Header)
			cfg.ApplyOverrides(p.Manifest)

			out := cmd.OutOrStdout()
			h := p.Header
			fmt.Fprintln(out, title("Package "+args[0]))
			fmt.Fprintln(out, divider(40))
			fmt.Fprintln(out, kvf("version", fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor)))
			fmt.Fprintln(out, kvf("file size", p.FileSize))
			fmt.Fprintln(out, kvf("flags", fmt.Sprintf("0x%x", h.Flags)))
			fmt.Fprintln(out, kvf("frames", h.FrameCount))
			fmt.Fprintln(out, kvf("logical size", fmt.Sprintf("%dx%d", h.LogicalWidth, h.LogicalHeight)))
			fmt.Fprintln(out, kvf("pixel format", h.Format()))
			fmt.Fprintln(out, kvf("target fps", h.TargetFPS))
			fmt.Fprintln(out, kvf("loop count", h.LoopCount))
			fmt.Fprintln(out, kvf("frame table", h.FrameTableOffset))
			fmt.Fprintln(out, kvf("frame data", h.FrameDataOffset))

			fmt.Fprintln(out)
			fmt.Fprintln(out, title("Manifest"))
			fmt.Fprintln(out, divider(40))
			fmt.Fprintln(out, kv("embedded", orDash(string(p.Manifest)), colorWhite))

			fmt.Fprintln(out)
			fmt.Fprintln(out, title("Playback"))
			fmt.Fprintln(out, divider(40))
			fmt.Fprintln(out, kvf("size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)))
			fmt.Fprintln(out, kvf("frame duration", fmt.Sprintf("%dus", cfg.FrameDurationUs)))
			fmt.Fprintln(out, kvf("loops", cfg.LoopCount))
			fmt.Fprintln(out, kvf("key skip", cfg.AllowKeySkip))
			fmt.Fprintln(out, kvf("scaling", orDash(cfg.Scaling)))
			fmt.Fprintln(out, kvf("memory", fmt.Sprintf("%d / %d bytes", 2*cfg.FrameBytes(), cfg.MaxMemory)))

			if showFrames {
				fmt.Fprintln(out)
				fmt.Fprintln(out, title("Frames"))
				fmt.Fprintln(out, divider(40))
				for i, d := range p.Frames {
					fmt.Fprintln(out, kvf(fmt.Sprintf("#%d", i), fmt.Sprintf("offset=%d length=%d duration=%dus", d.Offset, d.Length, d.DurationUs)))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFrames, "frames", false, "List every frame descriptor")
	return cmd
}
