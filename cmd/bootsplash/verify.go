package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/bootsplash/pkg"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify PACKAGE",
		Short: "Decode every frame of a package as boot playback would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := pkg.VerifyPackageWithLogger(args[0], newLogger("bootsplash-verify"))
			out := cmd.OutOrStdout()
			if report != nil {
				fmt.Fprintln(out, kvf("frames", report.Frames))
				fmt.Fprintln(out, kvf("decoded", report.Decoded))
				for _, e := range report.Errors {
					fmt.Fprintln(out, status(false, e))
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, status(true, "package verified"))
			return nil
		},
	}
}
