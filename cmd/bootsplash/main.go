package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/bootsplash/pkg/logging"
)

const version = "0.3.0"

var (
	logLevel    string
	versionFlag bool
	rootCmd     *cobra.Command
)

func getBuilderTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func printVersion() {
	fmt.Printf("bootsplash %s\n", version)
	fmt.Printf("Built: %s\n", getBuilderTimestamp())
}

// newLogger builds a command logger; --log-level wins over BOOTSPLASH_LOG_LEVEL.
func newLogger(name string) hclog.Logger {
	level, source := logging.ResolveLogLevel(logLevel)
	logger := logging.NewLogger(name, level, logging.OpenLogOutput())
	logger.Trace("Log level resolved", "level", level, "source", source)
	return logger
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "bootsplash",
		Short: "Author, inspect and play boot splash animations",
		Long: `Author, inspect and play boot splash animations.

Packages are built from a sequence manifest with "pack", checked with
"inspect" and "verify", and played through a simulated boot with "boot".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				printVersion()
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(newBootCmd(), newPackCmd(), newExtractCmd(), newInspectCmd(), newVerifyCmd(), newPreviewCmd())
}

func main() {
	// Set up panic recovery to return specific exit code
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(ExitPanic)
		}
	}()

	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion()
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}
