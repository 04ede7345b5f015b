package cmd

import (
	"fmt"
	"os"

	"github.com/katharostech/cast2gif/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cast2gif",
	Short: "Render asciinema recordings as animated GIFs",
	Long: `Render an asciinema cast recording into an animated GIF.

cast2gif replays the recorded terminal session through a headless VT100
emulator, samples the screen at a fixed interval, rasterizes every frame
with an embedded monospace font, and encodes the result as an animated
image. Rasterization runs in parallel; frames are always encoded in order.

Quick Start:
  cast2gif render demo.cast -o demo.gif    # Convert a recording
  cast2gif info demo.cast                  # Inspect a recording
  cast2gif themes                          # List built-in color themes

For detailed usage, see: https://github.com/katharostech/cast2gif`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
