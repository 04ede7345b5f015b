package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/katharostech/cast2gif/internal/cast"
	"github.com/katharostech/cast2gif/internal/term"
)

var infoInterval float64

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <cast-file>",
	Short: "Inspect a cast recording",
	Long: `Print the header metadata of an asciinema cast file along with its event
count, duration, and the number of frames a render would produce.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if infoInterval <= 0 {
			return fmt.Errorf("invalid sampling interval %g: must be positive", infoInterval)
		}
		header, events, duration, err := cast.ReadInfo(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "File:     %s\n", args[0])
		fmt.Fprintf(out, "Version:  %d\n", header.Version)
		fmt.Fprintf(out, "Terminal: %dx%d\n", header.Width, header.Height)
		if header.Title != "" {
			fmt.Fprintf(out, "Title:    %s\n", header.Title)
		}
		if header.Command != "" {
			fmt.Fprintf(out, "Command:  %s\n", header.Command)
		}
		if header.Timestamp > 0 {
			fmt.Fprintf(out, "Recorded: %s\n", time.Unix(header.Timestamp, 0).UTC().Format(time.RFC3339))
		}
		fmt.Fprintf(out, "Events:   %d\n", events)
		fmt.Fprintf(out, "Duration: %.2fs\n", duration)
		fmt.Fprintf(out, "Frames:   %d (at %.2fs interval)\n", term.FrameCount(duration, infoInterval, events), infoInterval)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().Float64Var(&infoInterval, "interval", 0.1, "Sampling interval used for the frame estimate")
}
