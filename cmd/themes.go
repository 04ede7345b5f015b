package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/katharostech/cast2gif/internal/theme"
)

var nameStyle = lipgloss.NewStyle().Bold(true).Width(12)

// themesCmd represents the themes command
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List built-in color themes",
	Long: `List the built-in color themes with a swatch of their ANSI palette.

Custom themes can be provided to render via --theme as a YAML file with
foreground, background, cursor and an 8- or 16-entry palette.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range theme.BuiltinNames() {
			t, _ := theme.Builtin(name)
			line := nameStyle.Render(name)
			for _, c := range t.ANSI[:8] {
				swatch := lipgloss.NewStyle().
					Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)))
				line += swatch.Render("  ")
			}
			suffix := ""
			if name == theme.DefaultName {
				suffix = " (default)"
			}
			fmt.Fprintf(out, "%s%s\n", line, suffix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}
