package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display LeapGrid version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "LeapGrid v%s\n", version)
			_, _ = fmt.Fprintln(out, "Embedded SQL playground for dashboard datasets")
			if commit != "unknown" {
				_, _ = fmt.Fprintf(out, "commit: %s\n", commit)
			}
			if date != "unknown" {
				_, _ = fmt.Fprintf(out, "built:  %s\n", date)
			}
		},
	}
}
