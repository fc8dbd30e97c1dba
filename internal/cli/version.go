package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildVersion is set by SetVersion from main
var buildVersion = "dev"

// SetVersion records the version reported by the version command.
func SetVersion(v string) {
	buildVersion = v
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pgreport %s\n", buildVersion)
		fmt.Fprintln(cmd.OutOrStdout(), "PostgreSQL monitoring export analyzer")
	},
}
