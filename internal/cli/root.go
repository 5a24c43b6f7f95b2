package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "phasescope",
	Short: "Derive pipeline phase state from a project's artifacts",
	Long: `phasescope reads the files a spec-driven development pipeline leaves in a
project (PRD, constitution, feature specs, design docs, task documents,
progress reports) and derives which of the nine pipeline phases are complete,
which phase is current, and a reconciled summary of counts and flags.

It never writes project artifacts except progress/checkpoint.json, and only
when asked to via the checkpoint command.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "phasescope %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
