package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

var (
	phasesJSON    bool
	summaryJSON   bool
	snapshotFPOut bool
)

var phasesCmd = &cobra.Command{
	Use:   "phases [root]",
	Short: "Show the nine pipeline phases of a project",
	Long: `Scan a project root and list the nine pipeline phases in order, each
marked completed, in progress or pending, with the evidence found for it.

The current phase is the first phase that is not completed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := absRoot(rootArg(args))
		if err != nil {
			return err
		}
		res := scanProject(root)

		if wantJSON(phasesJSON) {
			return writeJSON(cmd.OutOrStdout(), res.Phases)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Current phase: %s\n\n", phaseCurrent.Render(string(res.Phases.CurrentPhase)))
		fmt.Fprint(out, renderPhases(res.Phases))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary [root]",
	Short: "Show the reconciled summary of a project",
	Long: `Scan a project root and print aggregate counts (features, tasks by folder
and inline status, architecture docs, epics, research sessions, token usage)
and the presence flags of every known artifact.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := absRoot(rootArg(args))
		if err != nil {
			return err
		}
		res := scanProject(root)

		if wantJSON(summaryJSON) {
			return writeJSON(cmd.OutOrStdout(), res.Summary)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, renderSummary(res.Summary))
		for _, name := range presentArtifacts(res.Summary) {
			fmt.Fprintf(out, "  %s %s\n", phaseDone.Render("✓"), name)
		}
		return nil
	},
}

// snapshotOutput pairs a snapshot with its fingerprint.
type snapshotOutput struct {
	Fingerprint string                 `json:"fingerprint"`
	Snapshot    models.ProjectSnapshot `json:"snapshot"`
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [root]",
	Short: "Print the raw project snapshot as JSON",
	Long: `Scan a project root and print everything the scanner read (features,
tasks, progress data, artifact probes) as JSON, together with the snapshot
fingerprint. The fingerprint ignores the scan time and the checkpoint file,
so it only changes when project artifacts change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := absRoot(rootArg(args))
		if err != nil {
			return err
		}
		snap := snapshotBuilder().Build(root)

		fp, err := fingerprint(snap)
		if err != nil {
			return err
		}
		if snapshotFPOut {
			fmt.Fprintln(cmd.OutOrStdout(), fp)
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), snapshotOutput{Fingerprint: fp, Snapshot: snap})
	},
}

func init() {
	phasesCmd.Flags().BoolVar(&phasesJSON, "json", false, "Output phase state as JSON")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output summary as JSON")
	snapshotCmd.Flags().BoolVar(&snapshotFPOut, "fingerprint", false, "Print only the snapshot fingerprint")
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(snapshotCmd)
}
