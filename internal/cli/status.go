package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/phasescope/internal/core"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [root...]",
	Short: "Show phase state and summary for one or more projects",
	Long: `Scan each project root and display the current pipeline phase, the nine
phases with their evidence, and the reconciled summary counts.

Several roots are scanned in parallel and printed in the order given.
Without arguments the current directory is scanned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		roots := make([]string, len(args))
		for i, r := range args {
			abs, err := absRoot(r)
			if err != nil {
				return err
			}
			roots[i] = abs
		}

		results := core.ScanRoots(commandContext(cmd), snapshotBuilder(), roots)

		if wantJSON(statusJSON) {
			return writeJSON(cmd.OutOrStdout(), results)
		}

		out := cmd.OutOrStdout()
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if r.Err != nil {
				return fmt.Errorf("scanning %s: %w", r.Root, r.Err)
			}
			fmt.Fprintln(out, titleStyle.Render(" "+r.Root+" "))
			fmt.Fprintf(out, "\n  Current phase: %s (%d/9 complete)\n\n",
				phaseCurrent.Render(string(r.Phases.CurrentPhase)), r.Phases.CompletedCount())
			fmt.Fprint(out, renderPhases(r.Phases))
			fmt.Fprintln(out)
			fmt.Fprint(out, renderSummary(r.Summary))
			if found := presentArtifacts(r.Summary); len(found) > 0 {
				fmt.Fprintf(out, "  %-20s %s\n", "Artifacts:", strings.Join(found, ", "))
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output phase state and summary as JSON")
	rootCmd.AddCommand(statusCmd)
}
