package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/phasescope/internal/observability"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

var (
	historyJSON  bool
	historySince string
	historyRoot  string
	historyLimit int
	historyPhase string
)

// historyOutput is the JSON form of the history command.
type historyOutput struct {
	Metrics     *observability.Metrics `json:"metrics"`
	Transitions []observability.Event  `json:"transitions"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show phase transition history from the event log",
	Long: `Aggregate the event log written by watch and checkpoint: scans, phase
changes, regressions, checkpoints, per-phase completion and reopening counts,
and the latest known phase of every project.

The most recent phase changes and reopenings are listed below the counts;
--phase narrows them to changes into or out of one phase.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil || EventLog == nil {
			return fmt.Errorf("event log not initialized (events may be disabled)")
		}

		sinceTime, err := observability.ParseSince(historySince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		filter := observability.EventFilter{
			Since: &sinceTime,
			Types: []string{observability.EventPhaseChanged, observability.EventPhaseReopened},
			Phase: historyPhase,
		}
		if historyRoot != "" {
			root, err := absRoot(historyRoot)
			if err != nil {
				return err
			}
			filter.Root = root
		}
		transitions, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading phase transitions: %w", err)
		}
		if historyLimit > 0 && len(transitions) > historyLimit {
			transitions = transitions[len(transitions)-historyLimit:]
		}

		if wantJSON(historyJSON) {
			return writeJSON(cmd.OutOrStdout(), historyOutput{Metrics: metrics, Transitions: transitions})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "History (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Scans:", metrics.Scans)
		fmt.Fprintf(out, "  %-24s %d\n", "Phase changes:", metrics.PhaseChanges)
		fmt.Fprintf(out, "  %-24s %d\n", "Regressions:", metrics.Regressions)
		fmt.Fprintf(out, "  %-24s %d\n", "Checkpoints written:", metrics.Checkpoints)

		if len(metrics.PhaseCompletions) > 0 || len(metrics.PhaseReopenings) > 0 {
			fmt.Fprintln(out, "\n  Per phase (completed / reopened):")
			for _, phase := range models.AllPhases() {
				done := metrics.PhaseCompletions[string(phase)]
				reopened := metrics.PhaseReopenings[string(phase)]
				if done == 0 && reopened == 0 {
					continue
				}
				fmt.Fprintf(out, "    %-20s %d / %d\n", string(phase)+":", done, reopened)
			}
		}

		if len(metrics.CurrentPhase) > 0 {
			fmt.Fprintln(out, "\n  Current phase by project:")
			roots := make([]string, 0, len(metrics.CurrentPhase))
			for root := range metrics.CurrentPhase {
				roots = append(roots, root)
			}
			sort.Strings(roots)
			for _, root := range roots {
				fmt.Fprintf(out, "    %s  %s\n", phaseCurrent.Render(metrics.CurrentPhase[root]), root)
			}
		}

		if len(transitions) > 0 {
			fmt.Fprintln(out, "\n  Recent phase changes:")
			for _, e := range transitions {
				fmt.Fprintf(out, "    %s  %s  %s\n", e.Time.Format(time.RFC3339), e.Message, helpStyle.Render(e.Root))
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output history as JSON")
	historyCmd.Flags().StringVar(&historySince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	historyCmd.Flags().StringVar(&historyRoot, "root", "", "Only list phase changes for this project root")
	historyCmd.Flags().StringVar(&historyPhase, "phase", "", "Only list changes into or out of this phase")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of phase changes to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
