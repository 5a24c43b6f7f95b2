package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/phasescope/internal/core"
	"github.com/valter-silva-au/phasescope/internal/observability"
	"github.com/valter-silva-au/phasescope/internal/storage"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

var checkpointDryRun bool

// nowFunc is replaced in tests.
var nowFunc = func() time.Time { return time.Now().UTC() }

func fingerprint(snap models.ProjectSnapshot) (string, error) {
	fp, err := core.Fingerprint(snap)
	if err != nil {
		return "", fmt.Errorf("fingerprinting snapshot: %w", err)
	}
	return fp, nil
}

// checkpointRecord derives the record persisted for one scan.
func checkpointRecord(res scanResult, fp string) storage.CheckpointRecord {
	return storage.CheckpointRecord{
		CurrentPhase: res.Phases.CurrentPhase,
		Phases:       res.Phases.Phases,
		Summary:      res.Summary,
		Fingerprint:  fp,
		UpdatedAt:    nowFunc(),
	}
}

// logEvent appends to the event log when one is configured. Failures are
// logged and otherwise ignored.
func logEvent(event observability.Event) {
	if EventLog == nil {
		return
	}
	if err := EventLog.Write(event); err != nil && Logger != nil {
		Logger.Warn("writing event log", "type", event.Type, "error", err)
	}
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint [root]",
	Short: "Persist the derived phase state into progress/checkpoint.json",
	Long: `Scan a project root and merge the current phase, the nine phase statuses,
the summary and the snapshot fingerprint into progress/checkpoint.json.

Keys written by other tools are preserved. Nothing is written when the
stored fingerprint matches the current one. A checkpoint file that is not a
JSON object is left untouched and reported as an error.

Use --dry-run to print the merged file instead of writing it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := absRoot(rootArg(args))
		if err != nil {
			return err
		}
		res := scanProject(root)
		fp, err := fingerprint(res.Snapshot)
		if err != nil {
			return err
		}

		rec := checkpointRecord(res, fp)
		writer := storage.NewCheckpointWriter(core.CheckpointPath(root))
		out := cmd.OutOrStdout()

		if checkpointDryRun {
			data, err := writer.Render(rec)
			if err != nil {
				return fmt.Errorf("rendering checkpoint: %w", err)
			}
			_, err = out.Write(data)
			return err
		}

		written, err := writer.Write(rec)
		if err != nil {
			return fmt.Errorf("writing checkpoint: %w", err)
		}
		if !written {
			fmt.Fprintf(out, "Checkpoint unchanged (fingerprint %s)\n", shortFingerprint(fp))
			return nil
		}

		logEvent(observability.Event{
			Time:    rec.UpdatedAt,
			Level:   "INFO",
			Type:    observability.EventCheckpointWritten,
			Root:    root,
			Message: "checkpoint written",
			Data: map[string]any{
				"phase":       string(rec.CurrentPhase),
				"fingerprint": fp,
			},
		})
		fmt.Fprintf(out, "Checkpoint written: %s (phase %s, fingerprint %s)\n",
			core.CheckpointPath(root), rec.CurrentPhase, shortFingerprint(fp))
		return nil
	},
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func init() {
	checkpointCmd.Flags().BoolVar(&checkpointDryRun, "dry-run", false, "Print the merged checkpoint instead of writing it")
	rootCmd.AddCommand(checkpointCmd)
}
