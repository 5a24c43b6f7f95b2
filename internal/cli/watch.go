package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/phasescope/internal/integration"
	"github.com/valter-silva-au/phasescope/internal/observability"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Rescan a project whenever its artifacts change",
	Long: `Watch a project's specs/, tasks/, progress/, research/ and tests/ trees and
rescan after each burst of changes. Phase changes, completions and
reopenings are printed and appended to the event log.

When a Slack webhook is configured (alerts.slack_webhook), newly triggered
alerts (regressed, stalled or flapping phases) are posted after each scan.

Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := absRoot(rootArg(args))
		if err != nil {
			return err
		}

		debounce := watchDebounce
		if debounce == 0 && Config != nil {
			debounce = Config.Watch.Debounce
		}

		w := integration.NewProjectWatcher(integration.WatcherConfig{
			Root:     root,
			Debounce: debounce,
			Builder:  snapshotBuilder(),
			Logger:   Logger,
		})

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		updates, err := w.Start(ctx)
		if err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		defer func() { _ = w.Stop() }()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", root)
		return runWatch(ctx, cmd.OutOrStdout(), root, updates)
	},
}

// runWatch consumes watcher updates until the channel closes or ctx ends.
func runWatch(ctx context.Context, out io.Writer, root string, updates <-chan integration.Update) error {
	var prev *models.PhaseState
	notified := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			now := nowFunc()
			if u.Initial {
				fmt.Fprintf(out, "\nCurrent phase: %s\n\n", phaseCurrent.Render(string(u.Phases.CurrentPhase)))
				fmt.Fprint(out, renderPhases(u.Phases))
			}
			for _, e := range observability.PhaseTransitions(root, prev, u.Phases, now) {
				logEvent(e)
				if e.Type == observability.EventScanned {
					continue
				}
				printEvent(out, e)
			}
			state := u.Phases
			prev = &state
			notifyNewAlerts(notified)
		}
	}
}

func printEvent(out io.Writer, e observability.Event) {
	msg := e.Message
	switch e.Level {
	case "WARN":
		msg = severityMedium.Render(msg)
	default:
		msg = phaseDone.Render(msg)
	}
	fmt.Fprintf(out, "%s  %s\n", helpStyle.Render(e.Time.Local().Format("15:04:05")), msg)
}

// notifyNewAlerts posts alerts not yet seen in this watch session.
func notifyNewAlerts(seen map[string]bool) {
	if AlertEngine == nil || Notifier == nil {
		return
	}
	alerts, err := AlertEngine.Evaluate()
	if err != nil {
		if Logger != nil {
			Logger.Warn("evaluating alerts", "error", err)
		}
		return
	}

	var fresh []observability.Alert
	for _, a := range alerts {
		if !seen[a.ID] {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return
	}
	if err := Notifier.Notify(fresh); err != nil {
		// Retried on the next scan.
		if Logger != nil {
			Logger.Warn("sending alert notification", "error", err)
		}
		return
	}
	for _, a := range fresh {
		seen[a.ID] = true
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before rescanning (default from watch.debounce)")
	rootCmd.AddCommand(watchCmd)
}
