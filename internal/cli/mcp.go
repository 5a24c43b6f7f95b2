package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	psmcp "github.com/valter-silva-au/phasescope/internal/mcp"
)

var mcpRoot string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the phasescope MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the phasescope MCP server on stdio",
	Long: `Start the phasescope MCP server on stdio transport.

The server exposes project scans as MCP tools that AI coding assistants can
call: get_snapshot, get_phase_state, get_summary, parse_task, get_metrics,
get_alerts. Tools scan --root (default: the current directory) unless the
call names another root.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := absRoot(mcpRoot)
		if err != nil {
			return err
		}

		srv := psmcp.NewServer(snapshotBuilder(), root, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpRoot, "root", ".", "Default project root for tool calls")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
