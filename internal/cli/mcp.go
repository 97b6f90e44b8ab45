package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	tflmcp "github.com/valter-silva-au/taskflow/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the taskflow MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the taskflow MCP server on stdio",
	Long: `Start the taskflow MCP server on stdio transport, acting for the
current owner.

The server exposes these tools: list_tasks, get_task, add_task,
complete_task, reopen_task, check_overdue, check_due_soon, get_metrics
and get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}

		srv := tflmcp.NewServer(svc, tflmcp.Options{
			Metrics:     MetricsCalc,
			Alerts:      AlertEngine,
			DueSoonDays: DueSoonDays,
			Version:     appVersion,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
