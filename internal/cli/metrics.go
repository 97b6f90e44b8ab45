package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskflow/internal/core"
)

var (
	metricsJSON  bool
	metricsSince string
	metricsAll   bool
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display task activity metrics",
	Long: `Display counts derived from the event log: tasks created, updated,
completed, reopened and deleted, plus overdue and due-soon notifications.

Counts cover the current owner unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (the event log may be disabled)")
		}

		sinceTime, err := core.ParseSince(metricsSince, time.Now())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		owner := ""
		if !metricsAll && TaskSvc != nil {
			owner = TaskSvc.CurrentOwner()
		}
		metrics, err := MetricsCalc.Calculate(owner, sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Printf("  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Printf("  %-24s %d\n", "Tasks created:", metrics.TasksCreated)
		fmt.Printf("  %-24s %d\n", "Tasks updated:", metrics.TasksUpdated)
		fmt.Printf("  %-24s %d\n", "Tasks completed:", metrics.TasksCompleted)
		fmt.Printf("  %-24s %d\n", "Tasks reopened:", metrics.TasksReopened)
		fmt.Printf("  %-24s %d\n", "Tasks deleted:", metrics.TasksDeleted)
		fmt.Printf("  %-24s %d\n", "Overdue notices:", metrics.OverdueChecks)
		fmt.Printf("  %-24s %d\n", "Due-soon notices:", metrics.DueSoonHits)

		if metricsAll && len(metrics.CreatedByOwner) > 0 {
			fmt.Println("\n  Created by owner:")
			owners := make([]string, 0, len(metrics.CreatedByOwner))
			for o := range metrics.CreatedByOwner {
				owners = append(owners, o)
			}
			sort.Strings(owners)
			for _, o := range owners {
				fmt.Printf("    %-20s %d\n", o+":", metrics.CreatedByOwner[o])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Printf("\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Printf("  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	metricsCmd.Flags().BoolVar(&metricsAll, "all", false, "Count events of every owner")
	rootCmd.AddCommand(metricsCmd)
}
