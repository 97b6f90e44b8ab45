package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/observability"
)

var alertsNotify bool

// evaluateAlerts runs the alert engine over the current owner's tasks.
func evaluateAlerts(svc core.TaskService) ([]observability.Alert, error) {
	tasks, err := svc.ListTasks(core.ListCriteria{})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	snapshot := observability.NewSnapshot(svc.CurrentOwner(), tasks, svc.Today(), DueSoonDays)
	return AlertEngine.Evaluate(snapshot), nil
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active alerts and warnings",
	Long: `Evaluate the current owner's tasks and display any triggered alerts:
overdue tasks, tasks due soon and an oversized pending list.

With --notify the alerts are also posted to the configured Slack webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized")
		}
		svc, err := requireService()
		if err != nil {
			return err
		}

		alerts, err := evaluateAlerts(svc)
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		if len(alerts) == 0 {
			fmt.Println("No active alerts.")
			return nil
		}

		fmt.Printf("%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := strings.ToUpper(string(alert.Severity))
			fmt.Printf("  [%s] %s\n", severity, alert.Message)
			fmt.Printf("         triggered at %s\n\n", alert.TriggeredAt.Format("2006-01-02 15:04 UTC"))
		}

		if alertsNotify {
			if Notifier == nil {
				return fmt.Errorf("no notifier configured (set notifications.slack.webhook_url)")
			}
			if err := Notifier.Notify(alerts); err != nil {
				return fmt.Errorf("sending alerts: %w", err)
			}
			fmt.Println("Alerts sent.")
		}
		return nil
	},
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Send the alerts to Slack")
	rootCmd.AddCommand(alertsCmd)
}
