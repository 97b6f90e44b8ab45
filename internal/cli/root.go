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

// ownerFlag holds the persistent --owner flag value.
var ownerFlag string

var rootCmd = &cobra.Command{
	Use:   "tfl",
	Short: "taskflow - personal task tracking with due dates, tags and alerts",
	Long: `taskflow (tfl) keeps per-owner task lists with due dates, tags,
priorities and recurrence. Tasks can be filtered and sorted, exported and
imported as CSV, JSON or YAML, and watched for overdue work.

Every command acts for the owner given with --owner, falling back to
defaults.owner in .taskconfig.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if ownerFlag != "" && TaskSvc != nil {
			TaskSvc.SetCurrentOwner(ownerFlag)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tfl %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "Owner whose tasks the command acts on")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
