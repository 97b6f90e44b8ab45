package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/exchange"
)

var (
	exportFormat string
	importFormat string
	importStrict bool
)

// formatFor returns the explicit format, or the file extension when blank.
func formatFor(explicit, path string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export tasks to CSV, JSON or YAML",
	Long: `Export the current owner's tasks in natural order. The format is taken
from --format or else from the file extension (` + strings.Join(exchange.Formats(), ", ") + `).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		n, err := svc.ExportTasks(formatFor(exportFormat, args[0]), args[0])
		if err != nil {
			return fmt.Errorf("exporting tasks: %w", err)
		}
		fmt.Printf("Exported %d task(s) to %s\n", n, args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks from CSV, JSON or YAML",
	Long: `Import tasks for the current owner. Every imported task gets a new ID.

Malformed rows are skipped with a warning; use --strict to stop at the
first one instead. Rows stored before the failure are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		result, err := svc.ImportTasks(formatFor(importFormat, args[0]), args[0], core.ImportOptions{Strict: importStrict})
		if result != nil && len(result.Imported) > 0 {
			fmt.Printf("Imported %d task(s) from %s\n", len(result.Imported), args[0])
		}
		if err != nil {
			return fmt.Errorf("importing tasks: %w", err)
		}
		if len(result.Imported) == 0 {
			fmt.Println("No tasks imported.")
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: skipped %s\n", w)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format ("+strings.Join(exchange.Formats(), ", ")+")")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format ("+strings.Join(exchange.Formats(), ", ")+")")
	importCmd.Flags().BoolVar(&importStrict, "strict", false, "Abort at the first malformed row")
	rootCmd.AddCommand(exportCmd, importCmd)
}
