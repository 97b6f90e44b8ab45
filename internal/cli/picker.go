package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// pickerInput is where the interactive picker reads selections from.
var pickerInput io.Reader = os.Stdin

var errPickCancelled = errors.New("cancelled")

// pickPendingTask lists the pending tasks in natural order and returns the
// ID of the one the user selects by number.
func pickPendingTask(svc core.TaskService) (string, error) {
	tasks, err := svc.ListTasks(core.ListCriteria{Status: models.StatusPending})
	if err != nil {
		return "", fmt.Errorf("listing tasks: %w", err)
	}
	if len(tasks) == 0 {
		return "", fmt.Errorf("no pending tasks (use 'tfl add' to create one)")
	}

	today := svc.Today()
	fmt.Println("\nPending tasks:")
	fmt.Println()
	fmt.Printf("  %-4s %-10s %-7s %s\n", "#", "DUE", "PRI", "TITLE")
	fmt.Printf("  %-4s %-10s %-7s %s\n", "---", "---", "---", "-----")
	for i, t := range tasks {
		title := t.Title
		if t.IsOverdue(today) {
			title += " " + overdueStyle.Render("(overdue)")
		}
		fmt.Printf("  %-4d %-10s %-7s %s\n", i+1, orDash(models.FormatDate(t.DueDate)), orDash(string(t.Priority)), title)
	}
	fmt.Println()

	reader := bufio.NewReader(pickerInput)
	for {
		fmt.Printf("Select task [1-%d] (or 'q' to cancel): ", len(tasks))
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if err != nil && (err != io.EOF || input == "") {
			return "", fmt.Errorf("reading input: %w", err)
		}

		if strings.EqualFold(input, "q") {
			return "", errPickCancelled
		}
		num, convErr := strconv.Atoi(input)
		if convErr != nil || num < 1 || num > len(tasks) {
			fmt.Printf("  Invalid selection. Enter a number between 1 and %d.\n", len(tasks))
			if err == io.EOF {
				return "", fmt.Errorf("reading input: %w", err)
			}
			continue
		}
		return tasks[num-1].ID, nil
	}
}
