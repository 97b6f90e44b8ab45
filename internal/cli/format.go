package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

var errNotInitialized = errors.New("task service not initialized")

var (
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const taskRowFormat = "  %-38s %-10s %-10s %-7s %-20s %s\n"

// printTaskTable prints tasks as a table. Overdue tasks get a trailing marker.
func printTaskTable(tasks []*models.Task, today time.Time) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}
	fmt.Printf(taskRowFormat, "ID", "STATUS", "DUE", "PRI", "TAGS", "TITLE")
	fmt.Printf(taskRowFormat, "--", "------", "---", "---", "----", "-----")
	for _, t := range tasks {
		title := t.Title
		if t.IsOverdue(today) {
			title += " " + overdueStyle.Render("(overdue)")
		}
		fmt.Printf(taskRowFormat, t.ID, t.Status, orDash(models.FormatDate(t.DueDate)),
			orDash(string(t.Priority)), orDash(models.JoinTags(t.Tags)), title)
	}
	fmt.Printf("\n%d task(s)\n", len(tasks))
}

// printTaskDetail prints every attribute of a single task.
func printTaskDetail(t *models.Task, today time.Time) {
	fmt.Printf("Task %s\n", t.ID)
	fmt.Printf("  Title:       %s\n", t.Title)
	fmt.Printf("  Description: %s\n", t.Description)
	fmt.Printf("  Status:      %s\n", statusLabel(t))
	if t.DueDate != nil {
		due := models.FormatDate(t.DueDate)
		if t.IsOverdue(today) {
			due += " " + overdueStyle.Render("(overdue)")
		}
		fmt.Printf("  Due:         %s\n", due)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("  Tags:        %s\n", strings.Join(t.Tags, ", "))
	}
	if t.Priority != models.PriorityNone {
		fmt.Printf("  Priority:    %s\n", t.Priority)
	}
	if t.Recurrence != nil {
		fmt.Printf("  Repeats:     every %d %s\n", t.Recurrence.Interval, t.Recurrence.Frequency)
	}
	if t.ParentTaskID != "" {
		fmt.Printf("  Parent:      %s\n", t.ParentTaskID)
	}
	fmt.Printf("  Created:     %s\n", models.FormatTimestamp(&t.CreatedAt, Location))
	if t.CompletedAt != nil {
		fmt.Printf("  Completed:   %s\n", models.FormatTimestamp(t.CompletedAt, Location))
	}
	fmt.Printf("  %s\n", dimStyle.Render(fmt.Sprintf("version %d, owner %s", t.Version, t.OwnerID)))
}

func statusLabel(t *models.Task) string {
	if t.IsCompleted() {
		return completedStyle.Render(string(t.Status))
	}
	return string(t.Status)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
