package observability

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

var (
	consoleInfoStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	consoleDoneStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	consoleWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	consoleErrStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	consoleDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ConsoleObserver prints one styled line per event.
type ConsoleObserver struct {
	w io.Writer
}

// NewConsoleObserver writes event lines to w.
func NewConsoleObserver(w io.Writer) *ConsoleObserver {
	return &ConsoleObserver{w: w}
}

// Receive implements Observer.
func (c *ConsoleObserver) Receive(task *models.Task, kind models.EventKind) error {
	label, style := consoleLabel(kind)
	line := fmt.Sprintf("%s %s %s", style.Render(label), task.Title, consoleDimStyle.Render("["+task.ID+"]"))
	if task.DueDate != nil && (kind == models.EventOverdueCheck || kind == models.EventDueSoon) {
		line += " due " + models.FormatDate(task.DueDate)
	}
	if _, err := fmt.Fprintln(c.w, line); err != nil {
		return fmt.Errorf("writing console notification: %w", err)
	}
	return nil
}

func consoleLabel(kind models.EventKind) (string, lipgloss.Style) {
	switch kind {
	case models.EventCreated:
		return "Task created:", consoleInfoStyle
	case models.EventUpdated:
		return "Task updated:", consoleInfoStyle
	case models.EventCompleted:
		return "Task completed:", consoleDoneStyle
	case models.EventReopened:
		return "Task reopened:", consoleInfoStyle
	case models.EventDeleted:
		return "Task deleted:", consoleDimStyle
	case models.EventOverdueCheck:
		return "Task overdue:", consoleErrStyle
	case models.EventDueSoon:
		return "Task due soon:", consoleWarnStyle
	default:
		return "Task " + string(kind) + ":", consoleInfoStyle
	}
}
