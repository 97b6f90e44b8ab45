package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/observability"
)

// Dashboard panel indices.
const (
	panelTasks = iota
	panelMetrics
	panelAlerts
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int
	load        tea.Cmd

	owner   string
	counts  taskCounts
	metrics *observability.Metrics
	alerts  []observability.Alert

	loading bool
	err     error
}

type taskCounts struct {
	pending   int
	overdue   int
	dueSoon   int
	completed int
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	owner   string
	counts  taskCounts
	metrics *observability.Metrics
	alerts  []observability.Alert
	err     error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = panelStyle.BorderForeground(lipgloss.Color("62"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(load tea.Cmd) dashboardModel {
	return dashboardModel{
		activePanel: panelTasks,
		loading:     true,
		load:        load,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.load
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, m.load
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.owner = msg.owner
		m.counts = msg.counts
		m.metrics = msg.metrics
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" taskflow ")
	if m.owner != "" {
		title += " " + helpStyle.Render(m.owner)
	}
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	panels := []string{m.renderTasksPanel(), m.renderMetricsPanel(), m.renderAlertsPanel()}
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], colWidth-4)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	} else {
		panelWidth := max(availableWidth-4, 20)
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], panelWidth)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Tasks"))
	b.WriteString("\n")

	c := m.counts
	if c.pending+c.completed == 0 {
		b.WriteString("  No tasks found.")
		return b.String()
	}
	fmt.Fprintf(&b, "  %-14s %d\n", "Pending", c.pending)
	fmt.Fprintf(&b, "  %s\n", severityHigh.Render(fmt.Sprintf("%-14s %d", "Overdue", c.overdue)))
	fmt.Fprintf(&b, "  %s\n", severityMedium.Render(fmt.Sprintf("%-14s %d", "Due soon", c.dueSoon)))
	fmt.Fprintf(&b, "  %-14s %d\n", "Completed", c.completed)
	fmt.Fprintf(&b, "\n  Total: %d", c.pending+c.completed)
	return b.String()
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Activity (7d)"))
	b.WriteString("\n")

	if m.metrics == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metrics
	lines := []struct {
		label string
		value int
	}{
		{"Events", md.EventCount},
		{"Created", md.TasksCreated},
		{"Completed", md.TasksCompleted},
		{"Reopened", md.TasksReopened},
		{"Deleted", md.TasksDeleted},
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "  %-14s %d\n", l.label, l.value)
	}
	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}
	for _, a := range m.alerts {
		sev := styleForSeverity(a.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Severity))))
		fmt.Fprintf(&b, "  %s %s\n", sev, a.Message)
	}
	fmt.Fprintf(&b, "\n  Total: %d alert(s)", len(m.alerts))
	return b.String()
}

func styleForSeverity(severity observability.AlertSeverity) lipgloss.Style {
	switch severity {
	case observability.SeverityHigh:
		return severityHigh
	case observability.SeverityMedium:
		return severityMedium
	case observability.SeverityLow:
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func severityRank(s observability.AlertSeverity) int {
	switch s {
	case observability.SeverityHigh:
		return 0
	case observability.SeverityMedium:
		return 1
	case observability.SeverityLow:
		return 2
	default:
		return 3
	}
}

// dashboardLoader returns the command that gathers the dashboard data for
// the service's current owner. Metrics and alerts are optional.
func dashboardLoader(svc core.TaskService, metrics observability.MetricsCalculator, alerts observability.AlertEngine, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		result := dataLoadedMsg{owner: svc.CurrentOwner()}

		tasks, err := svc.ListTasks(core.ListCriteria{})
		if err != nil {
			result.err = fmt.Errorf("loading tasks: %w", err)
			return result
		}
		today := svc.Today()
		for _, t := range tasks {
			switch {
			case t.IsCompleted():
				result.counts.completed++
				continue
			case t.IsOverdue(today):
				result.counts.overdue++
			case t.IsDueSoon(today, DueSoonDays):
				result.counts.dueSoon++
			}
			result.counts.pending++
		}

		if metrics != nil {
			m, err := metrics.Calculate(result.owner, now().AddDate(0, 0, -7))
			if err != nil {
				result.err = fmt.Errorf("loading metrics: %w", err)
				return result
			}
			result.metrics = m
		}

		if alerts != nil {
			snapshot := observability.NewSnapshot(result.owner, tasks, today, DueSoonDays)
			result.alerts = alerts.Evaluate(snapshot)
			sort.SliceStable(result.alerts, func(i, j int) bool {
				return severityRank(result.alerts[i].Severity) < severityRank(result.alerts[j].Severity)
			})
		}
		return result
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for tasks, activity and alerts",
	Long: `Launch an interactive terminal dashboard showing the current owner's
task counts, recent activity and alerts.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		if svc.CurrentOwner() == "" {
			return fmt.Errorf("no current owner (use --owner or set defaults.owner)")
		}
		load := dashboardLoader(svc, MetricsCalc, AlertEngine, time.Now)
		p := tea.NewProgram(newDashboardModel(load), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
