// Package mcp exposes the task service as MCP (Model Context Protocol)
// tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/observability"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Options holds the optional collaborators of a Server.
type Options struct {
	// Metrics and Alerts may be nil when the event log is disabled.
	Metrics     observability.MetricsCalculator
	Alerts      observability.AlertEngine
	DueSoonDays int
	Version     string
}

// Server wraps a task service bound to one owner and exposes it as MCP tools.
type Server struct {
	server *gomcp.Server
	svc    core.TaskService
	opts   Options
}

// NewServer creates an MCP server acting for svc's current owner.
func NewServer(svc core.TaskService, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{svc: svc, opts: opts}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "taskflow", Version: opts.Version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task identifier"`
}

type taskOutput struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	DueDate     string   `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Overdue     bool     `json:"overdue"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	CompletedAt string   `json:"completed_at,omitempty"`
}

type listTasksInput struct {
	Tags      []string `json:"tags,omitempty" jsonschema:"only tasks carrying every one of these tags"`
	Status    string   `json:"status,omitempty" jsonschema:"pending or completed"`
	Overdue   bool     `json:"overdue,omitempty" jsonschema:"only overdue tasks"`
	DueBefore string   `json:"due_before,omitempty" jsonschema:"YYYY-MM-DD, inclusive"`
	DueAfter  string   `json:"due_after,omitempty" jsonschema:"YYYY-MM-DD, inclusive"`
	DueOn     string   `json:"due_on,omitempty" jsonschema:"YYYY-MM-DD"`
	Sort      string   `json:"sort,omitempty" jsonschema:"natural (default), due_date or priority"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type addTaskInput struct {
	Title       string   `json:"title" jsonschema:"required,short task title"`
	Description string   `json:"description" jsonschema:"required,what needs doing"`
	DueDate     string   `json:"due_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Tags        []string `json:"tags,omitempty"`
	Priority    string   `json:"priority,omitempty" jsonschema:"high, medium or low"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated   int    `json:"tasks_created"`
	TasksUpdated   int    `json:"tasks_updated"`
	TasksCompleted int    `json:"tasks_completed"`
	TasksReopened  int    `json:"tasks_reopened"`
	TasksDeleted   int    `json:"tasks_deleted"`
	OverdueChecks  int    `json:"overdue_checks"`
	DueSoonHits    int    `json:"due_soon_hits"`
	EventCount     int    `json:"event_count"`
	OldestEvent    string `json:"oldest_event,omitempty"`
	NewestEvent    string `json:"newest_event,omitempty"`
}

type emptyInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List the owner's tasks, optionally filtered by tags, status, overdue state or due date range, in natural, due_date or priority order.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a single task by ID.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Create a pending task. Title and description are required.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task completed. Completing an already completed task changes nothing.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "reopen_task",
		Description: "Return a completed task to pending.",
	}, s.handleReopenTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "check_overdue",
		Description: "List pending tasks whose due date has passed and notify about each one.",
	}, s.handleCheckOverdue)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "check_due_soon",
		Description: "List pending tasks due within the configured window and notify about each one.",
	}, s.handleCheckDueSoon)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get event counts for the owner's tasks (created, completed, reopened, overdue checks and more).",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate alerts for overdue tasks, tasks due soon and an oversized pending list.",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	criteria, err := core.ListQuery{
		Tags:      input.Tags,
		Status:    input.Status,
		Overdue:   input.Overdue,
		DueBefore: input.DueBefore,
		DueAfter:  input.DueAfter,
		DueOn:     input.DueOn,
		Sort:      input.Sort,
	}.Criteria()
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}

	tasks, err := s.svc.ListTasks(criteria)
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}
	return nil, s.listOutput(tasks), nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}
	task, err := s.svc.FindTaskByID(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, s.taskToOutput(task), nil
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	attrs := core.TaskAttrs{
		Title:       &input.Title,
		Description: &input.Description,
		DueDate:     &input.DueDate,
		Tags:        input.Tags,
		Priority:    &input.Priority,
	}
	task, err := s.svc.AddTask(attrs)
	if err != nil {
		return errorResult(fmt.Sprintf("adding task: %s", err)), taskOutput{}, nil
	}
	return nil, s.taskToOutput(task), nil
}

func (s *Server) handleCompleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}
	task, err := s.svc.CompleteTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("completing task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, s.taskToOutput(task), nil
}

func (s *Server) handleReopenTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}
	task, err := s.svc.ReopenTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("reopening task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, s.taskToOutput(task), nil
}

func (s *Server) handleCheckOverdue(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	tasks, err := s.svc.CheckOverdueTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("checking overdue tasks: %s", err)), listTasksOutput{}, nil
	}
	return nil, s.listOutput(tasks), nil
}

func (s *Server) handleCheckDueSoon(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	tasks, err := s.svc.CheckDueSoonTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("checking tasks due soon: %s", err)), listTasksOutput{}, nil
	}
	return nil, s.listOutput(tasks), nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.opts.Metrics == nil {
		return errorResult("metrics not available (the event log is disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	since, err := core.ParseSince(sinceStr, time.Now())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{}, nil
	}

	m, err := s.opts.Metrics.Calculate(s.svc.CurrentOwner(), since)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		TasksCreated:   m.TasksCreated,
		TasksUpdated:   m.TasksUpdated,
		TasksCompleted: m.TasksCompleted,
		TasksReopened:  m.TasksReopened,
		TasksDeleted:   m.TasksDeleted,
		OverdueChecks:  m.OverdueChecks,
		DueSoonHits:    m.DueSoonHits,
		EventCount:     m.EventCount,
	}
	if m.OldestEvent != nil {
		out.OldestEvent = m.OldestEvent.Format(time.RFC3339)
	}
	if m.NewestEvent != nil {
		out.NewestEvent = m.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.opts.Alerts == nil {
		return errorResult("alerts not available"), getAlertsOutput{}, nil
	}

	tasks, err := s.svc.ListTasks(core.ListCriteria{})
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), getAlertsOutput{}, nil
	}
	snapshot := observability.NewSnapshot(s.svc.CurrentOwner(), tasks, s.svc.Today(), s.opts.DueSoonDays)
	alerts := s.opts.Alerts.Evaluate(snapshot)

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func (s *Server) listOutput(tasks []*models.Task) listTasksOutput {
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = s.taskToOutput(t)
	}
	return out
}

func (s *Server) taskToOutput(t *models.Task) taskOutput {
	out := taskOutput{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     models.FormatDate(t.DueDate),
		Tags:        t.Tags,
		Priority:    string(t.Priority),
		Overdue:     t.IsOverdue(s.svc.Today()),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		out.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
