package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts fire.
type AlertThresholds struct {
	// MaxPending is the number of pending tasks an owner may carry before a
	// low severity alert fires. Zero disables the check.
	MaxPending int `yaml:"max_pending" json:"max_pending"`
}

// Snapshot is the state of one owner's tasks that alerts are evaluated
// against.
type Snapshot struct {
	Owner   string
	Today   time.Time
	Overdue []*models.Task
	DueSoon []*models.Task
	Pending int
}

// NewSnapshot classifies an owner's tasks as of today. Tasks due within
// dueSoonDays that are not overdue count as due soon.
func NewSnapshot(owner string, tasks []*models.Task, today time.Time, dueSoonDays int) Snapshot {
	s := Snapshot{Owner: owner, Today: today}
	for _, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		s.Pending++
		switch {
		case t.IsOverdue(today):
			s.Overdue = append(s.Overdue, t)
		case t.IsDueSoon(today, dueSoonDays):
			s.DueSoon = append(s.DueSoon, t)
		}
	}
	return s
}

// AlertEngine turns a task snapshot into alerts.
type AlertEngine interface {
	Evaluate(snapshot Snapshot) []Alert
}

type alertEngine struct {
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates an AlertEngine. A nil now uses time.Now.
func NewAlertEngine(thresholds AlertThresholds, now func() time.Time) AlertEngine {
	if now == nil {
		now = time.Now
	}
	return &alertEngine{thresholds: thresholds, now: now}
}

// Evaluate returns overdue alerts first, then due-soon alerts, then the
// pending count alert.
func (ae *alertEngine) Evaluate(s Snapshot) []Alert {
	now := ae.now().UTC()
	var alerts []Alert

	for _, t := range s.Overdue {
		alerts = append(alerts, Alert{
			ID:          "overdue-" + t.ID,
			Condition:   "task_overdue",
			Severity:    SeverityHigh,
			Message:     fmt.Sprintf("task %s %q was due %s", t.ID, t.Title, models.FormatDate(t.DueDate)),
			TriggeredAt: now,
		})
	}
	for _, t := range s.DueSoon {
		alerts = append(alerts, Alert{
			ID:          "due-soon-" + t.ID,
			Condition:   "task_due_soon",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("task %s %q is due %s", t.ID, t.Title, models.FormatDate(t.DueDate)),
			TriggeredAt: now,
		})
	}
	if ae.thresholds.MaxPending > 0 && s.Pending > ae.thresholds.MaxPending {
		alerts = append(alerts, Alert{
			ID:          "pending-" + s.Owner,
			Condition:   "too_many_pending",
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("%s has %d pending tasks, exceeding the maximum of %d", s.Owner, s.Pending, ae.thresholds.MaxPending),
			TriggeredAt: now,
		})
	}
	return alerts
}

// AlertForEvent describes a single lifecycle event as an alert.
func AlertForEvent(task *models.Task, kind models.EventKind, at time.Time) Alert {
	severity := SeverityLow
	message := fmt.Sprintf("task %s %q %s", task.ID, task.Title, kind)
	switch kind {
	case models.EventOverdueCheck:
		severity = SeverityHigh
		message = fmt.Sprintf("task %s %q is overdue (due %s)", task.ID, task.Title, models.FormatDate(task.DueDate))
	case models.EventDueSoon:
		severity = SeverityMedium
		message = fmt.Sprintf("task %s %q is due %s", task.ID, task.Title, models.FormatDate(task.DueDate))
	case models.EventCompleted:
		message = fmt.Sprintf("task %s %q completed by %s", task.ID, task.Title, task.OwnerID)
	}
	return Alert{
		ID:          fmt.Sprintf("%s-%s", kind, task.ID),
		Condition:   "task_" + string(kind),
		Severity:    severity,
		Message:     message,
		TriggeredAt: at.UTC(),
	}
}
