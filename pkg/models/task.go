package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// Priority represents the urgency level of a task. The zero value means the
// task has no priority and ranks below every explicit level.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority onto a comparable integer: high 3, medium 2, low 1,
// absent or unknown 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Frequency is the repeat unit of a recurrence descriptor.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Recurrence describes how often a task repeats. It is stored as data only;
// nothing in taskflow schedules new occurrences.
type Recurrence struct {
	Frequency Frequency `yaml:"frequency" json:"frequency"`
	Interval  int       `yaml:"interval" json:"interval"`
}

// Task is the unit of work owned by a single user.
//
// Status and CompletedAt move together: a completed task always carries a
// completion timestamp and a pending one never does. Mutate them only
// through Complete, Reopen or SetStatus.
type Task struct {
	ID           string      `yaml:"id" json:"id"`
	OwnerID      string      `yaml:"owner_id" json:"owner_id"`
	Title        string      `yaml:"title" json:"title"`
	Description  string      `yaml:"description" json:"description"`
	Status       TaskStatus  `yaml:"status" json:"status"`
	CompletedAt  *time.Time  `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
	DueDate      *time.Time  `yaml:"due_date,omitempty" json:"due_date,omitempty"`
	Tags         []string    `yaml:"tags,omitempty" json:"tags,omitempty"`
	Priority     Priority    `yaml:"priority,omitempty" json:"priority,omitempty"`
	Recurrence   *Recurrence `yaml:"recurrence,omitempty" json:"recurrence,omitempty"`
	ParentTaskID string      `yaml:"parent_task_id,omitempty" json:"parent_task_id,omitempty"`
	CreatedAt    time.Time   `yaml:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `yaml:"updated_at" json:"updated_at"`
	Version      int         `yaml:"version" json:"version"`
}

// NewTask builds a pending task. It does not validate; call Validate once
// every attribute has been applied.
func NewTask(id, ownerID, title, description string, createdAt time.Time) *Task {
	return &Task{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// Validate checks the entity invariants and returns a *ValidationError
// describing the first violation.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return &ValidationError{Field: "owner_id", Message: "must not be blank"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be blank"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Message: "must not be blank"}
	}
	switch t.Status {
	case StatusPending:
		if t.CompletedAt != nil {
			return &ValidationError{Field: "completed_at", Message: "must be empty for a pending task"}
		}
	case StatusCompleted:
		if t.CompletedAt == nil {
			return &ValidationError{Field: "completed_at", Message: "must be set for a completed task"}
		}
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", t.Status)}
	}
	if t.Priority.Rank() == 0 && t.Priority != PriorityNone {
		return &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", t.Priority)}
	}
	if t.Recurrence != nil {
		if err := t.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the recurrence descriptor.
func (r *Recurrence) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return &ValidationError{Field: "recurrence", Message: fmt.Sprintf("unknown frequency %q", r.Frequency)}
	}
	if r.Interval < 1 {
		return &ValidationError{Field: "recurrence", Message: "interval must be at least 1"}
	}
	return nil
}

// Complete marks the task completed at the given instant. Completing an
// already completed task leaves CompletedAt untouched and reports false.
func (t *Task) Complete(at time.Time) bool {
	if t.Status == StatusCompleted {
		return false
	}
	completedAt := at
	t.Status = StatusCompleted
	t.CompletedAt = &completedAt
	return true
}

// Reopen returns the task to pending and clears CompletedAt. It reports
// false when the task was already pending.
func (t *Task) Reopen() bool {
	if t.Status == StatusPending {
		return false
	}
	t.Status = StatusPending
	t.CompletedAt = nil
	return true
}

// SetStatus transitions the task to status, stamping at on completion. It
// reports whether the status actually changed.
func (t *Task) SetStatus(status TaskStatus, at time.Time) (bool, error) {
	switch status {
	case StatusCompleted:
		return t.Complete(at), nil
	case StatusPending:
		return t.Reopen(), nil
	default:
		return false, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
}

// SetTags replaces the tag set with the normalized form of raw.
func (t *Task) SetTags(raw ...string) {
	t.Tags = NormalizeTags(raw...)
}

// HasTag reports whether the task carries tag, ignoring case.
func (t *Task) HasTag(tag string) bool {
	needle := strings.TrimSpace(tag)
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, needle) {
			return true
		}
	}
	return false
}

// IsCompleted reports whether the task is completed.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether a pending task's due date falls strictly before
// today. Both dates are calendar dates; see DateOf.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.IsCompleted() || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(today)
}

// IsDueSoon reports whether a pending task is due between today and
// today+days inclusive.
func (t *Task) IsDueSoon(today time.Time, days int) bool {
	if t.IsCompleted() || t.DueDate == nil {
		return false
	}
	limit := today.AddDate(0, 0, days)
	return !t.DueDate.Before(today) && !t.DueDate.After(limit)
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		c.DueDate = &v
	}
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Recurrence != nil {
		r := *t.Recurrence
		c.Recurrence = &r
	}
	return &c
}

// ParseStatus converts user input into a TaskStatus, ignoring case.
func ParseStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q (use pending or completed)", s)}
	}
}

// ParsePriority converts user input into a Priority, ignoring case. A blank
// value yields PriorityNone.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == PriorityNone || p.Rank() > 0 {
		return p, nil
	}
	return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q (use high, medium or low)", s)}
}

// ParseFrequency converts user input into a Frequency, ignoring case.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return f, nil
	}
	return "", &ValidationError{Field: "recurrence", Message: fmt.Sprintf("unknown frequency %q", s)}
}
