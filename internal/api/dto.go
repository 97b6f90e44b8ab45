package api

import (
	"time"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// TaskItem is the JSON form of a task.
type TaskItem struct {
	ID           string             `json:"id"`
	OwnerID      string             `json:"owner_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Status       string             `json:"status"`
	DueDate      *string            `json:"due_date,omitempty"`
	Tags         []string           `json:"tags"`
	Priority     *string            `json:"priority,omitempty"`
	Recurrence   *models.Recurrence `json:"recurrence,omitempty"`
	ParentTaskID *string            `json:"parent_task_id,omitempty"`
	Overdue      bool               `json:"overdue"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
	CompletedAt  *string            `json:"completed_at,omitempty"`
	Version      int                `json:"version"`
}

// TaskList wraps a list response with its count.
type TaskList struct {
	Tasks []TaskItem `json:"tasks"`
	Count int        `json:"count"`
}

// RecurrenceRequest sets or clears a task recurrence.
type RecurrenceRequest struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
}

// TaskRequest is the body of POST and PATCH. Omitted fields keep their
// value on PATCH; an empty string clears an optional field and an empty
// tags array clears the tags.
type TaskRequest struct {
	ID           string             `json:"id"`
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	Status       *string            `json:"status"`
	DueDate      *string            `json:"due_date"`
	Tags         *[]string          `json:"tags"`
	Priority     *string            `json:"priority"`
	Recurrence   *RecurrenceRequest `json:"recurrence"`
	ParentTaskID *string            `json:"parent_task_id"`
}

func (r TaskRequest) attrs() (core.TaskAttrs, error) {
	attrs := core.TaskAttrs{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		DueDate:      r.DueDate,
		Priority:     r.Priority,
		ParentTaskID: r.ParentTaskID,
	}
	if r.Tags != nil {
		attrs.Tags = append([]string{}, (*r.Tags)...)
	}
	if r.Recurrence != nil {
		rec := &models.Recurrence{Interval: r.Recurrence.Interval}
		if r.Recurrence.Frequency != "" {
			freq, err := models.ParseFrequency(r.Recurrence.Frequency)
			if err != nil {
				return core.TaskAttrs{}, err
			}
			rec.Frequency = freq
		}
		attrs.Recurrence = rec
	}
	return attrs, nil
}

func toTaskItems(tasks []*models.Task, today time.Time) TaskList {
	items := make([]TaskItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, toTaskItem(t, today))
	}
	return TaskList{Tasks: items, Count: len(items)}
}

func toTaskItem(t *models.Task, today time.Time) TaskItem {
	item := TaskItem{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Tags:        t.Tags,
		Recurrence:  t.Recurrence,
		Overdue:     t.IsOverdue(today),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
		Version:     t.Version,
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if t.DueDate != nil {
		value := models.FormatDate(t.DueDate)
		item.DueDate = &value
	}
	if t.Priority != models.PriorityNone {
		value := string(t.Priority)
		item.Priority = &value
	}
	if t.ParentTaskID != "" {
		value := t.ParentTaskID
		item.ParentTaskID = &value
	}
	if t.CompletedAt != nil {
		value := t.CompletedAt.Format(time.RFC3339)
		item.CompletedAt = &value
	}
	return item
}
