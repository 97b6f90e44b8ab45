package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Metrics holds counts derived from the event log.
type Metrics struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksUpdated   int            `json:"tasks_updated"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksReopened  int            `json:"tasks_reopened"`
	TasksDeleted   int            `json:"tasks_deleted"`
	OverdueChecks  int            `json:"overdue_checks"`
	DueSoonHits    int            `json:"due_soon_hits"`
	CreatedByOwner map[string]int `json:"created_by_owner"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	// Calculate aggregates events recorded at or after since. A non-empty
	// owner restricts the count to that owner's tasks.
	Calculate(owner string, since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

func (mc *metricsCalculator) Calculate(owner string, since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since, Owner: owner})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{CreatedByOwner: make(map[string]int)}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventType(models.EventCreated):
			m.TasksCreated++
			if o, ok := event.Data["owner_id"].(string); ok {
				m.CreatedByOwner[o]++
			}
		case EventType(models.EventUpdated):
			m.TasksUpdated++
		case EventType(models.EventCompleted):
			m.TasksCompleted++
		case EventType(models.EventReopened):
			m.TasksReopened++
		case EventType(models.EventDeleted):
			m.TasksDeleted++
		case EventType(models.EventOverdueCheck):
			m.OverdueChecks++
		case EventType(models.EventDueSoon):
			m.DueSoonHits++
		}
	}
	return m, nil
}
