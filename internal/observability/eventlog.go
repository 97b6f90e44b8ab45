package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// EventLogFileName is the default name of the JSONL event log.
const EventLogFileName = "events.jsonl"

// Event is one line of the event log.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN
	Type    string         `json:"type"`  // task.<kind>
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventType returns the log type recorded for an event kind.
func EventType(kind models.EventKind) string {
	return "task." + string(kind)
}

// EventFilter specifies criteria for reading events. Zero fields match
// everything.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
	Owner string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog opens (creating when needed) an append-only JSONL log
// at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f}, nil
}

func (l *jsonlEventLog) Write(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read scans the whole log and returns the events matching filter in the
// order they were written. Malformed lines are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if filter.matches(event) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func (f EventFilter) matches(event Event) bool {
	if f.Since != nil && event.Time.Before(*f.Since) {
		return false
	}
	if f.Until != nil && event.Time.After(*f.Until) {
		return false
	}
	if f.Type != "" && event.Type != f.Type {
		return false
	}
	if f.Level != "" && event.Level != f.Level {
		return false
	}
	if f.Owner != "" {
		if owner, _ := event.Data["owner_id"].(string); owner != f.Owner {
			return false
		}
	}
	return true
}

// EventLogObserver records every event it receives in an EventLog.
type EventLogObserver struct {
	log EventLog
	now func() time.Time
}

// NewEventLogObserver creates an observer appending to log. A nil now uses
// time.Now.
func NewEventLogObserver(log EventLog, now func() time.Time) *EventLogObserver {
	if now == nil {
		now = time.Now
	}
	return &EventLogObserver{log: log, now: now}
}

// Receive implements Observer.
func (o *EventLogObserver) Receive(task *models.Task, kind models.EventKind) error {
	level := "INFO"
	if kind == models.EventOverdueCheck {
		level = "WARN"
	}
	data := map[string]any{
		"task_id":  task.ID,
		"owner_id": task.OwnerID,
		"title":    task.Title,
		"status":   string(task.Status),
	}
	if task.DueDate != nil {
		data["due_date"] = models.FormatDate(task.DueDate)
	}
	if task.Priority != models.PriorityNone {
		data["priority"] = string(task.Priority)
	}
	return o.log.Write(Event{
		Time:    o.now().UTC(),
		Level:   level,
		Type:    EventType(kind),
		Message: fmt.Sprintf("task %s %s", task.ID, kind),
		Data:    data,
	})
}
