package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

var alertToday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func taskDue(id string, offset int) *models.Task {
	task := models.NewTask(id, "alice", "Task "+id, "desc", testTime)
	due := alertToday.AddDate(0, 0, offset)
	task.DueDate = &due
	return task
}

func TestNewSnapshot(t *testing.T) {
	done := taskDue("done", -3)
	done.Complete(testTime)
	undated := models.NewTask("undated", "alice", "Undated", "desc", testTime)

	tasks := []*models.Task{
		taskDue("late", -2),
		taskDue("today", 0),
		taskDue("tomorrow", 1),
		taskDue("later", 5),
		done,
		undated,
	}
	s := NewSnapshot("alice", tasks, alertToday, 1)

	if s.Pending != 5 {
		t.Errorf("pending = %d, want 5", s.Pending)
	}
	if len(s.Overdue) != 1 || s.Overdue[0].ID != "late" {
		t.Errorf("overdue = %v", s.Overdue)
	}
	if len(s.DueSoon) != 2 || s.DueSoon[0].ID != "today" || s.DueSoon[1].ID != "tomorrow" {
		t.Errorf("due soon = %v", s.DueSoon)
	}
}

func TestAlertEngine_Evaluate(t *testing.T) {
	tasks := []*models.Task{taskDue("late", -2), taskDue("today", 0), taskDue("later", 5)}
	s := NewSnapshot("alice", tasks, alertToday, 1)
	engine := NewAlertEngine(AlertThresholds{MaxPending: 2}, func() time.Time { return testTime })

	alerts := engine.Evaluate(s)
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d: %+v", len(alerts), alerts)
	}

	want := []struct {
		id       string
		severity AlertSeverity
		text     string
	}{
		{"overdue-late", SeverityHigh, "was due 2025-03-08"},
		{"due-soon-today", SeverityMedium, "is due 2025-03-10"},
		{"pending-alice", SeverityLow, "3 pending tasks"},
	}
	for i, w := range want {
		a := alerts[i]
		if a.ID != w.id || a.Severity != w.severity || !strings.Contains(a.Message, w.text) {
			t.Errorf("alert %d = %+v, want id %s severity %s containing %q", i, a, w.id, w.severity, w.text)
		}
		if !a.TriggeredAt.Equal(testTime) {
			t.Errorf("alert %d triggered at %v", i, a.TriggeredAt)
		}
	}
}

func TestAlertEngine_PendingCheckDisabled(t *testing.T) {
	s := Snapshot{Owner: "alice", Pending: 1000}
	if alerts := NewAlertEngine(AlertThresholds{}, nil).Evaluate(s); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}

func TestAlertForEvent(t *testing.T) {
	tests := []struct {
		kind     models.EventKind
		severity AlertSeverity
		text     string
	}{
		{models.EventOverdueCheck, SeverityHigh, "is overdue (due 2025-03-09)"},
		{models.EventDueSoon, SeverityMedium, "is due 2025-03-09"},
		{models.EventCompleted, SeverityLow, "completed by alice"},
		{models.EventDeleted, SeverityLow, "deleted"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			a := AlertForEvent(testTask("t1"), tt.kind, testTime)
			if a.Severity != tt.severity || !strings.Contains(a.Message, tt.text) {
				t.Errorf("alert = %+v", a)
			}
			if a.ID != string(tt.kind)+"-t1" || a.Condition != "task_"+string(tt.kind) {
				t.Errorf("alert ids = %s / %s", a.ID, a.Condition)
			}
		})
	}
}
