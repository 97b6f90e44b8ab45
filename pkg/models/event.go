package models

// EventKind names a task lifecycle event published on the notification bus.
type EventKind string

const (
	EventCreated      EventKind = "created"
	EventUpdated      EventKind = "updated"
	EventCompleted    EventKind = "completed"
	EventReopened     EventKind = "reopened"
	EventDeleted      EventKind = "deleted"
	EventOverdueCheck EventKind = "overdue_check"
	EventDueSoon      EventKind = "due_soon"
)

// AllEventKinds lists every event kind in lifecycle order.
var AllEventKinds = []EventKind{
	EventCreated,
	EventUpdated,
	EventCompleted,
	EventReopened,
	EventDeleted,
	EventOverdueCheck,
	EventDueSoon,
}

// ParseEventKind reports whether s names a known event kind.
func ParseEventKind(s string) (EventKind, bool) {
	for _, k := range AllEventKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
