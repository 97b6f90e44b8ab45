package core

import (
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// CompareTasks is the canonical total order over tasks. It returns a
// negative number when a sorts before b, a positive number when b sorts
// first and 0 for a true tie. Criteria, first difference wins:
//
//  1. incomplete before completed
//  2. overdue before not overdue
//  3. earlier due date first, tasks without a due date last
//  4. higher priority rank first
//  5. earlier creation time first
//
// today is the calendar date (see models.DateOf) used for the overdue check.
func CompareTasks(a, b *models.Task, today time.Time) int {
	if c := compareCompletion(a, b); c != 0 {
		return c
	}
	if c := compareBool(a.IsOverdue(today), b.IsOverdue(today)); c != 0 {
		return c
	}
	if c := compareDueDates(a.DueDate, b.DueDate); c != 0 {
		return c
	}
	if c := comparePriority(a, b); c != 0 {
		return c
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

func compareCompletion(a, b *models.Task) int {
	return compareBool(!a.IsCompleted(), !b.IsCompleted())
}

// compareBool orders true before false.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func compareDueDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

func comparePriority(a, b *models.Task) int {
	// Higher rank first.
	return b.Priority.Rank() - a.Priority.Rank()
}
