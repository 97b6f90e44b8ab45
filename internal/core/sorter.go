package core

import (
	"slices"
	"strings"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Sort strategy names accepted by SorterByName.
const (
	SortDefault  = "default"
	SortNatural  = "natural"
	SortDueDate  = "due_date"
	SortPriority = "priority"
)

// Sorter orders a task sequence. Sort returns a new slice and leaves its
// input untouched; ties keep their input order.
type Sorter interface {
	Name() string
	Sort(tasks []*models.Task) []*models.Task
}

type compareFunc func(a, b *models.Task) int

func sortWith(tasks []*models.Task, cmp compareFunc) []*models.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, cmp)
	return out
}

// NaturalSort orders tasks with CompareTasks.
type NaturalSort struct {
	Today time.Time
}

func (NaturalSort) Name() string { return SortNatural }

func (s NaturalSort) Sort(tasks []*models.Task) []*models.Task {
	return sortWith(tasks, func(a, b *models.Task) int { return CompareTasks(a, b, s.Today) })
}

// DueDateSort is the natural order under its own name: after completion and
// overdue status, the due date already dominates.
type DueDateSort struct {
	Today time.Time
}

func (DueDateSort) Name() string { return SortDueDate }

func (s DueDateSort) Sort(tasks []*models.Task) []*models.Task {
	return NaturalSort{Today: s.Today}.Sort(tasks)
}

// PrioritySort orders by completion, then priority rank descending, then
// creation time. Due dates and overdue status are ignored.
type PrioritySort struct{}

func (PrioritySort) Name() string { return SortPriority }

func (PrioritySort) Sort(tasks []*models.Task) []*models.Task {
	return sortWith(tasks, func(a, b *models.Task) int {
		if c := compareCompletion(a, b); c != 0 {
			return c
		}
		if c := comparePriority(a, b); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

var sorterFactories = map[string]func(today time.Time) Sorter{
	SortDefault:  func(today time.Time) Sorter { return NaturalSort{Today: today} },
	SortNatural:  func(today time.Time) Sorter { return NaturalSort{Today: today} },
	SortDueDate:  func(today time.Time) Sorter { return DueDateSort{Today: today} },
	SortPriority: func(time.Time) Sorter { return PrioritySort{} },
}

// SorterByName returns the named sort strategy. Names are matched ignoring
// case; blank or unknown names select the natural order.
func SorterByName(name string, today time.Time) Sorter {
	if factory, ok := sorterFactories[strings.ToLower(strings.TrimSpace(name))]; ok {
		return factory(today)
	}
	return NaturalSort{Today: today}
}

// SortNames lists the accepted strategy names in lexical order.
func SortNames() []string {
	names := make([]string, 0, len(sorterFactories))
	for name := range sorterFactories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
