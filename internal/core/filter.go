package core

import (
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Filter narrows a task sequence. Implementations never mutate their input
// and keep the relative order of the tasks they retain.
type Filter interface {
	Apply(tasks []*models.Task) []*models.Task
}

// FilterFunc adapts a predicate into a Filter.
type FilterFunc func(task *models.Task) bool

// Apply retains the tasks for which f returns true.
func (f FilterFunc) Apply(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f(t) {
			out = append(out, t)
		}
	}
	return out
}

// TagFilter retains tasks carrying at least one of Tags, ignoring case. An
// empty tag set passes everything through.
type TagFilter struct {
	Tags []string
}

func (f TagFilter) Apply(tasks []*models.Task) []*models.Task {
	wanted := models.NormalizeTags(f.Tags...)
	if len(wanted) == 0 {
		return tasks
	}
	return FilterFunc(func(t *models.Task) bool {
		for _, tag := range wanted {
			if t.HasTag(tag) {
				return true
			}
		}
		return false
	}).Apply(tasks)
}

// DueDateRangeFilter bounds tasks by calendar due date. With no bound set it
// passes everything through. Otherwise tasks without a due date are dropped;
// On, when set, decides alone, else Before and After are inclusive bounds.
type DueDateRangeFilter struct {
	Before *time.Time
	After  *time.Time
	On     *time.Time
}

func (f DueDateRangeFilter) Apply(tasks []*models.Task) []*models.Task {
	if f.Before == nil && f.After == nil && f.On == nil {
		return tasks
	}
	return FilterFunc(f.matches).Apply(tasks)
}

func (f DueDateRangeFilter) matches(t *models.Task) bool {
	if t.DueDate == nil {
		return false
	}
	due := *t.DueDate
	if f.On != nil {
		return due.Equal(*f.On)
	}
	if f.Before != nil && due.After(*f.Before) {
		return false
	}
	if f.After != nil && due.Before(*f.After) {
		return false
	}
	return true
}

// StatusFilter retains tasks in the given status.
type StatusFilter struct {
	Status models.TaskStatus
}

func (f StatusFilter) Apply(tasks []*models.Task) []*models.Task {
	return FilterFunc(func(t *models.Task) bool { return t.Status == f.Status }).Apply(tasks)
}

// OverdueFilter retains tasks overdue as of Today.
type OverdueFilter struct {
	Today time.Time
}

func (f OverdueFilter) Apply(tasks []*models.Task) []*models.Task {
	return FilterFunc(func(t *models.Task) bool { return t.IsOverdue(f.Today) }).Apply(tasks)
}

// DueSoonFilter retains pending tasks due within Days of Today.
type DueSoonFilter struct {
	Today time.Time
	Days  int
}

func (f DueSoonFilter) Apply(tasks []*models.Task) []*models.Task {
	return FilterFunc(func(t *models.Task) bool { return t.IsDueSoon(f.Today, f.Days) }).Apply(tasks)
}

type filterChain []Filter

func (c filterChain) Apply(tasks []*models.Task) []*models.Task {
	for _, f := range c {
		tasks = f.Apply(tasks)
	}
	return tasks
}

// ChainFilters composes filters by sequential application, so a task must
// pass every one of them. An empty chain is the identity.
func ChainFilters(filters ...Filter) Filter {
	return filterChain(filters)
}

// ListCriteria is the caller-facing query for ListTasks. Zero values mean
// "no constraint".
type ListCriteria struct {
	Tags      []string
	Status    models.TaskStatus
	Overdue   bool
	DueBefore *time.Time
	DueAfter  *time.Time
	DueOn     *time.Time
	SortBy    string
}

// Filters builds the filter chain described by the criteria.
func (c ListCriteria) Filters(today time.Time) Filter {
	var chain []Filter
	if len(c.Tags) > 0 {
		chain = append(chain, TagFilter{Tags: c.Tags})
	}
	if c.Status != "" {
		chain = append(chain, StatusFilter{Status: c.Status})
	}
	if c.Overdue {
		chain = append(chain, OverdueFilter{Today: today})
	}
	if c.DueBefore != nil || c.DueAfter != nil || c.DueOn != nil {
		chain = append(chain, DueDateRangeFilter{Before: c.DueBefore, After: c.DueAfter, On: c.DueOn})
	}
	return ChainFilters(chain...)
}
