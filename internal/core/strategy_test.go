package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// mk builds a task created minutesAfter testNow.
func mk(id string, minutesAfter int, opts ...func(*models.Task)) *models.Task {
	t := models.NewTask(id, "alice", "title "+id, "desc "+id, testNow.Add(time.Duration(minutesAfter)*time.Minute))
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func due(offset int) func(*models.Task) {
	return func(t *models.Task) { t.DueDate = date(offset) }
}

func prio(p models.Priority) func(*models.Task) {
	return func(t *models.Task) { t.Priority = p }
}

func tags(raw ...string) func(*models.Task) {
	return func(t *models.Task) { t.SetTags(raw...) }
}

func completed(t *models.Task) { t.Complete(testNow) }

func ids(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

// --- Comparator ---

func TestCompareTasks_Criteria(t *testing.T) {
	tests := []struct {
		name string
		a, b *models.Task
	}{
		{"pending before completed", mk("a", 5), mk("b", 0, completed)},
		{"overdue before not overdue", mk("a", 5, due(-1)), mk("b", 0, due(0), prio(models.PriorityHigh))},
		{"earlier due date first", mk("a", 5, due(1)), mk("b", 0, due(2), prio(models.PriorityHigh))},
		{"dated before undated", mk("a", 5, due(30)), mk("b", 0, prio(models.PriorityHigh))},
		{"higher priority first", mk("a", 5, prio(models.PriorityMedium)), mk("b", 0, prio(models.PriorityLow))},
		{"low priority before none", mk("a", 5, prio(models.PriorityLow)), mk("b", 0)},
		{"earlier creation first", mk("a", 0), mk("b", 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := CompareTasks(tt.a, tt.b, testToday); c >= 0 {
				t.Errorf("CompareTasks(a, b) = %d, want < 0", c)
			}
			if c := CompareTasks(tt.b, tt.a, testToday); c <= 0 {
				t.Errorf("CompareTasks(b, a) = %d, want > 0", c)
			}
		})
	}
}

func TestCompareTasks_TrueTie(t *testing.T) {
	a := mk("a", 0, due(2), prio(models.PriorityLow))
	b := mk("b", 0, due(2), prio(models.PriorityLow))
	if c := CompareTasks(a, b, testToday); c != 0 {
		t.Errorf("CompareTasks = %d, want 0", c)
	}
	if c := CompareTasks(a, a, testToday); c != 0 {
		t.Errorf("CompareTasks(a, a) = %d, want 0", c)
	}
}

// --- Filters ---

func TestTagFilter(t *testing.T) {
	tasks := []*models.Task{
		mk("a", 0, tags("Work")),
		mk("b", 1, tags("home")),
		mk("c", 2),
		mk("d", 3, tags("garden, WORK")),
	}

	got := TagFilter{Tags: []string{"work"}}.Apply(tasks)
	if want := []string{"a", "d"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("TagFilter(work) = %v, want %v", ids(got), want)
	}

	got = TagFilter{Tags: []string{"home", "garden"}}.Apply(tasks)
	if want := []string{"b", "d"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("TagFilter(home, garden) = %v, want %v", ids(got), want)
	}

	got = TagFilter{}.Apply(tasks)
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("empty TagFilter should pass through, got %v", ids(got))
	}
}

func TestDueDateRangeFilter(t *testing.T) {
	tasks := []*models.Task{
		mk("past", 0, due(-3)),
		mk("today", 1, due(0)),
		mk("soon", 2, due(2)),
		mk("later", 3, due(10)),
		mk("undated", 4),
	}

	tests := []struct {
		name   string
		filter DueDateRangeFilter
		want   []string
	}{
		{"no bounds", DueDateRangeFilter{}, []string{"past", "today", "soon", "later", "undated"}},
		{"before inclusive", DueDateRangeFilter{Before: date(0)}, []string{"past", "today"}},
		{"after inclusive", DueDateRangeFilter{After: date(2)}, []string{"soon", "later"}},
		{"between", DueDateRangeFilter{After: date(0), Before: date(2)}, []string{"today", "soon"}},
		{"on", DueDateRangeFilter{On: date(2)}, []string{"soon"}},
		{"on decides alone", DueDateRangeFilter{On: date(10), Before: date(0)}, []string{"later"}},
		{"empty range", DueDateRangeFilter{After: date(5), Before: date(1)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(tasks))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusAndOverdueFilters(t *testing.T) {
	tasks := []*models.Task{
		mk("late", 0, due(-1)),
		mk("done-late", 1, due(-1), completed),
		mk("fine", 2, due(3)),
	}

	got := ids(StatusFilter{Status: models.StatusCompleted}.Apply(tasks))
	if want := []string{"done-late"}; !reflect.DeepEqual(got, want) {
		t.Errorf("StatusFilter(completed) = %v, want %v", got, want)
	}
	got = ids(OverdueFilter{Today: testToday}.Apply(tasks))
	if want := []string{"late"}; !reflect.DeepEqual(got, want) {
		t.Errorf("OverdueFilter = %v, want %v", got, want)
	}
	got = ids(DueSoonFilter{Today: testToday, Days: 3}.Apply(tasks))
	if want := []string{"fine"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DueSoonFilter = %v, want %v", got, want)
	}
}

func TestChainFilters_Intersection(t *testing.T) {
	tasks := []*models.Task{
		mk("a", 0, tags("work"), due(-1)),
		mk("b", 1, tags("work"), due(4)),
		mk("c", 2, tags("home"), due(-2)),
	}
	chain := ChainFilters(TagFilter{Tags: []string{"work"}}, OverdueFilter{Today: testToday})
	if got, want := ids(chain.Apply(tasks)), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("chain = %v, want %v", got, want)
	}

	if got := ChainFilters().Apply(tasks); !reflect.DeepEqual(got, tasks) {
		t.Errorf("empty chain should be identity, got %v", ids(got))
	}
}

func TestFilters_DoNotMutateInput(t *testing.T) {
	tasks := []*models.Task{mk("a", 0, tags("x")), mk("b", 1), mk("c", 2, tags("x"))}
	before := ids(tasks)
	TagFilter{Tags: []string{"x"}}.Apply(tasks)
	if !reflect.DeepEqual(ids(tasks), before) {
		t.Errorf("input reordered: %v", ids(tasks))
	}
}

func TestListCriteria_Filters(t *testing.T) {
	tasks := []*models.Task{
		mk("a", 0, tags("work"), due(-1)),
		mk("b", 1, tags("work"), due(2)),
		mk("c", 2, tags("work"), due(2), completed),
		mk("d", 3, due(2)),
	}
	criteria := ListCriteria{
		Tags:   []string{"WORK"},
		Status: models.StatusPending,
		DueOn:  date(2),
	}
	if got, want := ids(criteria.Filters(testToday).Apply(tasks)), []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("criteria filter = %v, want %v", got, want)
	}
	if got := (ListCriteria{}).Filters(testToday).Apply(tasks); !reflect.DeepEqual(got, tasks) {
		t.Errorf("empty criteria should be identity, got %v", ids(got))
	}
}

// --- Sorters ---

func TestNaturalSort(t *testing.T) {
	tasks := []*models.Task{
		mk("done", 0, completed),
		mk("undated-high", 1, prio(models.PriorityHigh)),
		mk("due-later", 2, due(5)),
		mk("overdue", 3, due(-2)),
		mk("due-soon", 4, due(1)),
	}
	got := ids(SorterByName("", testToday).Sort(tasks))
	want := []string{"overdue", "due-soon", "due-later", "undated-high", "done"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("natural order = %v, want %v", got, want)
	}
	if ids(tasks)[0] != "done" {
		t.Error("Sort mutated its input")
	}
}

func TestDueDateSort_OrdersByDate(t *testing.T) {
	tasks := []*models.Task{mk("d2", 0, due(4)), mk("d1", 1, due(3))}
	got := ids(SorterByName("due_date", testToday).Sort(tasks))
	if want := []string{"d1", "d2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("due_date order = %v, want %v", got, want)
	}
}

func TestPrioritySort_IgnoresDueDates(t *testing.T) {
	tasks := []*models.Task{
		mk("low-overdue", 0, prio(models.PriorityLow), due(-5)),
		mk("high-undated", 1, prio(models.PriorityHigh)),
		mk("done-high", 2, prio(models.PriorityHigh), completed),
		mk("medium", 3, prio(models.PriorityMedium), due(1)),
		mk("none", 4),
	}
	got := ids(SorterByName("priority", testToday).Sort(tasks))
	want := []string{"high-undated", "medium", "low-overdue", "none", "done-high"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("priority order = %v, want %v", got, want)
	}
}

func TestPrioritySort_SameDueDate(t *testing.T) {
	tasks := []*models.Task{
		mk("low", 0, prio(models.PriorityLow), due(2)),
		mk("high", 1, prio(models.PriorityHigh), due(2)),
	}
	got := ids(SorterByName("priority", testToday).Sort(tasks))
	if want := []string{"high", "low"}; !reflect.DeepEqual(got, want) {
		t.Errorf("priority order = %v, want %v", got, want)
	}
}

func TestSorterByName(t *testing.T) {
	tests := map[string]string{
		"":         SortNatural,
		"default":  SortNatural,
		"natural":  SortNatural,
		"DUE_DATE": SortDueDate,
		"priority": SortPriority,
		"bogus":    SortNatural,
	}
	for name, want := range tests {
		if got := SorterByName(name, testToday).Name(); got != want {
			t.Errorf("SorterByName(%q).Name() = %q, want %q", name, got, want)
		}
	}
	if got, want := SortNames(), []string{"default", "due_date", "natural", "priority"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SortNames() = %v, want %v", got, want)
	}
}

func TestSort_StableForTies(t *testing.T) {
	a := mk("a", 0)
	b := mk("b", 0)
	c := mk("c", 0)
	got := ids(NaturalSort{Today: testToday}.Sort([]*models.Task{c, a, b}))
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ties reordered: %v, want %v", got, want)
	}
}
