package storage

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// taskRepository is the method set both backends share.
type taskRepository interface {
	LoadByOwner(ownerID string) ([]*models.Task, error)
	Find(id, ownerID string) (*models.Task, error)
	Save(task *models.Task) (*models.Task, error)
	Delete(id, ownerID string) (bool, error)
}

var (
	_ taskRepository = (*YAMLRepository)(nil)
	_ taskRepository = (*SQLiteRepository)(nil)
)

var created = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func sampleTask(id, owner string) *models.Task {
	task := models.NewTask(id, owner, "Task "+id, "Description of "+id, created)
	due := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	task.DueDate = &due
	task.Tags = []string{"work", "Urgent"}
	task.Priority = models.PriorityHigh
	task.Recurrence = &models.Recurrence{Frequency: models.FrequencyWeekly, Interval: 2}
	task.ParentTaskID = "parent-1"
	return task
}

// runRepositoryContract exercises the behaviour every backend must share.
func runRepositoryContract(t *testing.T, open func(t *testing.T) taskRepository) {
	t.Run("insert and find", func(t *testing.T) {
		repo := open(t)
		task := sampleTask("t1", "alice")

		saved, err := repo.Save(task)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.Version != 1 {
			t.Errorf("expected version 1, got %d", saved.Version)
		}
		if task.Version != 0 {
			t.Errorf("Save mutated its argument: version %d", task.Version)
		}

		got, err := repo.Find("t1", "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := task.Clone()
		want.Version = 1
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip differs:\n got  %+v\n want %+v", got, want)
		}
	})

	t.Run("completed task keeps timestamp", func(t *testing.T) {
		repo := open(t)
		task := sampleTask("t1", "alice")
		task.Complete(created.Add(time.Hour))
		if _, err := repo.Save(task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := repo.Find("t1", "alice")
		if got.Status != models.StatusCompleted || got.CompletedAt == nil || !got.CompletedAt.Equal(created.Add(time.Hour)) {
			t.Errorf("completion lost: %+v", got)
		}
	})

	t.Run("find misses", func(t *testing.T) {
		repo := open(t)
		if _, err := repo.Save(sampleTask("t1", "alice")); err != nil {
			t.Fatal(err)
		}
		for _, tc := range []struct{ id, owner string }{{"t2", "alice"}, {"t1", "bob"}} {
			got, err := repo.Find(tc.id, tc.owner)
			if err != nil || got != nil {
				t.Errorf("Find(%s, %s) = %v, %v; want nil, nil", tc.id, tc.owner, got, err)
			}
		}
	})

	t.Run("duplicate insert", func(t *testing.T) {
		repo := open(t)
		if _, err := repo.Save(sampleTask("t1", "alice")); err != nil {
			t.Fatal(err)
		}
		_, err := repo.Save(sampleTask("t1", "bob"))
		if !errors.Is(err, models.ErrDuplicate) {
			t.Fatalf("expected duplicate error, got %v", err)
		}
	})

	t.Run("update with matching version", func(t *testing.T) {
		repo := open(t)
		saved, _ := repo.Save(sampleTask("t1", "alice"))
		saved.Title = "Renamed"
		saved.Tags = nil
		saved.Recurrence = nil

		updated, err := repo.Save(saved)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Version != 2 {
			t.Errorf("expected version 2, got %d", updated.Version)
		}
		got, _ := repo.Find("t1", "alice")
		if got.Title != "Renamed" || got.Tags != nil || got.Recurrence != nil || got.Version != 2 {
			t.Errorf("update not stored: %+v", got)
		}
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		repo := open(t)
		saved, _ := repo.Save(sampleTask("t1", "alice"))
		first := saved.Clone()
		second := saved.Clone()

		first.Title = "first writer"
		if _, err := repo.Save(first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second.Title = "second writer"
		_, err := repo.Save(second)
		var conflict *models.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if conflict.Expected != 1 || conflict.Actual != 2 {
			t.Errorf("conflict = %+v", conflict)
		}
		got, _ := repo.Find("t1", "alice")
		if got.Title != "first writer" {
			t.Errorf("second writer overwrote the first: %q", got.Title)
		}
	})

	t.Run("update of missing or foreign task", func(t *testing.T) {
		repo := open(t)
		saved, _ := repo.Save(sampleTask("t1", "alice"))

		ghost := sampleTask("t9", "alice")
		ghost.Version = 1
		if _, err := repo.Save(ghost); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected not found for missing task, got %v", err)
		}

		stolen := saved.Clone()
		stolen.OwnerID = "bob"
		if _, err := repo.Save(stolen); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected not found for foreign task, got %v", err)
		}
	})

	t.Run("blank id", func(t *testing.T) {
		repo := open(t)
		if _, err := repo.Save(sampleTask("", "alice")); !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("load by owner", func(t *testing.T) {
		repo := open(t)
		for _, id := range []string{"c", "a", "b"} {
			if _, err := repo.Save(sampleTask(id, "alice")); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := repo.Save(sampleTask("z", "bob")); err != nil {
			t.Fatal(err)
		}

		tasks, err := repo.LoadByOwner("alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got []string
		for _, task := range tasks {
			got = append(got, task.ID)
		}
		if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
			t.Errorf("ids = %v, want %v", got, want)
		}

		none, err := repo.LoadByOwner("carol")
		if err != nil || len(none) != 0 {
			t.Errorf("LoadByOwner(carol) = %v, %v", none, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo := open(t)
		if _, err := repo.Save(sampleTask("t1", "alice")); err != nil {
			t.Fatal(err)
		}

		removed, err := repo.Delete("t1", "bob")
		if err != nil || removed {
			t.Errorf("foreign delete = %v, %v", removed, err)
		}
		removed, err = repo.Delete("t1", "alice")
		if err != nil || !removed {
			t.Errorf("delete = %v, %v", removed, err)
		}
		removed, err = repo.Delete("t1", "alice")
		if err != nil || removed {
			t.Errorf("second delete = %v, %v", removed, err)
		}
		if got, _ := repo.Find("t1", "alice"); got != nil {
			t.Errorf("task still present: %+v", got)
		}
	})
}
