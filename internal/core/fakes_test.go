package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// memRepository implements Repository in memory with the same version rules
// as the real backends.
type memRepository struct {
	mu    sync.Mutex
	tasks map[string]*models.Task
	// failSave, when set, is returned by the next Save.
	failSave error
}

func newMemRepository() *memRepository {
	return &memRepository{tasks: make(map[string]*models.Task)}
}

func (r *memRepository) LoadByOwner(ownerID string) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepository) Find(id, ownerID string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	return t.Clone(), nil
}

func (r *memRepository) Save(task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failSave; err != nil {
		r.failSave = nil
		return nil, err
	}
	existing, ok := r.tasks[task.ID]
	switch {
	case task.Version == 0 && ok:
		return nil, &models.DuplicateError{Kind: "task", Key: task.ID}
	case task.Version != 0 && !ok:
		return nil, &models.NotFoundError{Kind: "task", ID: task.ID}
	case task.Version != 0 && existing.Version != task.Version:
		return nil, &models.ConflictError{ID: task.ID, Expected: task.Version, Actual: existing.Version}
	}
	stored := task.Clone()
	stored.Version++
	r.tasks[task.ID] = stored
	return stored.Clone(), nil
}

func (r *memRepository) Delete(id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

// bump simulates a concurrent writer by advancing the stored version.
func (r *memRepository) bump(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[id].Version++
}

type publishedEvent struct {
	TaskID string
	Kind   models.EventKind
	Task   *models.Task
}

// recordingPublisher implements EventPublisher by remembering every event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(task *models.Task, kind models.EventKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{TaskID: task.ID, Kind: kind, Task: task.Clone()})
}

func (p *recordingPublisher) kinds() []models.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventKind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

// sequenceIDs implements TaskIDGenerator with predictable ids.
type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) GenerateTaskID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("task-%03d", g.n), nil
}

type failingIDs struct{}

func (failingIDs) GenerateTaskID() (string, error) { return "", errors.New("entropy exhausted") }

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var (
	testNow   = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	testToday = models.DateOf(testNow, time.UTC)
)

// date returns testToday shifted by offset days.
func date(offset int) *time.Time {
	d := testToday.AddDate(0, 0, offset)
	return &d
}

// dateString returns testToday shifted by offset days as YYYY-MM-DD.
func dateString(offset int) string {
	return date(offset).Format(models.DateLayout)
}

func str(s string) *string { return &s }

type serviceFixture struct {
	svc   TaskService
	repo  *memRepository
	pub   *recordingPublisher
	clock *fakeClock
}

func newServiceFixture() *serviceFixture {
	repo := newMemRepository()
	pub := &recordingPublisher{}
	clock := &fakeClock{now: testNow}
	svc := NewTaskService(TaskServiceConfig{
		Repository:  repo,
		Publisher:   pub,
		IDs:         &sequenceIDs{},
		Location:    time.UTC,
		Now:         clock.Now,
		DueSoonDays: 1,
		Owner:       "alice",
	})
	return &serviceFixture{svc: svc, repo: repo, pub: pub, clock: clock}
}
