package core

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Repository persists tasks. Implementations live in the storage package;
// the interface is defined here so core does not import storage.
//
// Find returns (nil, nil) when no task with that id belongs to the owner.
// Save inserts tasks whose Version is 0 (DuplicateError when the id exists)
// and otherwise replaces the stored task only if its version still matches
// (ConflictError otherwise). The returned task carries the new version.
type Repository interface {
	LoadByOwner(ownerID string) ([]*models.Task, error)
	Find(id, ownerID string) (*models.Task, error)
	Save(task *models.Task) (*models.Task, error)
	Delete(id, ownerID string) (bool, error)
}

// EventPublisher is the subset of the observability bus that the service
// needs. Publish must not fail the caller.
type EventPublisher interface {
	Publish(task *models.Task, kind models.EventKind)
}

// TaskAttrs carries caller-supplied task attributes as raw input. A nil
// pointer leaves the attribute untouched on update; a nil Tags slice does
// the same while an empty non-nil slice clears the tags. An empty due date,
// priority or parent id clears that attribute, and a Recurrence with an
// empty Frequency clears the recurrence.
type TaskAttrs struct {
	// ID is honored by AddTask only; blank means generate one.
	ID           string
	Title        *string
	Description  *string
	Status       *string
	DueDate      *string
	Tags         []string
	Priority     *string
	Recurrence   *models.Recurrence
	ParentTaskID *string

	// CreatedAt and CompletedAt are honored by AddTask only, so imports can
	// carry history over. Nil means "now".
	CreatedAt   *time.Time
	CompletedAt *time.Time
}

// ImportOptions controls ImportTasks.
type ImportOptions struct {
	// Strict aborts the import at the first malformed row instead of
	// skipping it with a warning.
	Strict bool
}

// ImportWarning records a skipped import row.
type ImportWarning struct {
	Row int
	Err error
}

func (w ImportWarning) String() string {
	return fmt.Sprintf("row %d: %v", w.Row, w.Err)
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported []*models.Task
	Warnings []ImportWarning
}

// TaskService implements the task use cases for one owner at a time.
type TaskService interface {
	SetCurrentOwner(ownerID string)
	ClearCurrentOwner()
	CurrentOwner() string
	// ForOwner returns an independent service bound to ownerID that shares
	// this service's dependencies.
	ForOwner(ownerID string) TaskService
	// Today is the current calendar date in the configured time zone.
	Today() time.Time

	AddTask(attrs TaskAttrs) (*models.Task, error)
	FindTaskByID(id string) (*models.Task, error)
	ListTasks(criteria ListCriteria) ([]*models.Task, error)
	UpdateTask(id string, attrs TaskAttrs) (*models.Task, error)
	CompleteTask(id string) (*models.Task, error)
	ReopenTask(id string) (*models.Task, error)
	DeleteTask(id string) error
	CheckOverdueTasks() ([]*models.Task, error)
	CheckDueSoonTasks() ([]*models.Task, error)
	ExportTasks(format, path string) (int, error)
	ImportTasks(format, path string, opts ImportOptions) (*ImportResult, error)
}

// TaskServiceConfig holds the dependencies of a TaskService.
type TaskServiceConfig struct {
	Repository Repository
	Publisher  EventPublisher
	IDs        TaskIDGenerator
	// Location decides which calendar date "today" is. Defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
	// DueSoonDays is the due-soon window past today, inclusive.
	DueSoonDays int
	// Owner is the initial current owner; may be blank.
	Owner string
}

type serviceDeps struct {
	repo        Repository
	publisher   EventPublisher
	ids         TaskIDGenerator
	loc         *time.Location
	now         func() time.Time
	dueSoonDays int
}

type taskService struct {
	deps *serviceDeps

	mu    sync.RWMutex
	owner string
}

// NewTaskService creates a TaskService. Repository is required; a nil
// publisher drops events and a nil generator issues UUIDs.
func NewTaskService(cfg TaskServiceConfig) TaskService {
	deps := &serviceDeps{
		repo:        cfg.Repository,
		publisher:   cfg.Publisher,
		ids:         cfg.IDs,
		loc:         cfg.Location,
		now:         cfg.Now,
		dueSoonDays: cfg.DueSoonDays,
	}
	if deps.publisher == nil {
		deps.publisher = discardPublisher{}
	}
	if deps.ids == nil {
		deps.ids = NewUUIDGenerator()
	}
	if deps.loc == nil {
		deps.loc = time.UTC
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	return &taskService{deps: deps, owner: cfg.Owner}
}

type discardPublisher struct{}

func (discardPublisher) Publish(*models.Task, models.EventKind) {}

func (s *taskService) SetCurrentOwner(ownerID string) {
	s.mu.Lock()
	s.owner = strings.TrimSpace(ownerID)
	s.mu.Unlock()
}

func (s *taskService) ClearCurrentOwner() {
	s.SetCurrentOwner("")
}

func (s *taskService) CurrentOwner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

func (s *taskService) ForOwner(ownerID string) TaskService {
	return &taskService{deps: s.deps, owner: strings.TrimSpace(ownerID)}
}

func (s *taskService) Today() time.Time {
	return models.DateOf(s.deps.now(), s.deps.loc)
}

func (s *taskService) requireOwner() (string, error) {
	owner := s.CurrentOwner()
	if owner == "" {
		return "", &models.NotFoundError{Kind: "owner"}
	}
	return owner, nil
}

// AddTask builds, validates and stores a new task for the current owner,
// then publishes EventCreated.
func (s *taskService) AddTask(attrs TaskAttrs) (*models.Task, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(attrs.ID)
	if id == "" {
		if id, err = s.deps.ids.GenerateTaskID(); err != nil {
			return nil, fmt.Errorf("adding task: %w", err)
		}
	}

	now := s.deps.now()
	createdAt := now
	if attrs.CreatedAt != nil {
		createdAt = *attrs.CreatedAt
	}
	task := models.NewTask(id, owner, "", "", createdAt)

	completedAt := now
	if attrs.CompletedAt != nil {
		completedAt = *attrs.CompletedAt
	}
	if _, err := applyAttrs(task, attrs, completedAt); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.deps.repo.Save(task)
	if err != nil {
		return nil, fmt.Errorf("adding task %s: %w", id, err)
	}
	s.deps.publisher.Publish(saved, models.EventCreated)
	return saved, nil
}

// FindTaskByID returns the current owner's task with the given id.
func (s *taskService) FindTaskByID(id string) (*models.Task, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	return s.find(id, owner)
}

func (s *taskService) find(id, owner string) (*models.Task, error) {
	task, err := s.deps.repo.Find(id, owner)
	if err != nil {
		return nil, fmt.Errorf("finding task %s: %w", id, err)
	}
	if task == nil {
		return nil, &models.NotFoundError{Kind: "task", ID: id}
	}
	return task, nil
}

// ListTasks returns the current owner's tasks narrowed by criteria and
// ordered by the named sort strategy.
func (s *taskService) ListTasks(criteria ListCriteria) ([]*models.Task, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	tasks, err := s.deps.repo.LoadByOwner(owner)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	today := s.Today()
	tasks = criteria.Filters(today).Apply(tasks)
	return SorterByName(criteria.SortBy, today).Sort(tasks), nil
}

// UpdateTask applies attrs to the task and stores it. A status change
// publishes EventCompleted or EventReopened, any other change publishes
// EventUpdated, and an update that changes nothing is not stored and
// publishes nothing.
func (s *taskService) UpdateTask(id string, attrs TaskAttrs) (*models.Task, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	task, err := s.find(id, owner)
	if err != nil {
		return nil, err
	}

	before := task.Clone()
	statusChanged, err := applyAttrs(task, attrs, s.deps.now())
	if err != nil {
		return nil, err
	}
	if reflect.DeepEqual(before, task) {
		return task, nil
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.deps.now()

	saved, err := s.deps.repo.Save(task)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}

	kind := models.EventUpdated
	if statusChanged {
		kind = models.EventReopened
		if saved.IsCompleted() {
			kind = models.EventCompleted
		}
	}
	s.deps.publisher.Publish(saved, kind)
	return saved, nil
}

// CompleteTask marks the task completed. Completing a completed task is a
// no-op that keeps the original completion time.
func (s *taskService) CompleteTask(id string) (*models.Task, error) {
	status := string(models.StatusCompleted)
	return s.UpdateTask(id, TaskAttrs{Status: &status})
}

// ReopenTask returns the task to pending.
func (s *taskService) ReopenTask(id string) (*models.Task, error) {
	status := string(models.StatusPending)
	return s.UpdateTask(id, TaskAttrs{Status: &status})
}

// DeleteTask removes the current owner's task and publishes EventDeleted.
func (s *taskService) DeleteTask(id string) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	task, err := s.find(id, owner)
	if err != nil {
		return err
	}
	removed, err := s.deps.repo.Delete(id, owner)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if !removed {
		return &models.NotFoundError{Kind: "task", ID: id}
	}
	s.deps.publisher.Publish(task, models.EventDeleted)
	return nil
}

// CheckOverdueTasks publishes EventOverdueCheck for every overdue task of
// the current owner and returns them in natural order.
func (s *taskService) CheckOverdueTasks() ([]*models.Task, error) {
	today := s.Today()
	return s.scan(OverdueFilter{Today: today}, today, models.EventOverdueCheck)
}

// CheckDueSoonTasks publishes EventDueSoon for every pending task due
// between today and the end of the due-soon window.
func (s *taskService) CheckDueSoonTasks() ([]*models.Task, error) {
	today := s.Today()
	return s.scan(DueSoonFilter{Today: today, Days: s.deps.dueSoonDays}, today, models.EventDueSoon)
}

func (s *taskService) scan(filter Filter, today time.Time, kind models.EventKind) ([]*models.Task, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	tasks, err := s.deps.repo.LoadByOwner(owner)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", kind, err)
	}
	matched := NaturalSort{Today: today}.Sort(filter.Apply(tasks))
	for _, t := range matched {
		s.deps.publisher.Publish(t, kind)
	}
	return matched, nil
}

// applyAttrs copies attrs onto task, stamping completions with at. It
// reports whether the status changed.
func applyAttrs(task *models.Task, attrs TaskAttrs, at time.Time) (bool, error) {
	if attrs.Title != nil {
		task.Title = strings.TrimSpace(*attrs.Title)
	}
	if attrs.Description != nil {
		task.Description = strings.TrimSpace(*attrs.Description)
	}
	if attrs.Tags != nil {
		task.SetTags(attrs.Tags...)
	}
	if attrs.DueDate != nil {
		due, err := models.ParseDate(*attrs.DueDate)
		if err != nil {
			return false, err
		}
		task.DueDate = due
	}
	if attrs.Priority != nil {
		p, err := models.ParsePriority(*attrs.Priority)
		if err != nil {
			return false, err
		}
		task.Priority = p
	}
	if attrs.Recurrence != nil {
		if attrs.Recurrence.Frequency == "" {
			task.Recurrence = nil
		} else {
			r := *attrs.Recurrence
			task.Recurrence = &r
		}
	}
	if attrs.ParentTaskID != nil {
		task.ParentTaskID = strings.TrimSpace(*attrs.ParentTaskID)
	}
	if attrs.Status != nil {
		status, err := models.ParseStatus(*attrs.Status)
		if err != nil {
			return false, err
		}
		return task.SetStatus(status, at)
	}
	return false, nil
}
