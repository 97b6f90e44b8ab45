package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/taskflow/internal/filelock"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// TaskFileName is the default name of the YAML task store.
const TaskFileName = "tasks.yaml"

const taskFileVersion = "1.0"

// TaskFile represents the top-level structure of tasks.yaml.
type TaskFile struct {
	Version string                  `yaml:"version"`
	Tasks   map[string]*models.Task `yaml:"tasks"`
}

// YAMLRepository stores every owner's tasks in a single YAML file, keyed by
// task id. Each operation loads the file, applies its change and writes it
// back while holding an exclusive lock on a sibling .lock file, so several
// processes can share the store.
type YAMLRepository struct {
	path string
}

// NewYAMLRepository creates a repository backed by path. The file and its
// directory are created on first write.
func NewYAMLRepository(path string) *YAMLRepository {
	return &YAMLRepository{path: path}
}

// Path returns the location of the task file.
func (r *YAMLRepository) Path() string {
	return r.path
}

// LoadByOwner returns the owner's tasks ordered by id.
func (r *YAMLRepository) LoadByOwner(ownerID string) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.withFile(func(f *TaskFile) (bool, error) {
		for _, t := range f.Tasks {
			if t.OwnerID == ownerID {
				tasks = append(tasks, t.Clone())
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading tasks for %s: %w", ownerID, err)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// Find returns the task, or nil when it does not exist or belongs to
// another owner.
func (r *YAMLRepository) Find(id, ownerID string) (*models.Task, error) {
	var found *models.Task
	err := r.withFile(func(f *TaskFile) (bool, error) {
		if t, ok := f.Tasks[id]; ok && t.OwnerID == ownerID {
			found = t.Clone()
		}
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("finding task %s: %w", id, err)
	}
	return found, nil
}

// Save inserts a task with Version 0 or replaces a stored one whose version
// matches, returning the stored copy with its version incremented.
func (r *YAMLRepository) Save(task *models.Task) (*models.Task, error) {
	if task.ID == "" {
		return nil, &models.ValidationError{Field: "id", Message: "must not be blank"}
	}
	var saved *models.Task
	err := r.withFile(func(f *TaskFile) (bool, error) {
		existing, exists := f.Tasks[task.ID]
		if err := checkVersion(task, existing, exists); err != nil {
			return false, err
		}
		saved = task.Clone()
		saved.Version++
		f.Tasks[task.ID] = saved
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return saved.Clone(), nil
}

// Delete removes the owner's task and reports whether it existed.
func (r *YAMLRepository) Delete(id, ownerID string) (bool, error) {
	removed := false
	err := r.withFile(func(f *TaskFile) (bool, error) {
		if t, ok := f.Tasks[id]; ok && t.OwnerID == ownerID {
			delete(f.Tasks, id)
			removed = true
		}
		return removed, nil
	})
	if err != nil {
		return false, fmt.Errorf("deleting task %s: %w", id, err)
	}
	return removed, nil
}

// checkVersion applies the optimistic concurrency rules shared by the
// backends: version 0 inserts, anything else must match the stored version.
func checkVersion(task, existing *models.Task, exists bool) error {
	switch {
	case task.Version == 0 && exists:
		return &models.DuplicateError{Kind: "task", Key: task.ID}
	case task.Version == 0:
		return nil
	case !exists || existing.OwnerID != task.OwnerID:
		return &models.NotFoundError{Kind: "task", ID: task.ID}
	case existing.Version != task.Version:
		return &models.ConflictError{ID: task.ID, Expected: task.Version, Actual: existing.Version}
	}
	return nil
}

// withFile runs fn over the decoded task file under the lock and writes the
// file back when fn reports a change.
func (r *YAMLRepository) withFile(fn func(f *TaskFile) (bool, error)) error {
	unlock, err := filelock.Lock(r.path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()

	f, err := r.load()
	if err != nil {
		return err
	}
	dirty, err := fn(f)
	if err != nil || !dirty {
		return err
	}
	return r.save(f)
}

func (r *YAMLRepository) load() (*TaskFile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &TaskFile{Version: taskFileVersion, Tasks: make(map[string]*models.Task)}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}

	var f TaskFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}
	if f.Tasks == nil {
		f.Tasks = make(map[string]*models.Task)
	}
	return &f, nil
}

func (r *YAMLRepository) save(f *TaskFile) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	// Write to a temp file and rename it into place.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}
	return nil
}
