package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// DatabaseFileName is the default name of the SQLite task store.
const DatabaseFileName = "tasks.db"

// taskRow is the relational shape of a task. Tags are stored comma-joined
// and the recurrence is flattened into two columns.
type taskRow struct {
	ID                  string     `gorm:"primarykey;size:64"`
	OwnerID             string     `gorm:"size:128;not null;index"`
	Title               string     `gorm:"not null"`
	Description         string     `gorm:"not null"`
	Status              string     `gorm:"size:16;not null"`
	CompletedAt         *time.Time
	DueDate             *time.Time `gorm:"index"`
	Tags                string
	Priority            string `gorm:"size:16"`
	RecurrenceFrequency string `gorm:"size:16"`
	RecurrenceInterval  int
	ParentTaskID        string    `gorm:"size:64"`
	CreatedAt           time.Time `gorm:"autoCreateTime:false;not null"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime:false;not null"`
	Version             int       `gorm:"not null;default:1"`
}

// TableName returns the table name for taskRow.
func (taskRow) TableName() string {
	return "tasks"
}

func rowFromTask(t *models.Task) taskRow {
	row := taskRow{
		ID:           t.ID,
		OwnerID:      t.OwnerID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		CompletedAt:  t.CompletedAt,
		DueDate:      t.DueDate,
		Tags:         models.JoinTags(t.Tags),
		Priority:     string(t.Priority),
		ParentTaskID: t.ParentTaskID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Version:      t.Version,
	}
	if t.Recurrence != nil {
		row.RecurrenceFrequency = string(t.Recurrence.Frequency)
		row.RecurrenceInterval = t.Recurrence.Interval
	}
	return row
}

func (r taskRow) toTask() *models.Task {
	t := &models.Task{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       models.TaskStatus(r.Status),
		CompletedAt:  utcPtr(r.CompletedAt),
		DueDate:      utcPtr(r.DueDate),
		Tags:         models.NormalizeTags(r.Tags),
		Priority:     models.Priority(r.Priority),
		ParentTaskID: r.ParentTaskID,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		Version:      r.Version,
	}
	if r.RecurrenceFrequency != "" {
		t.Recurrence = &models.Recurrence{
			Frequency: models.Frequency(r.RecurrenceFrequency),
			Interval:  r.RecurrenceInterval,
		}
	}
	return t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// SQLiteRepository stores tasks in a SQLite database through GORM.
type SQLiteRepository struct {
	db *gorm.DB
}

// OpenSQLiteRepository opens (creating when needed) the database at path and
// migrates the tasks table. Use ":memory:" for a private in-memory database.
// verbose enables GORM's SQL logging.
func OpenSQLiteRepository(path string, verbose bool) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	logLevel := logger.Silent
	if verbose {
		logLevel = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if path == ":memory:" {
		// Every pooled connection would get its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("getting database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&taskRow{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database connections.
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LoadByOwner returns the owner's tasks ordered by id.
func (r *SQLiteRepository) LoadByOwner(ownerID string) ([]*models.Task, error) {
	var rows []taskRow
	if err := r.db.Where("owner_id = ?", ownerID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading tasks for %s: %w", ownerID, err)
	}
	tasks := make([]*models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

// Find returns the task, or nil when it does not exist or belongs to
// another owner.
func (r *SQLiteRepository) Find(id, ownerID string) (*models.Task, error) {
	var row taskRow
	err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding task %s: %w", id, err)
	}
	return row.toTask(), nil
}

// Save inserts a task with Version 0 or updates a stored one whose version
// matches, returning the stored copy with its version incremented.
func (r *SQLiteRepository) Save(task *models.Task) (*models.Task, error) {
	if task.ID == "" {
		return nil, &models.ValidationError{Field: "id", Message: "must not be blank"}
	}

	row := rowFromTask(task)
	row.Version = task.Version + 1

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if task.Version == 0 {
			var count int64
			if err := tx.Model(&taskRow{}).Where("id = ?", task.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return &models.DuplicateError{Kind: "task", Key: task.ID}
			}
			return tx.Create(&row).Error
		}

		result := tx.Model(&taskRow{}).
			Where("id = ? AND owner_id = ? AND version = ?", task.ID, task.OwnerID, task.Version).
			Select("*").
			Updates(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var current taskRow
		err := tx.Where("id = ? AND owner_id = ?", task.ID, task.OwnerID).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.NotFoundError{Kind: "task", ID: task.ID}
		}
		if err != nil {
			return err
		}
		return &models.ConflictError{ID: task.ID, Expected: task.Version, Actual: current.Version}
	})
	if err != nil {
		return nil, fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return row.toTask(), nil
}

// Delete removes the owner's task and reports whether it existed.
func (r *SQLiteRepository) Delete(id, ownerID string) (bool, error) {
	result := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&taskRow{})
	if result.Error != nil {
		return false, fmt.Errorf("deleting task %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
