package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valter-silva-au/taskflow/internal/exchange"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// ExportTasks writes every task of the current owner, in natural order, to
// path in the given format. It returns the number of tasks written.
func (s *taskService) ExportTasks(format, path string) (int, error) {
	codec, err := exchange.Lookup(format, s.deps.loc)
	if err != nil {
		return 0, err
	}
	tasks, err := s.ListTasks(ListCriteria{})
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, &models.FileError{Op: "create", Path: path, Err: err}
	}
	if err := codec.Encode(f, tasks); err != nil {
		f.Close()
		return 0, &models.FileError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return 0, &models.FileError{Op: "close", Path: path, Err: err}
	}
	return len(tasks), nil
}

// ImportTasks reads rows from path and adds each as a new task of the
// current owner with a fresh id. Rows that fail validation are skipped and
// reported as warnings, unless opts.Strict is set, in which case the first
// bad row aborts the import. Tasks added before an abort stay stored.
func (s *taskService) ImportTasks(format, path string, opts ImportOptions) (*ImportResult, error) {
	codec, err := exchange.Lookup(format, s.deps.loc)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOwner(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &models.FileError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	rows, err := codec.Decode(f)
	if errors.Is(err, models.ErrValidation) {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	if err != nil {
		return nil, &models.FileError{Op: "read", Path: path, Err: err}
	}

	result := &ImportResult{}
	for _, row := range rows {
		task, err := s.importRow(row)
		if err == nil {
			result.Imported = append(result.Imported, task)
			continue
		}
		if !errors.Is(err, models.ErrValidation) {
			return result, fmt.Errorf("importing row %d: %w", row.Number, err)
		}
		if opts.Strict {
			return result, fmt.Errorf("importing row %d: %w", row.Number, err)
		}
		result.Warnings = append(result.Warnings, ImportWarning{Row: row.Number, Err: err})
	}
	return result, nil
}

func (s *taskService) importRow(row exchange.Row) (*models.Task, error) {
	if row.Err != nil {
		return nil, row.Err
	}
	attrs, err := attrsFromRecord(row.Record, s.deps.loc)
	if err != nil {
		return nil, err
	}
	return s.AddTask(attrs)
}

// attrsFromRecord converts an exchange record into AddTask attributes. The
// record's id is dropped so the service assigns a fresh one.
func attrsFromRecord(rec exchange.Record, loc *time.Location) (TaskAttrs, error) {
	attrs := TaskAttrs{
		Title:       &rec.Title,
		Description: &rec.Description,
		DueDate:     &rec.DueDate,
		Priority:    &rec.Priority,
		Tags:        models.NormalizeTags(rec.Tags),
	}
	if strings.TrimSpace(rec.Status) != "" {
		attrs.Status = &rec.Status
	}

	var err error
	if attrs.CreatedAt, err = parseTimestampField("created_at", rec.CreatedAt, loc); err != nil {
		return TaskAttrs{}, err
	}
	if attrs.CompletedAt, err = parseTimestampField("completed_at", rec.CompletedAt, loc); err != nil {
		return TaskAttrs{}, err
	}
	return attrs, nil
}

func parseTimestampField(field, value string, loc *time.Location) (*time.Time, error) {
	t, err := models.ParseTimestamp(value, loc)
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		ve.Field = field
	}
	return t, err
}
