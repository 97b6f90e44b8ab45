package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// ListQuery is the raw, string-typed form of ListCriteria as it arrives
// from command-line flags, query strings and tool arguments.
type ListQuery struct {
	Tags      []string
	Status    string
	Overdue   bool
	DueBefore string
	DueAfter  string
	DueOn     string
	Sort      string
}

// Criteria parses the query. Unknown sort names are rejected here even
// though SorterByName would fall back to the natural order.
func (q ListQuery) Criteria() (ListCriteria, error) {
	c := ListCriteria{
		Tags:    models.NormalizeTags(q.Tags...),
		Overdue: q.Overdue,
	}
	if strings.TrimSpace(q.Status) != "" {
		status, err := models.ParseStatus(q.Status)
		if err != nil {
			return ListCriteria{}, err
		}
		c.Status = status
	}

	var err error
	if c.DueBefore, err = parseDateField("due_before", q.DueBefore); err != nil {
		return ListCriteria{}, err
	}
	if c.DueAfter, err = parseDateField("due_after", q.DueAfter); err != nil {
		return ListCriteria{}, err
	}
	if c.DueOn, err = parseDateField("due_on", q.DueOn); err != nil {
		return ListCriteria{}, err
	}

	if sortBy := strings.ToLower(strings.TrimSpace(q.Sort)); sortBy != "" {
		if _, ok := sorterFactories[sortBy]; !ok {
			return ListCriteria{}, &models.ValidationError{
				Field:   "sort",
				Message: "unknown sort " + q.Sort + " (use " + strings.Join(SortNames(), ", ") + ")",
			}
		}
		c.SortBy = sortBy
	}
	return c, nil
}

func parseDateField(field, value string) (*time.Time, error) {
	d, err := models.ParseDate(value)
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return nil, &models.ValidationError{Field: field, Message: ve.Message}
	}
	return d, err
}

// IsExpected reports whether err belongs to the typed failure families a
// caller is expected to handle (validation, not found, duplicate, conflict,
// unsupported format or file I/O).
func IsExpected(err error) bool {
	for _, target := range []error{
		models.ErrValidation,
		models.ErrNotFound,
		models.ErrDuplicate,
		models.ErrConflict,
		models.ErrUnsupportedFormat,
		models.ErrFile,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseSince parses a window like "7d" or "24h" into the instant that far
// before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
