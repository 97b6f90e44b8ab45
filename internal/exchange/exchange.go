// Package exchange encodes tasks to and decodes task rows from the export
// formats: CSV, JSON and YAML. Every format carries the same columns.
package exchange

import (
	"io"
	"strings"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Canonical column names, in export order.
const (
	ColID          = "ID"
	ColTitle       = "Title"
	ColDescription = "Description"
	ColStatus      = "Status"
	ColDueDate     = "Due Date"
	ColTags        = "Tags"
	ColPriority    = "Priority"
	ColCreatedAt   = "Created At"
	ColCompletedAt = "Completed At"
)

// Columns lists the canonical columns in export order.
var Columns = []string{
	ColID, ColTitle, ColDescription, ColStatus, ColDueDate,
	ColTags, ColPriority, ColCreatedAt, ColCompletedAt,
}

// Record is one exported task with every value rendered as text. Empty
// optional values are blank strings.
type Record struct {
	ID          string `json:"ID" yaml:"ID"`
	Title       string `json:"Title" yaml:"Title"`
	Description string `json:"Description" yaml:"Description"`
	Status      string `json:"Status" yaml:"Status"`
	DueDate     string `json:"Due Date" yaml:"Due Date"`
	Tags        string `json:"Tags" yaml:"Tags"`
	Priority    string `json:"Priority" yaml:"Priority"`
	CreatedAt   string `json:"Created At" yaml:"Created At"`
	CompletedAt string `json:"Completed At" yaml:"Completed At"`
}

// Row is a decoded record with its 1-based position among the data rows.
// Err is set when the row itself could not be read; Record is then partial.
type Row struct {
	Number int
	Record Record
	Err    error
}

// Codec reads and writes one export format.
type Codec interface {
	Format() string
	Encode(w io.Writer, tasks []*models.Task) error
	Decode(r io.Reader) ([]Row, error)
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"csv", "json", "yaml"}
}

// Lookup returns the codec for format, matched ignoring case. Timestamps are
// written and read in loc. Unknown formats yield *models.UnsupportedFormatError.
func Lookup(format string, loc *time.Location) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return csvCodec{loc: loc}, nil
	case "json":
		return jsonCodec{loc: loc}, nil
	case "yaml", "yml":
		return yamlCodec{loc: loc}, nil
	default:
		return nil, &models.UnsupportedFormatError{Format: format}
	}
}

// FromTask renders a task as a Record.
func FromTask(t *models.Task, loc *time.Location) Record {
	created := t.CreatedAt
	return Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     models.FormatDate(t.DueDate),
		Tags:        models.JoinTags(t.Tags),
		Priority:    string(t.Priority),
		CreatedAt:   models.FormatTimestamp(&created, loc),
		CompletedAt: models.FormatTimestamp(t.CompletedAt, loc),
	}
}

func recordsOf(tasks []*models.Task, loc *time.Location) []Record {
	records := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, FromTask(t, loc))
	}
	return records
}

func rowsOf(records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		rows = append(rows, Row{Number: i + 1, Record: rec})
	}
	return rows
}
