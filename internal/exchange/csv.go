package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

type csvCodec struct {
	loc *time.Location
}

func (csvCodec) Format() string { return "csv" }

// Encode writes the header row followed by one row per task.
func (c csvCodec) Encode(w io.Writer, tasks []*models.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range recordsOf(tasks, c.loc) {
		if err := cw.Write(rec.values()); err != nil {
			return fmt.Errorf("writing csv row %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a header row and the data rows below it. Header names must
// match the canonical columns exactly; a Title column is required and any
// missing optional column reads as blank. A data row whose field count does
// not match the header, or that the csv reader cannot parse, is returned
// with Err set.
func (csvCodec) Decode(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &models.ValidationError{Field: "header", Message: "missing header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for _, name := range header {
		if !slices.Contains(Columns, name) {
			return nil, &models.ValidationError{Field: "header", Message: fmt.Sprintf("unknown column %q", name)}
		}
	}
	if !slices.Contains(header, ColTitle) {
		return nil, &models.ValidationError{Field: "header", Message: fmt.Sprintf("missing %q column", ColTitle)}
	}

	var rows []Row
	for n := 1; ; n++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			// The reader resumes on the line after the malformed one.
			rows = append(rows, Row{Number: n, Err: &models.ValidationError{
				Field:   "row",
				Message: fmt.Sprintf("malformed csv on line %d: %v", perr.Line, perr.Err),
			}})
			continue
		}
		if err != nil {
			return rows, fmt.Errorf("reading csv row %d: %w", n, err)
		}
		row := Row{Number: n}
		if len(fields) != len(header) {
			row.Err = &models.ValidationError{
				Field:   "row",
				Message: fmt.Sprintf("expected %d fields, got %d", len(header), len(fields)),
			}
		}
		for i, name := range header {
			if i < len(fields) {
				row.Record.set(name, fields[i])
			}
		}
		rows = append(rows, row)
	}
}

func (r Record) values() []string {
	return []string{
		r.ID, r.Title, r.Description, r.Status, r.DueDate,
		r.Tags, r.Priority, r.CreatedAt, r.CompletedAt,
	}
}

func (r *Record) set(column, value string) {
	switch column {
	case ColID:
		r.ID = value
	case ColTitle:
		r.Title = value
	case ColDescription:
		r.Description = value
	case ColStatus:
		r.Status = value
	case ColDueDate:
		r.DueDate = value
	case ColTags:
		r.Tags = value
	case ColPriority:
		r.Priority = value
	case ColCreatedAt:
		r.CreatedAt = value
	case ColCompletedAt:
		r.CompletedAt = value
	}
}
