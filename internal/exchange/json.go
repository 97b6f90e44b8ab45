package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

type jsonCodec struct {
	loc *time.Location
}

func (jsonCodec) Format() string { return "json" }

// Encode writes an indented JSON array of records.
func (c jsonCodec) Encode(w io.Writer, tasks []*models.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recordsOf(tasks, c.loc)); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// Decode reads a JSON array of records. Unknown keys are ignored.
func (jsonCodec) Decode(r io.Reader) ([]Row, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return rowsOf(records), nil
}
