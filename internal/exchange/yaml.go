package exchange

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

type yamlCodec struct {
	loc *time.Location
}

func (yamlCodec) Format() string { return "yaml" }

// Encode writes a YAML sequence of records.
func (c yamlCodec) Encode(w io.Writer, tasks []*models.Task) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recordsOf(tasks, c.loc)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML sequence of records.
func (yamlCodec) Decode(r io.Reader) ([]Row, error) {
	var records []Record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return rowsOf(records), nil
}
