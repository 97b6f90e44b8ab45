package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/valter-silva-au/taskflow/internal/filelock"
)

// TaskIDGenerator produces identifiers for new tasks.
type TaskIDGenerator interface {
	GenerateTaskID() (string, error)
}

type uuidGenerator struct{}

// NewUUIDGenerator returns a TaskIDGenerator issuing random UUIDs.
func NewUUIDGenerator() TaskIDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) GenerateTaskID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating task id: %w", err)
	}
	return id.String(), nil
}

// fileTaskIDGenerator persists a counter in a .task_counter file on disk.
type fileTaskIDGenerator struct {
	basePath string
	prefix   string
	padWidth int
}

// NewTaskIDGenerator returns a TaskIDGenerator issuing sequential ids such as
// TASK-00001. The counter lives in basePath/.task_counter and is guarded by
// an exclusive file lock, so several processes can share it. padWidth 0
// disables zero padding (TASK-1).
func NewTaskIDGenerator(basePath string, prefix string, padWidth int) TaskIDGenerator {
	return &fileTaskIDGenerator{
		basePath: basePath,
		prefix:   prefix,
		padWidth: padWidth,
	}
}

// GenerateTaskID increments the counter and formats the new value. A missing
// counter file starts the sequence at 1.
func (g *fileTaskIDGenerator) GenerateTaskID() (string, error) {
	counterPath := filepath.Join(g.basePath, ".task_counter")

	unlock, err := filelock.Lock(counterPath + ".lock")
	if err != nil {
		return "", fmt.Errorf("locking task counter: %w", err)
	}
	defer unlock()

	counter := 0
	data, err := os.ReadFile(counterPath)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading task counter file: %w", err)
	}
	if err == nil {
		trimmed := strings.TrimSpace(string(data))
		counter, err = strconv.Atoi(trimmed)
		if err != nil {
			return "", fmt.Errorf("parsing task counter %q: %w", trimmed, err)
		}
	}

	counter++

	if err := os.WriteFile(counterPath, []byte(strconv.Itoa(counter)), 0o600); err != nil {
		return "", fmt.Errorf("writing task counter file: %w", err)
	}

	if g.padWidth > 0 {
		return fmt.Sprintf("%s-%0*d", g.prefix, g.padWidth, counter), nil
	}
	return fmt.Sprintf("%s-%d", g.prefix, counter), nil
}
