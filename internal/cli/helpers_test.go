package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/storage"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

var testNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

// newTestService returns a YAML-backed service acting for alice, with a
// fixed clock and sequential ids T-001, T-002, ...
func newTestService(t *testing.T) core.TaskService {
	t.Helper()
	dir := t.TempDir()
	return core.NewTaskService(core.TaskServiceConfig{
		Repository:  storage.NewYAMLRepository(filepath.Join(dir, storage.TaskFileName)),
		IDs:         core.NewTaskIDGenerator(dir, "T", 3),
		Now:         func() time.Time { return testNow },
		DueSoonDays: 1,
		Owner:       "alice",
	})
}

func useService(t *testing.T, svc core.TaskService) {
	t.Helper()
	orig := TaskSvc
	TaskSvc = svc
	t.Cleanup(func() { TaskSvc = orig })
}

func seed(t *testing.T, svc core.TaskService, title string, mutate func(*core.TaskAttrs)) *models.Task {
	t.Helper()
	desc := title + " details"
	attrs := core.TaskAttrs{Title: &title, Description: &desc}
	if mutate != nil {
		mutate(&attrs)
	}
	task, err := svc.AddTask(attrs)
	if err != nil {
		t.Fatalf("seeding %q: %v", title, err)
	}
	return task
}

func str(s string) *string { return &s }

// resetFlags restores cmd's flags to their defaults now and after the test,
// since commands and their flag variables are package-level.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	reset := func() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}
	reset()
	t.Cleanup(reset)
}

func setFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	if err := cmd.Flags().Set(name, value); err != nil {
		t.Fatalf("setting --%s: %v", name, err)
	}
}

// captureStdout runs fn and returns everything it wrote to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	return string(out)
}
