package cli

import (
	"time"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/observability"
	"go.uber.org/zap"
)

// Service instances, set during app initialization in app.go.
var (
	TaskSvc     core.TaskService
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
	Logger      *zap.Logger
)

// Settings copied from the global configuration. Location only affects how
// timestamps are rendered.
var (
	DueSoonDays = 1
	ServerAddr  = ":8080"
	Location    = time.UTC
)

func requireService() (core.TaskService, error) {
	if TaskSvc == nil {
		return nil, errNotInitialized
	}
	return TaskSvc, nil
}
