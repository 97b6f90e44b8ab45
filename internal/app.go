// Package internal provides the App struct that wires all components of
// taskflow together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/valter-silva-au/taskflow/internal/cli"
	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/observability"
	"github.com/valter-silva-au/taskflow/internal/storage"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// App holds all service dependencies for taskflow.
type App struct {
	BasePath string
	Config   *models.GlobalConfig
	Location *time.Location
	Logger   *zap.Logger

	ConfigMgr  core.ConfigurationManager
	Repository core.Repository
	IDGen      core.TaskIDGenerator
	TaskSvc    core.TaskService

	// Observability
	Bus         *observability.Bus
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier

	closers []func() error
}

// NewApp creates and wires all components. basePath is the directory holding
// .taskconfig and the data files (typically TASKFLOW_HOME or the directory
// tree containing .taskconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Logger, err = NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	app.Location, err = core.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	// --- Storage layer ---
	if err := app.openRepository(); err != nil {
		return nil, err
	}

	// --- Observability ---
	app.Bus = observability.NewBus(app.Logger)
	if cfg.Notifications.Console {
		app.Bus.AddObserver(observability.NewConsoleObserver(os.Stderr))
	}
	if cfg.Notifications.EventLog {
		eventLogPath := filepath.Join(basePath, observability.EventLogFileName)
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: run without the event log and metrics.
			app.Logger.Warn("event log disabled", zap.String("path", eventLogPath), zap.Error(err))
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.closers = append(app.closers, app.EventLog.Close)
		app.Bus.AddObserver(observability.NewEventLogObserver(app.EventLog, time.Now))
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	app.AlertEngine = observability.NewAlertEngine(
		observability.AlertThresholds{MaxPending: cfg.MaxPending},
		time.Now,
	)
	if cfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL, nil)
		app.Bus.AddObserver(observability.NewSlackObserver(app.Notifier, slackKinds(cfg.Notifications.Slack.Events), time.Now))
	}

	// --- Core services ---
	if cfg.TaskIDStrategy == models.IDStrategySequential {
		app.IDGen = core.NewTaskIDGenerator(basePath, cfg.TaskIDPrefix, cfg.TaskIDPadWidth)
	} else {
		app.IDGen = core.NewUUIDGenerator()
	}
	app.TaskSvc = core.NewTaskService(core.TaskServiceConfig{
		Repository:  app.Repository,
		Publisher:   app.Bus,
		IDs:         app.IDGen,
		Location:    app.Location,
		DueSoonDays: cfg.DueSoonDays,
		Owner:       cfg.DefaultOwner,
	})

	// --- Wire CLI package-level variables ---
	cli.TaskSvc = app.TaskSvc
	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier
	cli.Logger = app.Logger
	cli.DueSoonDays = cfg.DueSoonDays
	cli.ServerAddr = cfg.ServerAddr
	cli.Location = app.Location

	return app, nil
}

func (a *App) openRepository() error {
	path := a.Config.Storage.Path
	if a.Config.Storage.Backend == models.BackendSQLite {
		if path == "" {
			path = storage.DatabaseFileName
		}
		if path != ":memory:" && !filepath.IsAbs(path) {
			path = filepath.Join(a.BasePath, path)
		}
		repo, err := storage.OpenSQLiteRepository(path, a.Config.LogLevel == "debug")
		if err != nil {
			return err
		}
		a.Repository = repo
		a.closers = append(a.closers, repo.Close)
		return nil
	}

	if path == "" {
		path = storage.TaskFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.BasePath, path)
	}
	a.Repository = storage.NewYAMLRepository(path)
	return nil
}

// slackKinds converts the configured event names, which ValidateConfig has
// already checked, falling back to the defaults when none are listed.
func slackKinds(names []string) []models.EventKind {
	if len(names) == 0 {
		names = core.DefaultSlackEvents
	}
	kinds := make([]models.EventKind, 0, len(names))
	for _, name := range names {
		if kind, ok := models.ParseEventKind(name); ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// NewLogger builds the zap logger for the given level. Debug selects the
// human-readable development encoder; other levels log JSON to stderr.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Close releases resources held by the App, such as the event log file
// handle and database connections.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// ResolveBasePath determines the taskflow data directory. It checks the
// TASKFLOW_HOME env var, then walks up from the current directory looking
// for .taskconfig, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TASKFLOW_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".taskconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}
