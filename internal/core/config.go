// Package core contains the business logic of taskflow: the task ordering
// and filtering strategies, the task service that orchestrates them over a
// repository, task ID generation and configuration loading.
package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without a zoneinfo database

	"github.com/spf13/viper"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// validPrefixPattern matches uppercase alphanumeric prefixes between 1 and 10 characters.
var validPrefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// ConfigurationManager loads and validates the global .taskconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files and TASKFLOW_* environment overrides.
type viperConfigManager struct {
	// basePath is the root directory where .taskconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultSlackEvents are the event kinds forwarded to Slack when the config
// does not list any.
var DefaultSlackEvents = []string{
	string(models.EventCompleted),
	string(models.EventOverdueCheck),
	string(models.EventDueSoon),
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DefaultOwner:   "",
		Timezone:       "",
		DueSoonDays:    1,
		TaskIDStrategy: models.IDStrategyUUID,
		TaskIDPrefix:   "TASK",
		TaskIDPadWidth: 5,
		Storage: models.StorageConfig{
			Backend: models.BackendYAML,
		},
		Notifications: models.NotificationConfig{
			Console:  true,
			EventLog: true,
			Slack: models.SlackConfig{
				Events: append([]string(nil), DefaultSlackEvents...),
			},
		},
		MaxPending: 25,
		LogLevel:   "info",
		ServerAddr: ":8080",
	}
}

// LoadGlobalConfig reads the .taskconfig file from the base path using Viper.
// Missing files and keys fall back to the defaults. Every key can be
// overridden from the environment, e.g. TASKFLOW_STORAGE_BACKEND=sqlite.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".taskconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("defaults.owner", cfg.DefaultOwner)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("due_soon_days", cfg.DueSoonDays)
	v.SetDefault("task_id.strategy", cfg.TaskIDStrategy)
	v.SetDefault("task_id.prefix", cfg.TaskIDPrefix)
	v.SetDefault("task_id.pad_width", cfg.TaskIDPadWidth)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("notifications.console", cfg.Notifications.Console)
	v.SetDefault("notifications.event_log", cfg.Notifications.EventLog)
	v.SetDefault("notifications.slack.webhook_url", cfg.Notifications.Slack.WebhookURL)
	v.SetDefault("notifications.slack.events", cfg.Notifications.Slack.Events)
	v.SetDefault("alerts.max_pending", cfg.MaxPending)
	v.SetDefault("log.level", cfg.LogLevel)
	v.SetDefault("server.addr", cfg.ServerAddr)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .taskconfig: %w", err)
		}
	}

	// Map nested YAML keys to flat GlobalConfig fields.
	cfg.DefaultOwner = v.GetString("defaults.owner")
	cfg.Timezone = v.GetString("timezone")
	cfg.DueSoonDays = v.GetInt("due_soon_days")
	cfg.TaskIDStrategy = strings.ToLower(v.GetString("task_id.strategy"))
	cfg.TaskIDPrefix = v.GetString("task_id.prefix")
	cfg.TaskIDPadWidth = v.GetInt("task_id.pad_width")
	cfg.Storage.Backend = strings.ToLower(v.GetString("storage.backend"))
	cfg.Storage.Path = v.GetString("storage.path")
	cfg.Notifications.Console = v.GetBool("notifications.console")
	cfg.Notifications.EventLog = v.GetBool("notifications.event_log")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")
	cfg.Notifications.Slack.Events = v.GetStringSlice("notifications.slack.events")
	cfg.MaxPending = v.GetInt("alerts.max_pending")
	cfg.LogLevel = strings.ToLower(v.GetString("log.level"))
	cfg.ServerAddr = v.GetString("server.addr")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns an
// error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if _, err := LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, err.Error())
	}

	if cfg.DueSoonDays < 0 {
		errs = append(errs, fmt.Sprintf("due_soon_days must be non-negative, got %d", cfg.DueSoonDays))
	}

	switch cfg.TaskIDStrategy {
	case models.IDStrategyUUID:
	case models.IDStrategySequential:
		if !validPrefixPattern.MatchString(cfg.TaskIDPrefix) {
			errs = append(errs, fmt.Sprintf(
				"task_id.prefix %q is invalid, must match [A-Z0-9]{1,10}",
				cfg.TaskIDPrefix,
			))
		}
		if cfg.TaskIDPadWidth < 0 || cfg.TaskIDPadWidth > 10 {
			errs = append(errs, fmt.Sprintf(
				"task_id.pad_width %d is invalid, must be between 0 and 10",
				cfg.TaskIDPadWidth,
			))
		}
	default:
		errs = append(errs, fmt.Sprintf(
			"task_id.strategy %q is invalid, must be one of: uuid, sequential",
			cfg.TaskIDStrategy,
		))
	}

	switch cfg.Storage.Backend {
	case models.BackendYAML, models.BackendSQLite:
	default:
		errs = append(errs, fmt.Sprintf(
			"storage.backend %q is invalid, must be one of: yaml, sqlite",
			cfg.Storage.Backend,
		))
	}

	for _, kind := range cfg.Notifications.Slack.Events {
		if _, ok := models.ParseEventKind(kind); !ok {
			errs = append(errs, fmt.Sprintf("notifications.slack.events: unknown event kind %q", kind))
		}
	}

	if cfg.MaxPending < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_pending must be non-negative, got %d", cfg.MaxPending))
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf(
			"log.level %q is invalid, must be one of: debug, info, warn, error",
			cfg.LogLevel,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// LoadLocation resolves the configured time zone. Blank or "Local" selects
// the system zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q is invalid: %w", name, err)
	}
	return loc, nil
}
