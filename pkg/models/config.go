package models

// Storage backends.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Task ID strategies.
const (
	IDStrategyUUID       = "uuid"
	IDStrategySequential = "sequential"
)

// SlackConfig holds the Slack webhook observer settings.
type SlackConfig struct {
	WebhookURL string   `yaml:"webhook_url" mapstructure:"webhook_url"`
	Events     []string `yaml:"events,omitempty" mapstructure:"events"`
}

// NotificationConfig selects which observers are registered on the bus.
type NotificationConfig struct {
	Console  bool        `yaml:"console" mapstructure:"console"`
	EventLog bool        `yaml:"event_log" mapstructure:"event_log"`
	Slack    SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Path is relative to the base path unless absolute. Empty means the
	// backend default (tasks.yaml or tasks.db).
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// GlobalConfig holds system-wide settings read from .taskconfig via Viper.
type GlobalConfig struct {
	DefaultOwner   string             `yaml:"default_owner" mapstructure:"default_owner"`
	Timezone       string             `yaml:"timezone" mapstructure:"timezone"`
	DueSoonDays    int                `yaml:"due_soon_days" mapstructure:"due_soon_days"`
	TaskIDStrategy string             `yaml:"task_id_strategy" mapstructure:"task_id_strategy"`
	TaskIDPrefix   string             `yaml:"task_id_prefix" mapstructure:"task_id_prefix"`
	TaskIDPadWidth int                `yaml:"task_id_pad_width" mapstructure:"task_id_pad_width"`
	Storage        StorageConfig      `yaml:"storage" mapstructure:"storage"`
	Notifications  NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
	MaxPending     int                `yaml:"max_pending" mapstructure:"max_pending"`
	LogLevel       string             `yaml:"log_level" mapstructure:"log_level"`
	ServerAddr     string             `yaml:"server_addr" mapstructure:"server_addr"`
}
