// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for tgbot.
package config

import (
	"log/slog"
	"strings"
	"time"
)

// Delivery modes accepted in telegram.mode.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Telegram TelegramConfig  `yaml:"telegram"`
	Gateway  GatewayConfig   `yaml:"gateway"`
	Store    StoreConfig     `yaml:"store"`
	Schedule []ScheduleEntry `yaml:"schedule,omitempty"`
	Limits   LimitsConfig    `yaml:"limits"`
	Access   *AccessConfig   `yaml:"access,omitempty"`
	Tracing  TracingConfig   `yaml:"tracing"`
	Log      LogConfig       `yaml:"log"`
}

// TelegramConfig holds bot credentials and the delivery mode.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	APIURL string `yaml:"api_url,omitempty"`

	// Mode is "polling" or "webhook". Defaults to polling.
	Mode string `yaml:"mode"`

	// PollingTimeout is the long-poll wait in seconds. Defaults to 30.
	PollingTimeout int `yaml:"polling_timeout"`

	// WebhookURL is the public HTTPS URL registered in webhook mode.
	WebhookURL    string `yaml:"webhook_url,omitempty"`
	WebhookSecret string `yaml:"webhook_secret,omitempty"`
}

// GatewayConfig configures the HTTP server hosting the webhook, health
// and metrics endpoints.
type GatewayConfig struct {
	Bind            string        `yaml:"bind"`
	WebhookPath     string        `yaml:"webhook_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Auth protects /status and /metrics. Unset leaves them open.
	Auth GatewayAuth `yaml:"auth"`
}

// GatewayAuth holds credentials for the operational endpoints.
type GatewayAuth struct {
	BearerToken string `yaml:"bearer_token,omitempty"`
	BasicUser   string `yaml:"basic_user,omitempty"`
	BasicPass   string `yaml:"basic_pass,omitempty"`
}

// AccessConfig restricts who the bot answers. When the section is absent
// everyone is answered; when present, only the listed users and chats.
type AccessConfig struct {
	AllowUsers []int64 `yaml:"allow_users,omitempty"`
	AllowChats []int64 `yaml:"allow_chats,omitempty"`
}

// LimitsConfig caps how often the bot replies. Zero picks the default.
type LimitsConfig struct {
	PerChatPerMin int `yaml:"per_chat_per_min"`
	GlobalPerSec  int `yaml:"global_per_sec"`
}

// StoreConfig locates the offset checkpoint database. An empty path keeps
// the offset in memory only.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ScheduleEntry is a message sent to a chat on a cron schedule.
type ScheduleEntry struct {
	Name   string `yaml:"name"`
	Cron   string `yaml:"cron"`
	ChatID int64  `yaml:"chat_id"`
	Text   string `yaml:"text"`
}

// TracingConfig configures the OTLP trace exporter. Tracing is disabled
// when Endpoint is empty.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
	ServiceName string `yaml:"service_name,omitempty"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel converts Level to a slog.Level. Unknown values map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.Telegram.Mode == "" {
		c.Telegram.Mode = ModePolling
	}
	if c.Telegram.PollingTimeout == 0 {
		c.Telegram.PollingTimeout = 30
	}
	if c.Gateway.Bind == "" {
		c.Gateway.Bind = "127.0.0.1:8080"
	}
	if c.Gateway.WebhookPath == "" {
		c.Gateway.WebhookPath = "/telegram/webhook"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "tgbot"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
