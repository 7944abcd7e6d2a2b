package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config.
// All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	errs = append(errs, validateTelegram(&cfg.Telegram)...)
	errs = append(errs, validateGateway(&cfg.Gateway)...)
	errs = append(errs, validateSchedule(cfg.Schedule)...)

	if cfg.Limits.PerChatPerMin < 0 || cfg.Limits.GlobalPerSec < 0 {
		errs = append(errs, errors.New("config: limits must be non-negative"))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}

	return errors.Join(errs...)
}

func validateTelegram(tc *TelegramConfig) []error {
	var errs []error

	if tc.Token == "" {
		errs = append(errs, errors.New("config: telegram.token is required"))
	}

	if tc.APIURL != "" {
		if u, err := url.Parse(tc.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("config: telegram.api_url %q is not an absolute URL", tc.APIURL))
		}
	}

	if tc.PollingTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: telegram.polling_timeout must be non-negative, got %d", tc.PollingTimeout))
	}

	switch tc.Mode {
	case ModePolling, "":
	case ModeWebhook:
		if tc.WebhookURL == "" {
			errs = append(errs, errors.New("config: telegram.webhook_url is required in webhook mode"))
			break
		}
		u, err := url.Parse(tc.WebhookURL)
		if err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("config: telegram.webhook_url %q is not an absolute URL", tc.WebhookURL))
		} else if u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("config: telegram.webhook_url must use https, got %q", u.Scheme))
		}
	default:
		errs = append(errs, fmt.Errorf("config: telegram.mode %q is not one of %q, %q", tc.Mode, ModePolling, ModeWebhook))
	}

	return errs
}

func validateGateway(gc *GatewayConfig) []error {
	var errs []error
	if gc.WebhookPath != "" && !strings.HasPrefix(gc.WebhookPath, "/") {
		errs = append(errs, fmt.Errorf("config: gateway.webhook_path %q must start with /", gc.WebhookPath))
	}
	if gc.ReadTimeout < 0 || gc.WriteTimeout < 0 || gc.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("config: gateway timeouts must be non-negative"))
	}
	if (gc.Auth.BasicUser == "") != (gc.Auth.BasicPass == "") {
		errs = append(errs, errors.New("config: gateway.auth basic_user and basic_pass must be set together"))
	}
	return errs
}

func validateSchedule(entries []ScheduleEntry) []error {
	var errs []error
	seen := make(map[string]bool, len(entries))

	for i, e := range entries {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("config: schedule[%d]: name is required", i))
		} else if seen[e.Name] {
			errs = append(errs, fmt.Errorf("config: schedule[%d]: duplicate name %q", i, e.Name))
		}
		seen[e.Name] = true

		if _, err := cron.ParseStandard(e.Cron); err != nil {
			errs = append(errs, fmt.Errorf("config: schedule[%d]: invalid cron %q: %w", i, e.Cron, err))
		}
		if e.ChatID == 0 {
			errs = append(errs, fmt.Errorf("config: schedule[%d]: chat_id is required", i))
		}
		if e.Text == "" {
			errs = append(errs, fmt.Errorf("config: schedule[%d]: text is required", i))
		}
	}

	return errs
}
