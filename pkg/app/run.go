// Package app provides the shared entry point for the tgbot binary.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flemzord/tgbot/internal/config"
	"github.com/flemzord/tgbot/internal/security"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// EnvFile is a dotenv file loaded before the config is expanded.
	// A missing file is ignored.
	EnvFile string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogLevel overrides the configured level when non-nil.
	LogLevel *slog.Level

	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
}

// Run loads configuration, starts all components, and blocks until ctx is
// cancelled, a shutdown signal is received, or update delivery fails.
func Run(ctx context.Context, params RunParams) error {
	cfg, path, err := LoadConfig(params.ConfigPath, params.EnvFile)
	if err != nil {
		return err
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Log.SlogLevel())
	if params.LogLevel != nil {
		level.Set(*params.LogLevel)
	}
	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := NewLogger(out, level, cfg)
	logger.Info("starting tgbot", "version", params.Version, "commit", params.Commit, "mode", cfg.Telegram.Mode)

	rt, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	// A level given on the command line wins over the file.
	if params.LogLevel != nil {
		level = nil
	}
	rt.App.Add("reload", rt.Reloader(path, level, logger))
	return rt.App.Run(ctx)
}

// LoadConfig resolves, loads and validates the configuration. It returns
// the path that was used.
func LoadConfig(path, envFile string) (*config.Config, string, error) {
	if envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, "", err
		}
	}
	if path == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = resolved
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// NewLogger builds the root logger. Every record passes through a
// redactor that knows the bot token format and the configured secrets.
func NewLogger(w io.Writer, level slog.Leveler, cfg *config.Config) *slog.Logger {
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(security.NewRedactingHandler(inner, NewRedactor(cfg)))
}

// NewRedactor returns a redactor loaded with the secrets found in cfg.
func NewRedactor(cfg *config.Config) *security.Redactor {
	redactor := security.NewRedactor()
	if cfg != nil {
		redactor.AddLiteral(cfg.Telegram.Token)
		redactor.AddLiteral(cfg.Telegram.WebhookSecret)
		redactor.AddLiteral(cfg.Gateway.Auth.BearerToken)
		redactor.AddLiteral(cfg.Gateway.Auth.BasicPass)
	}
	return redactor
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/tgbot/tgbot.yaml, ~/.config/tgbot/tgbot.yaml, ./tgbot.yaml
func ResolveConfigPath() (string, error) {
	candidates := ConfigCandidates()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// ConfigCandidates lists the locations ResolveConfigPath checks, in order.
func ConfigCandidates() []string {
	var candidates []string
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "tgbot", "tgbot.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "tgbot", "tgbot.yaml"))
	}
	return append(candidates, "tgbot.yaml")
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/tgbot if set, otherwise ~/.local/share/tgbot (XDG base directory layout).
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "tgbot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "tgbot")
}
