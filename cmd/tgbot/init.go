package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/flemzord/tgbot/internal/config"
	"github.com/flemzord/tgbot/pkg/app"
	"github.com/spf13/cobra"
)

// initAnswers holds what the init form collects.
type initAnswers struct {
	Token      string
	Mode       string
	WebhookURL string
	Secret     string
	Bind       string
	StorePath  string
}

func initCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = app.ConfigCandidates()[0]
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}

			answers := initAnswers{
				Mode:      config.ModePolling,
				Bind:      "127.0.0.1:8080",
				StorePath: filepath.Join(app.DefaultDataDir(), "offsets.db"),
			}
			if err := initForm(&answers).Run(); err != nil {
				return err
			}

			if err := writeInitConfig(output, answers); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("Wrote"), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the configuration")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bot token").
				Description("From @BotFather. Use ${TELEGRAM_TOKEN} to read it from the environment.").
				EchoMode(huh.EchoModePassword).
				Value(&a.Token).
				Validate(validateToken),
			huh.NewSelect[string]().
				Title("Delivery mode").
				Options(
					huh.NewOption("Long polling", config.ModePolling),
					huh.NewOption("Webhook", config.ModeWebhook),
				).
				Value(&a.Mode),
			huh.NewInput().
				Title("Offset database").
				Description("Leave empty to keep the offset in memory.").
				Value(&a.StorePath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Public webhook URL").
				Placeholder("https://bot.example.com/telegram/webhook").
				Value(&a.WebhookURL).
				Validate(validateWebhookURL),
			huh.NewInput().
				Title("Webhook secret token").
				EchoMode(huh.EchoModePassword).
				Value(&a.Secret),
			huh.NewInput().
				Title("Listen address").
				Value(&a.Bind),
		).WithHideFunc(func() bool { return a.Mode != config.ModeWebhook }),
	)
}

func validateToken(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return errors.New("token is required")
	case strings.HasPrefix(s, "${"):
		return nil
	case !strings.Contains(s, ":"):
		return errors.New("token should look like 123456:ABC...")
	}
	return nil
}

func validateWebhookURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || u.Scheme != "https" {
		return errors.New("webhook URL must be an absolute https URL")
	}
	return nil
}

// buildInitConfig turns form answers into a configuration.
func buildInitConfig(a initAnswers) *config.Config {
	cfg := &config.Config{
		Version: "1",
		Telegram: config.TelegramConfig{
			Token: strings.TrimSpace(a.Token),
			Mode:  a.Mode,
		},
		Store: config.StoreConfig{Path: strings.TrimSpace(a.StorePath)},
	}
	if a.Mode == config.ModeWebhook {
		cfg.Telegram.WebhookURL = strings.TrimSpace(a.WebhookURL)
		cfg.Telegram.WebhookSecret = a.Secret
		cfg.Gateway.Bind = a.Bind
		if u, err := url.Parse(cfg.Telegram.WebhookURL); err == nil && u.Path != "" {
			cfg.Gateway.WebhookPath = u.Path
		}
	}
	cfg.Defaults()
	return cfg
}

// writeInitConfig validates the answers and writes them as YAML, creating
// parent directories as needed.
func writeInitConfig(path string, a initAnswers) error {
	cfg := buildInitConfig(a)
	if !strings.HasPrefix(cfg.Telegram.Token, "${") {
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	raw, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
