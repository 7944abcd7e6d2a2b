package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/tgbot/internal/config"
)

func TestResolveConfigPath_XDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "tgbot")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfgPath := filepath.Join(cfgDir, "tgbot.yaml")
	if err := os.WriteFile(cfgPath, []byte("version: \"1\""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cfgPath {
		t.Errorf("got %q, want %q", got, cfgPath)
	}
}

func TestResolveConfigPath_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/path")

	// Also ensure there's no tgbot.yaml in the current directory.
	t.Chdir(t.TempDir())

	_, err := ResolveConfigPath()
	if err == nil {
		t.Error("expected error when no config file found")
	}
}

func TestDefaultDataDir_XDGDataHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	got := DefaultDataDir()
	want := "/custom/data/tgbot"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultDataDir_Fallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	_ = os.Unsetenv("XDG_DATA_HOME")

	got := DefaultDataDir()
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".local", "share", "tgbot")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRun_InvalidConfigPath(t *testing.T) {
	err := Run(context.Background(), RunParams{ConfigPath: "/nonexistent/config.yaml"})
	if err == nil {
		t.Error("expected error for invalid config path")
	}
}

func TestRun_InvalidConfigContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("not: valid: yaml: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Run(context.Background(), RunParams{ConfigPath: path}); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestRun_ValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notoken.yaml")
	if err := os.WriteFile(path, []byte("version: \"1\"\ntelegram:\n  mode: polling\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := Run(context.Background(), RunParams{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Errorf("expected token validation error, got %v", err)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("TGBOT_TEST_TOKEN=111:envtoken\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfgPath := filepath.Join(dir, "tgbot.yaml")
	if err := os.WriteFile(cfgPath, []byte("version: \"1\"\ntelegram:\n  token: ${TGBOT_TEST_TOKEN}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("TGBOT_TEST_TOKEN") })

	cfg, used, err := LoadConfig(cfgPath, envPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if used != cfgPath {
		t.Errorf("path = %q, want %q", used, cfgPath)
	}
	if cfg.Telegram.Token != "111:envtoken" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
}

func TestNewLogger_RedactsSecrets(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.Token = "plain-secret-token"
	cfg.Telegram.WebhookSecret = "hook-secret"

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, cfg)
	logger.Info("calling https://api.telegram.org/bot123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw/getMe",
		"token", "plain-secret-token",
		"secret", "hook-secret",
	)

	out := buf.String()
	for _, leak := range []string{"plain-secret-token", "hook-secret", "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw"} {
		if strings.Contains(out, leak) {
			t.Errorf("log output leaks %q: %s", leak, out)
		}
	}
}

func TestBotKey(t *testing.T) {
	tests := map[string]string{
		"123456:ABC": "123456",
		"nocolon":    "",
		":secret":    "",
	}
	for token, want := range tests {
		if got := botKey(token); got != want {
			t.Errorf("botKey(%q) = %q, want %q", token, got, want)
		}
	}
}
