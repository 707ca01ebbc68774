package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/quipworks/quip-go/internal/app"
)

func noEnviron() []string { return nil }

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", nil, noEnviron)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.API.BaseURL != app.DefaultConfigAPIBaseURL {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.LogFormat != app.LogFormatText {
		t.Errorf("LogFormat = %q", cfg.LogFormat)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quip.toml")
	content := `
log_format = "json"
log_level = "warn"

[api]
base_url = "https://quip.example.com"
timeout = "10s"

[auth]
storage = "env"
env_key = "QUIP_STATE"

[retry]
max_retries = 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadConfig(path, nil, noEnviron)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.LogFormat != app.LogFormatJSON {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.API.BaseURL != "https://quip.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Auth.Storage != app.CredentialStorageTypeEnv || cfg.Auth.EnvKey != "QUIP_STATE" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("Retry.MaxRetries = %d, want 3", cfg.Retry.MaxRetries)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quip.toml")
	content := `
[api]
base_url = "https://file.example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	environ := func() []string {
		return []string{
			"QUIP_API__BASE_URL=https://env.example.com",
			"QUIP_LOG_LEVEL=debug",
			"UNRELATED=ignored",
		}
	}

	cfg, err := loadConfig(path, nil, environ)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("API.BaseURL = %q, want the env value", cfg.API.BaseURL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	environ := func() []string {
		return []string{"QUIP_API__BASE_URL=https://env.example.com"}
	}

	var cfg *app.Config
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api--base-url"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var err error
			cfg, err = loadConfig("", cmd, environ)
			return err
		},
	}

	args := []string{"test", "--api--base-url", "https://flag.example.com"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cfg.API.BaseURL != "https://flag.example.com" {
		t.Errorf("API.BaseURL = %q, want the flag value", cfg.API.BaseURL)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	environ := func() []string {
		return []string{"QUIP_LOG_FORMAT=yaml"}
	}
	if _, err := loadConfig("", nil, environ); err == nil {
		t.Fatal("loadConfig accepted an invalid log format")
	}
}

func TestExtractAndTransformFlags(t *testing.T) {
	var got map[string]any
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level"},
			&cli.StringFlag{Name: "api--base-url"},
			&cli.StringFlag{Name: "untouched"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got = extractAndTransformFlags(cmd)
			return nil
		},
	}

	args := []string{"test", "--log-level", "debug", "--api--base-url", "https://flag.example.com"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got["log_level"] != "debug" {
		t.Errorf("log_level = %v", got["log_level"])
	}
	if got["api.base_url"] != "https://flag.example.com" {
		t.Errorf("api.base_url = %v", got["api.base_url"])
	}
	if _, ok := got["untouched"]; ok {
		t.Error("unset flag leaked into config values")
	}
}
