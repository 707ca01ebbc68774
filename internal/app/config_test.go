package app

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quipworks/quip-go/internal/credstore"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	// Keep tests away from the real user config directory.
	cfg.Auth.File = filepath.Join(t.TempDir(), "session")
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	if cfg.LogFormat != LogFormatText {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if cfg.API.BaseURL != DefaultConfigAPIBaseURL {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.Retry.MaxRetries != 1 {
		t.Errorf("Retry.MaxRetries = %d, want 1", cfg.Retry.MaxRetries)
	}
	if cfg.Auth.Method != AuthMethodSession {
		t.Errorf("Auth.Method = %q, want session", cfg.Auth.Method)
	}
	if cfg.Auth.Storage != CredentialStorageTypeFile {
		t.Errorf("Auth.Storage = %q, want file", cfg.Auth.Storage)
	}
	if cfg.Auth.File == "" {
		t.Error("Auth.File not auto-detected for file storage")
	}
	if cfg.Stub.Host != "127.0.0.1" || cfg.Stub.Port != 5000 {
		t.Errorf("Stub address = %s:%d", cfg.Stub.Host, cfg.Stub.Port)
	}
	if cfg.Shutdown.Timeout != 5*time.Second {
		t.Errorf("Shutdown.Timeout = %v", cfg.Shutdown.Timeout)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		LogFormat: LogFormatJSON,
		API:       APIConfig{BaseURL: "https://quip.example.com", Timeout: time.Second},
		Retry:     RetryConfig{MaxRetries: -1, Backoff: 50 * time.Millisecond},
		Auth:      AuthConfig{Storage: CredentialStorageTypeEnv, EnvKey: "QUIP_STATE"},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}

	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("LogFormat overridden to %q", cfg.LogFormat)
	}
	if cfg.API.BaseURL != "https://quip.example.com" {
		t.Errorf("BaseURL overridden to %q", cfg.API.BaseURL)
	}
	if cfg.Retry.MaxRetries != -1 {
		t.Errorf("MaxRetries overridden to %d", cfg.Retry.MaxRetries)
	}
	if cfg.Auth.EnvKey != "QUIP_STATE" {
		t.Errorf("EnvKey overridden to %q", cfg.Auth.EnvKey)
	}
	if cfg.Auth.File != "" {
		t.Errorf("File defaulted to %q for env storage", cfg.Auth.File)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default is valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "yaml" },
			wantErr: "LogFormat",
		},
		{
			name:    "bad auth method",
			mutate:  func(c *Config) { c.Auth.Method = "oauth" },
			wantErr: "Method",
		},
		{
			name:    "bad storage",
			mutate:  func(c *Config) { c.Auth.Storage = "redis" },
			wantErr: "Storage",
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.API.BaseURL = "not a url" },
			wantErr: "BaseURL",
		},
		{
			name: "file storage without path",
			mutate: func(c *Config) {
				c.Auth.File = ""
			},
			wantErr: "file path required",
		},
		{
			name: "env storage without key",
			mutate: func(c *Config) {
				c.Auth.Storage = CredentialStorageTypeEnv
				c.Auth.File = ""
			},
			wantErr: "env_key required",
		},
		{
			name: "auto-login with env storage",
			mutate: func(c *Config) {
				c.Auth.Storage = CredentialStorageTypeEnv
				c.Auth.EnvKey = "QUIP_STATE"
				c.Auth.File = ""
				c.Auth.AutoLogin = true
			},
			wantErr: "read-only",
		},
		{
			name: "auto-login with token method",
			mutate: func(c *Config) {
				c.Auth.Method = AuthMethodToken
				c.Auth.Token = "tok"
				c.Auth.AutoLogin = true
			},
			wantErr: "session authentication",
		},
		{
			name:    "retries out of range",
			mutate:  func(c *Config) { c.Retry.MaxRetries = 9 },
			wantErr: "MaxRetries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewCredentialStore(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		cfg := AuthConfig{
			Storage: CredentialStorageTypeFile,
			File:    filepath.Join(t.TempDir(), "session"),
		}
		store, err := cfg.NewCredentialStore()
		if err != nil {
			t.Fatalf("NewCredentialStore: %v", err)
		}
		if _, ok := store.(*credstore.FileStore); !ok {
			t.Errorf("store = %T, want *FileStore", store)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("QUIP_TEST_STATE", "{}")
		cfg := AuthConfig{
			Storage: CredentialStorageTypeEnv,
			EnvKey:  "QUIP_TEST_STATE",
		}
		store, err := cfg.NewCredentialStore()
		if err != nil {
			t.Fatalf("NewCredentialStore: %v", err)
		}
		if _, ok := store.(*credstore.EnvStore); !ok {
			t.Errorf("store = %T, want *EnvStore", store)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		cfg := AuthConfig{Storage: "vault"}
		if _, err := cfg.NewCredentialStore(); err == nil {
			t.Fatal("NewCredentialStore accepted unknown storage")
		}
	})
}
