package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quipworks/quip-go/internal/api"
	"github.com/quipworks/quip-go/internal/credstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// CredentialStorageType represents the different storage types supported for
// persisted session state.
type CredentialStorageType string

const (
	CredentialStorageTypeFile    CredentialStorageType = "file"
	CredentialStorageTypeEnv     CredentialStorageType = "env"
	CredentialStorageTypeKeyring CredentialStorageType = "keyring"
)

// AuthMethod represents the different authentication methods supported.
type AuthMethod string

const (
	// AuthMethodSession authenticates with the cookie session plus
	// anti-forgery token flow.
	AuthMethodSession AuthMethod = "session"

	// AuthMethodToken sends a static bearer token and skips the cookie flow.
	AuthMethodToken AuthMethod = "token"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigAPIBaseURL      = "http://127.0.0.1:5000"
	DefaultConfigAuthStorage     = CredentialStorageTypeFile
	DefaultConfigAuthMethod      = AuthMethodSession
	DefaultConfigStubHost        = "127.0.0.1"
	DefaultConfigStubPort        = 5000
	DefaultConfigStubUsername    = "admin"
	DefaultConfigShutdownTimeout = 5 * time.Second
)

// APIConfig holds backend endpoint configuration.
type APIConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`

	// Timeout bounds each request including the token fetch.
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent,omitempty"`
}

// RetryConfig controls the automatic retry after authentication failures.
type RetryConfig struct {
	// MaxRetries is the retry count after an authentication failure.
	// Zero means the default; -1 disables retries entirely.
	MaxRetries int `json:"max_retries" validate:"min=-1,max=5"`

	// Backoff is the fixed wait before each retry.
	Backoff time.Duration `json:"backoff"`
}

// AuthConfig represents the configuration for backend authentication.
// Describes how to construct the credential store and which authentication
// flow the client runs.
type AuthConfig struct {
	// Method - how requests are authenticated
	Method AuthMethod `json:"method" validate:"required,oneof=session token"`

	// Storage configuration - where persisted session state lives
	Storage CredentialStorageType `json:"storage" validate:"required,oneof=file env keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	File        string `json:"file,omitempty"`         // For file storage: path to session state file
	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable name
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier

	// Token is the static bearer token for the token method. Falls back to
	// the token kept in the credential store when empty.
	Token string `json:"token,omitempty"`

	// AutoLogin lets the background re-auth probe replay the saved login
	// after a backend restart. Off by default; enabling it persists the
	// login credentials in the credential store.
	AutoLogin bool `json:"auto_login"`
}

// NewCredentialStore creates a credential store from the authentication
// configuration.
func (a *AuthConfig) NewCredentialStore() (credstore.Store, error) {
	switch a.Storage {
	case CredentialStorageTypeFile:
		return credstore.NewFileStore(a.File)
	case CredentialStorageTypeEnv:
		return credstore.NewEnvStore(a.EnvKey)
	case CredentialStorageTypeKeyring:
		return credstore.NewKeyringStore("quip-session", a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// StubConfig holds the local stub backend's listen address and seed account.
type StubConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"` // Port range 0-65535 handled by uint16 type

	// Seed account registered at startup. When SeedPassword is empty a random
	// one is generated and logged once.
	SeedUsername string `json:"seed_username"`
	SeedPassword string `json:"seed_password,omitempty"`
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	API       APIConfig      `json:"api"`
	Retry     RetryConfig    `json:"retry"`
	Auth      AuthConfig     `json:"auth"`
	Stub      StubConfig     `json:"stub"`
	Shutdown  ShutdownConfig `json:"shutdown"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultConfigAPIBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = api.DefaultTimeout
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = api.DefaultMaxRetries
	}
	if c.Retry.Backoff == 0 {
		c.Retry.Backoff = api.DefaultRetryBackoff
	}
	if c.Auth.Method == "" {
		c.Auth.Method = DefaultConfigAuthMethod
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}
	if c.Stub.Host == "" {
		c.Stub.Host = DefaultConfigStubHost
	}
	if c.Stub.Port == 0 {
		c.Stub.Port = DefaultConfigStubPort
	}
	if c.Stub.SeedUsername == "" {
		c.Stub.SeedUsername = DefaultConfigStubUsername
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Storage {
	case CredentialStorageTypeFile:
		if c.Auth.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.file required (auto-detect failed: %w)", err)
			}
			c.Auth.File = filepath.Join(configDir, "quip", "session")
		}
	case CredentialStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	case CredentialStorageTypeEnv:
		// env_key must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// Auto-login replays a saved login, which only exists in the session flow
	// and must be persistable (env is read-only).
	if c.Auth.AutoLogin {
		if c.Auth.Method != AuthMethodSession {
			return errors.New("auto-login only applies to session authentication")
		}
		if c.Auth.Storage == CredentialStorageTypeEnv {
			return errors.New("auto-login requires writable storage, env is read-only")
		}
	}

	switch c.Auth.Storage {
	case CredentialStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("file path required for file storage")
		}
	case CredentialStorageTypeEnv:
		if c.Auth.EnvKey == "" {
			return errors.New("env_key required for env storage")
		}
	case CredentialStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	return nil
}
