package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quipworks/quip-go/internal/api"
)

// NewClient assembles an API client from configuration: credential store,
// retry policy, authentication method, and any persisted session state.
func NewClient(ctx context.Context, cfg *Config) (*api.Client, error) {
	store, err := cfg.Auth.NewCredentialStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	maxRetries := cfg.Retry.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithMaxRetries(maxRetries),
		api.WithRetryBackoff(cfg.Retry.Backoff),
		api.WithCredentialStore(store),
	}
	if cfg.API.UserAgent != "" {
		opts = append(opts, api.WithUserAgent(cfg.API.UserAgent))
	}
	if cfg.Auth.AutoLogin {
		opts = append(opts, api.WithAutoLogin())
	}

	if cfg.Auth.Method == AuthMethodToken {
		token := cfg.Auth.Token
		if token == "" {
			state, err := api.LoadState(ctx, store)
			if err != nil {
				return nil, fmt.Errorf("failed to read stored credentials: %w", err)
			}
			if state != nil {
				token = state.APIToken
			}
		}
		if token == "" {
			return nil, fmt.Errorf("token authentication configured but no token available")
		}
		opts = append(opts, api.WithAPIToken(token))
	}

	client, err := api.NewClient(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	if cfg.Auth.Method == AuthMethodSession {
		if err := client.LoadSession(ctx); err != nil {
			// A corrupt or unreadable stored session downgrades to a fresh
			// anonymous session rather than blocking the command.
			slog.WarnContext(ctx, "could not restore stored session", "error", err)
		}
	}
	return client, nil
}
