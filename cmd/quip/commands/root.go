package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/quipworks/quip-go/internal/api"
	"github.com/quipworks/quip-go/internal/app"
	"github.com/quipworks/quip-go/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "quip",
		Usage: "Quip content dashboard client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "api--base-url",
				Usage: "backend API base URL",
				Value: app.DefaultConfigAPIBaseURL,
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			chatCommand(),
			quotesCommand(),
			postsCommand(),
			templatesCommand(),
			imagesCommand(),
			usersCommand(),
			stubCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// setup loads configuration and installs the logging stack shared by every
// command action.
func setup(cmd *cli.Command) (*app.Config, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}
	return cfg, nil
}

// clientFromCommand builds the configured API client for a command action.
func clientFromCommand(ctx context.Context, cmd *cli.Command) (*api.Client, error) {
	cfg, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return app.NewClient(ctx, cfg)
}
