package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/quipworks/quip-go/internal/app"
)

func stubCommand() *cli.Command {
	return &cli.Command{
		Name:  "stub",
		Usage: "run the local stub backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "stub--host",
				Usage: "stub listen host",
				Value: app.DefaultConfigStubHost,
			},
			&cli.IntFlag{
				Name:  "stub--port",
				Usage: "stub listen port",
				Value: int(app.DefaultConfigStubPort),
			},
			&cli.StringFlag{
				Name:  "stub--seed-username",
				Usage: "seed admin account username",
				Value: app.DefaultConfigStubUsername,
			},
		},
		Action: stubAction,
	}
}

func stubAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}
