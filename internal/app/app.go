package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quipworks/quip-go/internal/stub"
)

// App orchestrates the lifecycle of the stub backend and related services.
type App struct {
	cfg  *Config
	stub *stub.Server
}

// New creates a new App instance.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store := stub.NewStore()
	seedStore(cfg.Stub, store)

	return &App{
		cfg:  cfg,
		stub: stub.New(store, slog.Default()),
	}, nil
}

// seedStore registers the seed admin account and sample content so a fresh
// stub has something to serve. A generated password is logged exactly once so
// the operator can log in; configured passwords are never logged.
func seedStore(cfg StubConfig, store *stub.Store) {
	password := cfg.SeedPassword
	if password == "" {
		password = uuid.NewString()
		slog.Info("generated stub seed password",
			"username", cfg.SeedUsername,
			"password", password)
	}
	store.AddUser(cfg.SeedUsername, password, cfg.SeedUsername+"@localhost", "admin")
	store.SeedSampleData()
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Stub.Host + ":" + strconv.FormatUint(uint64(a.cfg.Stub.Port), 10)
	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting stub backend", "address", address)
	stubErrCh, err := a.stub.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("stub startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.stub.Shutdown)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-stubErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "stub runtime error", "error", err)
				return fmt.Errorf("stub: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
