// Package cli wires configuration, storage and services into the cashledger
// commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cashledger/internal/backend"
	"cashledger/internal/config"
	applog "cashledger/internal/log"
	"cashledger/internal/services"
)

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig reads the environment and installs the process logger
// at the configured level.
func LoadAndValidateConfig() (*config.Config, *applog.Logger, error) {
	cfg := config.Load()
	logger := applog.Setup(cfg.SlogLevel())
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger, nil
}

// ledgerRuntime is an opened backend plus the service loaded from it.
type ledgerRuntime struct {
	svc     *services.LedgerService
	backend *backend.BackendResult
}

func (r *ledgerRuntime) Close() error {
	if r.backend == nil || r.backend.Cleanup == nil {
		return nil
	}
	return r.backend.Cleanup()
}

// openLedger builds the configured backend and loads the ledger snapshot.
func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ledgerRuntime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	rt := &ledgerRuntime{
		svc:     services.NewLedgerService(res.Store, res.Publisher()),
		backend: res,
	}
	if err := rt.svc.Load(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
