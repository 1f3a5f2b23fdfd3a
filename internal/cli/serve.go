package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cashledger/internal/config"
	apphttp "cashledger/internal/http"
	applog "cashledger/internal/log"
	gsheet "cashledger/internal/sheets/google"
	"cashledger/internal/worker"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API, plus the sheets mirror when configured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, cfg *config.Config, logger *applog.Logger, rt *ledgerRuntime) error {
			var sync *worker.SheetsSync
			if cfg.SheetsEnabled() {
				var err error
				if sync, err = newSheetsSync(ctx, cfg, rt); err != nil {
					return err
				}
			} else {
				logger.Info("Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
			}

			srv := apphttp.NewServer(":"+cfg.Port, rt.svc,
				apphttp.WithImportStrict(cfg.ImportStrict),
				apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP)))
			srv.ReadTimeout = 10 * time.Second
			srv.WriteTimeout = 30 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			logger.Info("Starting cashledger server",
				"port", cfg.Port,
				"backend", cfg.DataBackend,
				"events", rt.events() != nil)
			return runServe(ctx, srv, sync, rt.events(), logger)
		})
	},
}

// runServe serves HTTP and runs the optional sheets mirror until ctx is
// cancelled or either of them fails.
func runServe(ctx context.Context, srv *apphttp.Server, sync *worker.SheetsSync, events worker.EventSource, logger *applog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
			return err
		}
		logger.Info("Server stopped gracefully")
		return nil
	})
	if sync != nil {
		g.Go(func() error {
			return sync.Run(gctx, events)
		})
	}
	return g.Wait()
}

func newSheetsClient(ctx context.Context, cfg *config.Config) (*gsheet.Client, error) {
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		SheetPrefix:     cfg.GoogleSheetPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("google sheets client: %w", err)
	}
	return client, nil
}

func newSheetsSync(ctx context.Context, cfg *config.Config, rt *ledgerRuntime) (*worker.SheetsSync, error) {
	client, err := newSheetsClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return worker.NewSheetsSync(rt.backend.Store, client, cfg.SheetsSyncInterval), nil
}
