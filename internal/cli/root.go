package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cashledger/internal/config"
	"cashledger/internal/core"
	applog "cashledger/internal/log"
	"cashledger/internal/worker"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "cashledger",
	Short:         "Daily cash and coupon ledger for a shop counter",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		LoadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before reading configuration")
	rootCmd.AddCommand(serveCmd, importCmd, exportCmd, summaryCmd, workerCmd)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// withLedger loads configuration, opens the backend and runs fn until it
// returns or the process is signalled.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, logger *applog.Logger, rt *ledgerRuntime) error) error {
	cfg, logger, err := LoadAndValidateConfig()
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := SignalContext(parent, logger.Logger)
	defer cancel()

	rt, err := openLedger(ctx, cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	}()
	return fn(ctx, cfg, logger, rt)
}

// events returns the change-event source, or nil when messaging is off.
func (r *ledgerRuntime) events() worker.EventSource {
	if r.backend == nil || r.backend.Events == nil {
		return nil
	}
	return r.backend.Events
}

// parseDay accepts YYYY-MM-DD or "today".
func parseDay(s string, now func() time.Time) (core.Date, error) {
	if s == "" || strings.EqualFold(s, "today") {
		return core.DateOf(now()), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("date must be YYYY-MM-DD or today: %w", err)
	}
	return d, nil
}
