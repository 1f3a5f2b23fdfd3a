package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"cashledger/internal/config"
	applog "cashledger/internal/log"
)

var errSheetsDisabled = errors.New("sheets mirror needs GOOGLE_SPREADSHEET_ID and service account credentials")

var workerOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Mirror the ledger views into Google Sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, cfg *config.Config, logger *applog.Logger, rt *ledgerRuntime) error {
			if !cfg.SheetsEnabled() {
				return errSheetsDisabled
			}
			sync, err := newSheetsSync(ctx, cfg, rt)
			if err != nil {
				return err
			}
			if workerOnce {
				return sync.SyncNow(ctx)
			}
			logger.Info("Starting sheets worker",
				"interval", cfg.SheetsSyncInterval,
				"events", rt.events() != nil)
			return sync.Run(ctx, rt.events())
		})
	},
}

func init() {
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "publish once and exit")
}
