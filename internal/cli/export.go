package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cashledger/internal/config"
	"cashledger/internal/core"
	"cashledger/internal/export"
	"cashledger/internal/ledger"
	applog "cashledger/internal/log"
)

// allViews names the workbook holding every view.
const allViews = "ledger"

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <view>",
	Short: "Write a view (entries, daily, weekly, monthly, report, or ledger for all) as CSV or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, cfg *config.Config, logger *applog.Logger, rt *ledgerRuntime) error {
			view := args[0]
			out := exportOut
			if out == "" {
				out = export.Filename(view, core.DateOf(time.Now()), exportFormat)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := runExport(w, rt.svc.Entries(), view, exportFormat); err != nil {
				return err
			}
			if out != "-" {
				logger.Info("Export written", applog.FieldView, view, "path", out)
			}
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", `output file, "-" for stdout (default {view}-{date}.{format})`)
}

func runExport(w io.Writer, entries []core.Entry, view, format string) error {
	var tables []export.Table
	if view == allViews {
		tables = export.All(entries)
	} else {
		t, err := export.Build(ledger.View(view), entries)
		if err != nil {
			return err
		}
		tables = []export.Table{t}
	}

	switch format {
	case "csv":
		if len(tables) != 1 {
			return fmt.Errorf("csv holds one view; use --format xlsx for %q", view)
		}
		return export.WriteCSV(w, tables[0])
	case "xlsx":
		return export.WriteXLSX(w, tables...)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
