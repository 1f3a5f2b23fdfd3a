package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cashledger/internal/config"
	"cashledger/internal/importer"
	applog "cashledger/internal/log"
	"cashledger/internal/services"
	"cashledger/internal/sheets"
)

var (
	importMode      string
	importStrict    bool
	importFromSheet string
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a pasted sheet (CSV/TSV text), an .xlsx workbook or a Google sheet",
	Args: func(cmd *cobra.Command, args []string) error {
		if importFromSheet != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, cfg *config.Config, logger *applog.Logger, rt *ledgerRuntime) error {
			strict := cfg.ImportStrict
			if cmd.Flags().Changed("strict") {
				strict = importStrict
			}
			if importFromSheet == "" {
				return runImport(ctx, cmd.OutOrStdout(), rt.svc, args[0], importMode, strict)
			}
			if !cfg.SheetsEnabled() {
				return errSheetsDisabled
			}
			client, err := newSheetsClient(ctx, cfg)
			if err != nil {
				return err
			}
			return runImportSheet(ctx, cmd.OutOrStdout(), rt.svc, client, importFromSheet, importMode, strict)
		})
	},
}

func init() {
	importCmd.Flags().StringVar(&importMode, "mode", string(importer.Append), "APPEND adds to the ledger, REPLACE archives it first")
	importCmd.Flags().BoolVar(&importStrict, "strict", false, "reject rows whose type cannot be inferred instead of importing them as ISSUE")
	importCmd.Flags().StringVar(&importFromSheet, "from-sheet", "", "read rows from this sheet of the configured spreadsheet instead of a file")
}

func runImport(ctx context.Context, w io.Writer, svc *services.LedgerService, path, mode string, strict bool) error {
	m, err := importer.ParseMergeMode(mode)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	var res importer.Result
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		res, err = svc.ImportReader(ctx, m, f, strict)
	} else {
		var data []byte
		if data, err = io.ReadAll(f); err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		res, err = svc.ImportText(ctx, m, string(data), strict)
	}
	return reportImport(w, svc, res, err)
}

// runImportSheet imports the rows of one sheet read through reader.
func runImportSheet(ctx context.Context, w io.Writer, svc *services.LedgerService, reader sheets.GridReader, sheet, mode string, strict bool) error {
	m, err := importer.ParseMergeMode(mode)
	if err != nil {
		return err
	}
	grid, err := reader.ReadGrid(ctx, sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	res, err := svc.ImportGrid(ctx, m, importer.Grid(grid), strict)
	return reportImport(w, svc, res, err)
}

func reportImport(w io.Writer, svc *services.LedgerService, res importer.Result, err error) error {
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, rowErr := range res.Errors {
		fmt.Fprintf(w, "skipped: %s\n", rowErr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, svc.Status())
	return nil
}
