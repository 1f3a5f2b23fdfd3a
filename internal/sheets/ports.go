package sheets

import (
	"context"

	"cashledger/internal/export"
)

// Ports for outbound spreadsheet adapters.
type (
	// ViewPublisher mirrors rendered ledger views into an external spreadsheet.
	ViewPublisher interface {
		PublishTables(ctx context.Context, tables []export.Table) error
	}

	// GridReader reads a sheet back as rows of text cells, header first.
	GridReader interface {
		ReadGrid(ctx context.Context, sheet string) ([][]string, error)
	}
)
