package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoSheet     = errors.New("workbook has no sheets")
	ErrBadWorkbook = errors.New("unreadable workbook")
)

// ParseXLSX reads a workbook into a grid. The named sheet is used when it
// exists, otherwise the first one.
func ParseXLSX(r io.Reader, sheet string) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	name := sheets[0]
	if sheet != "" {
		if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
			name = sheet
		}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	grid := Grid{}
	for _, row := range rows {
		if cleaned := cleanRow(row); cleaned != nil {
			grid = append(grid, cleaned)
		}
	}
	return grid, nil
}
