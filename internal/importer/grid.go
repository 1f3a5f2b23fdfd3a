// Package importer turns pasted spreadsheet text into ledger entries.
package importer

import (
	"encoding/csv"
	"strings"
)

// Grid is a parsed paste: the first row holds headers, the rest data.
type Grid [][]string

// ParseDelimitedText splits pasted text into a grid. A tab in the first line
// selects tab-separated parsing; otherwise the text is read as CSV, honouring
// quoted fields and doubled quotes. Cells are trimmed and blank rows dropped.
func ParseDelimitedText(text string) Grid {
	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	if text == "" {
		return Grid{}
	}

	firstLine := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		firstLine = text[:i]
	}
	if strings.Contains(firstLine, "\t") {
		return parseTabbed(text)
	}
	return parseCSV(text)
}

func parseTabbed(text string) Grid {
	grid := Grid{}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if row := cleanRow(strings.Split(line, "\t")); row != nil {
			grid = append(grid, row)
		}
	}
	return grid
}

func parseCSV(text string) Grid {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	grid := Grid{}
	for {
		record, err := r.Read()
		if err != nil {
			// io.EOF, or a malformed tail the lazy reader could not recover.
			break
		}
		if row := cleanRow(record); row != nil {
			grid = append(grid, row)
		}
	}
	return grid
}

// cleanRow trims and unquotes every cell and returns nil for a row with no content.
func cleanRow(cells []string) []string {
	blank := true
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = unquote(strings.TrimSpace(c))
		if out[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil
	}
	return out
}

// unquote drops one leading and one trailing double quote and collapses
// doubled quotes. Tab pastes and lazily quoted CSV cells keep their quotes
// otherwise.
func unquote(cell string) string {
	cell = strings.TrimPrefix(cell, `"`)
	cell = strings.TrimSuffix(cell, `"`)
	return strings.ReplaceAll(cell, `""`, `"`)
}
