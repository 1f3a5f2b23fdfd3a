package google

import (
	"fmt"
	"strings"

	"cashledger/internal/export"
)

// tableValues converts a table into the Sheets API value matrix, header first.
func tableValues(t export.Table) [][]interface{} {
	out := make([][]interface{}, 0, len(t.Rows)+1)
	out = append(out, toInterfaces(t.Headers))
	for _, row := range t.Rows {
		out = append(out, toInterfaces(row))
	}
	return out
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// gridFromValues stringifies a Sheets value matrix and drops blank rows.
func gridFromValues(values [][]interface{}) [][]string {
	grid := make([][]string, 0, len(values))
	for _, row := range values {
		cols := toStrings(row)
		blank := true
		for _, c := range cols {
			if c != "" {
				blank = false
				break
			}
		}
		if !blank {
			grid = append(grid, cols)
		}
	}
	return grid
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// displayName turns a view name such as "monthly" into "Monthly".
func displayName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// quoteSheet quotes a sheet title for use in A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
