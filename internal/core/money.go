// Package core holds the ledger's data model.
//
// This file contains the amount parsers: a strict one for values typed into
// forms and a permissive one for pasted spreadsheet cells.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered amount such as "1250.50" or "1,250.50".
// Blank and malformed input is rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseLooseAmount keeps only digits, '.' and '-' before parsing, so cells
// like "₹ 1,200" or "1200/-" still read as numbers. Anything unparseable is 0.
//
// Examples:
//
//	ParseLooseAmount("₹1,250.5") -> 1250.5
//	ParseLooseAmount("abc")      -> 0
//	ParseLooseAmount("")         -> 0
func ParseLooseAmount(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(cleaned); err == nil {
		return d
	}
	// Fall back to the longest numeric prefix, e.g. "12.5-" or "1.2.3".
	return decimal.RequireFromString(numericPrefix(cleaned))
}

func numericPrefix(s string) string {
	end := 0
	seenDot := false
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		end = i + 1
	}
	if end == 0 {
		return "0"
	}
	return s[:end]
}
