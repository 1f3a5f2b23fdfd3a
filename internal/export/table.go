// Package export renders ledger views as flat tables and writes them as CSV
// or Excel workbooks.
package export

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"cashledger/internal/core"
	"cashledger/internal/ledger"
)

// Table is one view flattened to strings, ready for a file writer.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

var ErrUnknownView = errors.New("unknown view")

// Build renders the named view over entries.
func Build(view ledger.View, entries []core.Entry) (Table, error) {
	switch view {
	case ledger.ViewEntries:
		return EntriesTable(entries), nil
	case ledger.ViewDaily:
		return DailyTable(entries), nil
	case ledger.ViewWeekly:
		return WeeklyTable(entries), nil
	case ledger.ViewMonthly:
		return MonthlyTable(entries), nil
	case ledger.ViewReport:
		return ReportTable(entries), nil
	default:
		return Table{}, fmt.Errorf("%w %q", ErrUnknownView, view)
	}
}

// All renders every view in display order.
func All(entries []core.Entry) []Table {
	tables := make([]Table, 0, len(ledger.Views()))
	for _, v := range ledger.Views() {
		t, _ := Build(v, entries)
		tables = append(tables, t)
	}
	return tables
}

func EntriesTable(entries []core.Entry) Table {
	t := newTable(ledger.ViewEntries)
	for _, r := range ledger.EntriesView(entries) {
		t.Rows = append(t.Rows, []string{
			r.Month, r.Date.String(), r.Coupons,
			r.IssuedStart, r.IssuedEnd, r.WithheldStart, r.WithheldEnd,
			blankZero(r.IssuedCount), blankZero(r.WithheldCount), blankZero(r.SoldCount),
			blankZero(r.FaceValue), blankZero(r.TotalAmount),
			blankZero(r.LabourCost), blankZero(r.MaterialCost),
			blankZero(r.CardCash), blankZero(r.CardPhonePe), blankZero(r.CouponPaytm), blankZero(r.Opening),
			r.Notes, r.BundleKey, r.Type, r.EntryMode,
		})
	}
	return t
}

func DailyTable(entries []core.Entry) Table {
	t := newTable(ledger.ViewDaily)
	for _, p := range ledger.ComputeDailySeries(entries) {
		t.Rows = append(t.Rows, append([]string{p.Key, p.Start.Month().String()}, totals(p.DayAggregate)...))
	}
	return t
}

func WeeklyTable(entries []core.Entry) Table {
	t := newTable(ledger.ViewWeekly)
	for _, p := range ledger.ComputeWeeklySeries(entries) {
		t.Rows = append(t.Rows, append([]string{p.Start.String(), p.End.String()}, totals(p.DayAggregate)...))
	}
	return t
}

func MonthlyTable(entries []core.Entry) Table {
	t := newTable(ledger.ViewMonthly)
	for _, p := range ledger.ComputeMonthlySeries(entries) {
		t.Rows = append(t.Rows, append([]string{p.Label}, totals(p.DayAggregate)...))
	}
	return t
}

func ReportTable(entries []core.Entry) Table {
	t := newTable(ledger.ViewReport)
	for _, r := range ledger.ReportView(entries) {
		t.Rows = append(t.Rows, []string{
			r.Date.String(),
			r.CouponCashSale.String(), r.CouponPaytm.String(), r.Labour.String(), r.Material.String(),
			r.CardCash.String(), r.CardPhonePe.String(), r.TotalSale.String(), r.BankDeposit.String(),
		})
	}
	return t
}

func newTable(v ledger.View) Table {
	return Table{Name: string(v), Headers: ledger.Headers(v), Rows: [][]string{}}
}

// totals lists the aggregate in period header order.
func totals(a ledger.DayAggregate) []string {
	return []string{
		a.TotalCouponSales.String(), a.TotalCardSales.String(), a.CardCash.String(), a.CardPhonePe.String(),
		a.CouponPaytm.String(), a.Labour.String(), a.Material.String(), a.CouponCashClosing.String(),
		a.TotalCashDeposit.String(), a.TotalSales.String(),
	}
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// Filename returns the download name for a view, e.g. "daily-2025-03-10.csv".
func Filename(name string, day core.Date, ext string) string {
	return name + "-" + day.String() + "." + ext
}
