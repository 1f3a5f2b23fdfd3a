// Package ledger turns a set of ledger entries into daily, weekly and monthly
// financial statements. Every function here is pure: no I/O, no clocks, and
// the same input always yields the same output.
package ledger

import (
	"github.com/shopspring/decimal"

	"cashledger/internal/core"
)

// DayAggregate is the financial summary of one day (or, when summed, of a
// period). It is always derived and never persisted.
type DayAggregate struct {
	TotalCouponSales  decimal.Decimal `json:"totalCouponSales"`
	CardCash          decimal.Decimal `json:"cardCash"`
	CardPhonePe       decimal.Decimal `json:"cardPhonePe"`
	TotalCardSales    decimal.Decimal `json:"totalCardSales"`
	CouponPaytm       decimal.Decimal `json:"couponPaytm"`
	Labour            decimal.Decimal `json:"labour"`
	Material          decimal.Decimal `json:"material"`
	CouponCashClosing decimal.Decimal `json:"couponCashClosing"`
	TotalCashDeposit  decimal.Decimal `json:"totalCashDeposit"`
	TotalSales        decimal.Decimal `json:"totalSales"`
}

// Add returns the field-wise sum of two aggregates.
func (a DayAggregate) Add(b DayAggregate) DayAggregate {
	return DayAggregate{
		TotalCouponSales:  a.TotalCouponSales.Add(b.TotalCouponSales),
		CardCash:          a.CardCash.Add(b.CardCash),
		CardPhonePe:       a.CardPhonePe.Add(b.CardPhonePe),
		TotalCardSales:    a.TotalCardSales.Add(b.TotalCardSales),
		CouponPaytm:       a.CouponPaytm.Add(b.CouponPaytm),
		Labour:            a.Labour.Add(b.Labour),
		Material:          a.Material.Add(b.Material),
		CouponCashClosing: a.CouponCashClosing.Add(b.CouponCashClosing),
		TotalCashDeposit:  a.TotalCashDeposit.Add(b.TotalCashDeposit),
		TotalSales:        a.TotalSales.Add(b.TotalSales),
	}
}

// ComputeDayAggregate summarises the active entries dated on day. Entries for
// other days and inactive entries have no effect; an empty input yields zeros.
func ComputeDayAggregate(entries []core.Entry, day core.Date) DayAggregate {
	var (
		opening     = decimal.Zero
		issued      = decimal.Zero
		withdrawn   = decimal.Zero
		cardCash    = decimal.Zero
		cardPhonePe = decimal.Zero
		couponPaytm = decimal.Zero
		labour      = decimal.Zero
		material    = decimal.Zero
	)

	for _, e := range entries {
		if !e.IsActive() || !e.Date.Equal(day) {
			continue
		}
		switch e.Type {
		case core.Opening:
			opening = opening.Add(e.Amount)
		case core.Issue:
			issued = issued.Add(e.Amount)
		case core.Withdraw:
			// Withdrawals reduce coupon sales whatever sign was stored.
			withdrawn = withdrawn.Add(e.Amount.Abs())
		case core.CardCash:
			cardCash = cardCash.Add(e.Amount)
		case core.CardPhonePe:
			cardPhonePe = cardPhonePe.Add(e.Amount)
		case core.CouponPaytm:
			couponPaytm = couponPaytm.Add(e.Amount)
		case core.DailyCost:
			labour = labour.Add(e.LabourCost)
			material = material.Add(e.MaterialCost)
		}
	}

	totalCouponSales := opening.Add(issued).Sub(withdrawn)
	totalCardSales := cardCash.Add(cardPhonePe)
	totalSales := totalCouponSales.Add(totalCardSales)
	couponCashClosing := totalCouponSales.Sub(couponPaytm.Add(labour).Add(material))
	totalCashDeposit := couponCashClosing.Add(cardCash)

	return DayAggregate{
		TotalCouponSales:  totalCouponSales,
		CardCash:          cardCash,
		CardPhonePe:       cardPhonePe,
		TotalCardSales:    totalCardSales,
		CouponPaytm:       couponPaytm,
		Labour:            labour,
		Material:          material,
		CouponCashClosing: couponCashClosing,
		TotalCashDeposit:  totalCashDeposit,
		TotalSales:        totalSales,
	}
}

// ClosingBalance is the coupon cash left on day, used to suggest the next
// day's opening figure.
func ClosingBalance(entries []core.Entry, day core.Date) decimal.Decimal {
	return ComputeDayAggregate(entries, day).CouponCashClosing
}

// WithdrawalTotal sums the stored amounts of the active withdrawals on day.
func WithdrawalTotal(entries []core.Entry, day core.Date) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.IsActive() && e.Type == core.Withdraw && e.Date.Equal(day) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ActiveEntries filters out soft-deleted entries, preserving order.
func ActiveEntries(entries []core.Entry) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}
