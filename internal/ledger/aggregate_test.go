package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/core"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertDec(t *testing.T, want int64, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %d, got %s", field, want, got)
}

func entry(id string, day core.Date, typ core.EntryType, amount int64) core.Entry {
	return core.Entry{
		ID:        id,
		Date:      day,
		Type:      typ,
		Amount:    dec(amount),
		Status:    core.StatusActive,
		Timestamp: day.Add(time.Hour),
	}
}

func cost(id string, day core.Date, labour, material int64) core.Entry {
	e := entry(id, day, core.DailyCost, 0)
	e.LabourCost = dec(labour)
	e.MaterialCost = dec(material)
	return e
}

func TestComputeDayAggregate_Scenario(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	entries := []core.Entry{
		entry("1", day, core.Opening, 1000),
		entry("2", day, core.Issue, 500),
		entry("3", day, core.Withdraw, 200),
		entry("4", day, core.CardCash, 300),
		cost("5", day, 50, 30),
	}

	agg := ComputeDayAggregate(entries, day)

	assertDec(t, 1300, agg.TotalCouponSales, "totalCouponSales")
	assertDec(t, 300, agg.TotalCardSales, "totalCardSales")
	assertDec(t, 1600, agg.TotalSales, "totalSales")
	assertDec(t, 1220, agg.CouponCashClosing, "couponCashClosing")
	assertDec(t, 1520, agg.TotalCashDeposit, "totalCashDeposit")
	assertDec(t, 50, agg.Labour, "labour")
	assertDec(t, 30, agg.Material, "material")
	assertDec(t, 0, agg.CardPhonePe, "cardPhonePe")
}

func TestComputeDayAggregate_EmptyInput(t *testing.T) {
	agg := ComputeDayAggregate(nil, core.NewDate(2025, 1, 1))
	assertDec(t, 0, agg.TotalSales, "totalSales")
	assertDec(t, 0, agg.CouponCashClosing, "couponCashClosing")
	assertDec(t, 0, agg.TotalCashDeposit, "totalCashDeposit")
}

func TestComputeDayAggregate_WithdrawSignIgnored(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	positive := []core.Entry{entry("1", day, core.Issue, 500), entry("2", day, core.Withdraw, 200)}
	negative := []core.Entry{entry("1", day, core.Issue, 500), entry("2", day, core.Withdraw, -200)}

	assertDec(t, 300, ComputeDayAggregate(positive, day).TotalCouponSales, "positive withdraw")
	assertDec(t, 300, ComputeDayAggregate(negative, day).TotalCouponSales, "negative withdraw")
}

func TestComputeDayAggregate_InactiveAndOtherDaysExcluded(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	base := []core.Entry{
		entry("1", day, core.Issue, 500),
		entry("2", day, core.CouponPaytm, 40),
		entry("3", day, core.CardPhonePe, 70),
	}
	want := ComputeDayAggregate(base, day)

	inactive := entry("x", day, core.CardCash, 9999)
	inactive.Status = core.StatusInactive
	otherDay := entry("y", day.AddDays(1), core.Issue, 12345)

	got := ComputeDayAggregate(append(append([]core.Entry{}, base...), inactive, otherDay), day)
	assert.Equal(t, want, got)

	// Mutating the inactive entry changes nothing either.
	inactive.Type = core.Opening
	inactive.Amount = dec(-5)
	got = ComputeDayAggregate(append(append([]core.Entry{}, base...), inactive), day)
	assert.Equal(t, want, got)
}

func TestComputeDayAggregate_Formulas(t *testing.T) {
	day := core.NewDate(2025, 6, 2)
	entries := []core.Entry{
		entry("1", day, core.Opening, 250),
		entry("2", day, core.Issue, 4000),
		entry("3", day, core.Issue, 1000),
		entry("4", day, core.Withdraw, 600),
		entry("5", day, core.CardCash, 900),
		entry("6", day, core.CardPhonePe, 1100),
		entry("7", day, core.CouponPaytm, 300),
		cost("8", day, 120, 80),
		cost("9", day, 30, 0),
	}
	agg := ComputeDayAggregate(entries, day)

	closing := agg.TotalCouponSales.Sub(agg.CouponPaytm.Add(agg.Labour).Add(agg.Material))
	assert.True(t, closing.Equal(agg.CouponCashClosing))
	assert.True(t, agg.CouponCashClosing.Add(agg.CardCash).Equal(agg.TotalCashDeposit))
	assert.True(t, agg.CardCash.Add(agg.CardPhonePe).Equal(agg.TotalCardSales))
	assert.True(t, agg.TotalCouponSales.Add(agg.TotalCardSales).Equal(agg.TotalSales))

	assertDec(t, 4650, agg.TotalCouponSales, "totalCouponSales")
	assertDec(t, 4120, agg.CouponCashClosing, "couponCashClosing")
	assertDec(t, 5020, agg.TotalCashDeposit, "totalCashDeposit")
}

func TestClosingBalanceAndWithdrawalTotal(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	dropped := entry("w3", day, core.Withdraw, 1000)
	dropped.Status = core.StatusInactive
	entries := []core.Entry{
		entry("1", day, core.Opening, 1000),
		entry("w1", day, core.Withdraw, 200),
		entry("w2", day, core.Withdraw, 50),
		dropped,
		entry("w4", day.AddDays(-1), core.Withdraw, 75),
	}

	assertDec(t, 750, ClosingBalance(entries, day), "closing")
	assertDec(t, 250, WithdrawalTotal(entries, day), "withdrawals")
	assertDec(t, 0, WithdrawalTotal(entries, day.AddDays(3)), "empty day")
}

func TestActiveEntries(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	off := entry("2", day, core.Issue, 1)
	off.Status = core.StatusInactive
	unset := entry("3", day, core.Issue, 1)
	unset.Status = ""

	got := ActiveEntries([]core.Entry{entry("1", day, core.Issue, 1), off, unset})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
