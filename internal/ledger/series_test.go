package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/core"
)

// fortnight spans two ISO weeks and two months: Mon 2025-03-24 .. Sun 2025-04-06.
func fortnight() []core.Entry {
	var entries []core.Entry
	start := core.NewDate(2025, 3, 24)
	for i := 0; i < 14; i++ {
		day := start.AddDays(i)
		n := int64(i + 1)
		entries = append(entries,
			entry("o", day, core.Opening, 100*n),
			entry("i", day, core.Issue, 1000+n),
			entry("w", day, core.Withdraw, -10*n),
			entry("c", day, core.CardCash, 50+n),
			entry("p", day, core.CardPhonePe, 20*n),
			entry("t", day, core.CouponPaytm, 5*n),
			cost("k", day, 15+n, 3*n),
		)
	}
	off := entry("off", start.AddDays(2), core.Issue, 100000)
	off.Status = core.StatusInactive
	return append(entries, off)
}

func sumDays(daily []Period, from, to core.Date) DayAggregate {
	var total DayAggregate
	for _, d := range daily {
		if d.Start.Before(from) || to.Before(d.Start) {
			continue
		}
		total = total.Add(d.DayAggregate)
	}
	return total
}

func assertAggEqual(t *testing.T, want, got DayAggregate) {
	t.Helper()
	assert.True(t, want.TotalCouponSales.Equal(got.TotalCouponSales), "totalCouponSales %s != %s", want.TotalCouponSales, got.TotalCouponSales)
	assert.True(t, want.CardCash.Equal(got.CardCash), "cardCash")
	assert.True(t, want.CardPhonePe.Equal(got.CardPhonePe), "cardPhonePe")
	assert.True(t, want.TotalCardSales.Equal(got.TotalCardSales), "totalCardSales")
	assert.True(t, want.CouponPaytm.Equal(got.CouponPaytm), "couponPaytm")
	assert.True(t, want.Labour.Equal(got.Labour), "labour")
	assert.True(t, want.Material.Equal(got.Material), "material")
	assert.True(t, want.CouponCashClosing.Equal(got.CouponCashClosing), "couponCashClosing")
	assert.True(t, want.TotalCashDeposit.Equal(got.TotalCashDeposit), "totalCashDeposit")
	assert.True(t, want.TotalSales.Equal(got.TotalSales), "totalSales")
}

func TestComputeDailySeries(t *testing.T) {
	daily := ComputeDailySeries(fortnight())
	require.Len(t, daily, 14)

	assert.Equal(t, "2025-04-06", daily[0].Key, "most recent first")
	assert.Equal(t, "2025-03-24", daily[13].Key)
	for i := 1; i < len(daily); i++ {
		assert.True(t, daily[i].Start.Before(daily[i-1].Start))
	}

	// Day three carries the inactive 100000 issue, which must not count.
	third := daily[11]
	require.Equal(t, "2025-03-26", third.Key)
	assertDec(t, 300+1003-30, third.TotalCouponSales, "day three coupon sales")
}

func TestComputeWeeklySeries_Additive(t *testing.T) {
	entries := fortnight()
	daily := ComputeDailySeries(entries)
	weekly := ComputeWeeklySeries(entries)
	require.Len(t, weekly, 2)

	assert.Equal(t, "2025-03-31", weekly[0].Key)
	assert.Equal(t, "2025-03-31 to 2025-04-06", weekly[0].Label)
	assert.Equal(t, "2025-04-06", weekly[0].End.String())
	assert.Equal(t, "2025-03-24", weekly[1].Key)

	for _, w := range weekly {
		assertAggEqual(t, sumDays(daily, w.Start, w.End), w.DayAggregate)
	}
}

func TestComputeMonthlySeries_Additive(t *testing.T) {
	entries := fortnight()
	daily := ComputeDailySeries(entries)
	monthly := ComputeMonthlySeries(entries)
	require.Len(t, monthly, 2)

	assert.Equal(t, "2025-04", monthly[0].Key)
	assert.Equal(t, "April 2025", monthly[0].Label)
	assert.Equal(t, "2025-03", monthly[1].Key)
	assert.Equal(t, "2025-03-01", monthly[1].Start.String())
	assert.Equal(t, "2025-03-31", monthly[1].End.String())

	for _, m := range monthly {
		assertAggEqual(t, sumDays(daily, m.Start, m.End), m.DayAggregate)
	}
}

func TestSeries_EmptyInput(t *testing.T) {
	assert.Empty(t, ComputeDailySeries(nil))
	assert.Empty(t, ComputeWeeklySeries(nil))
	assert.Empty(t, ComputeMonthlySeries(nil))
	assert.Empty(t, ReportView(nil))
}
