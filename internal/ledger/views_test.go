package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/core"
)

func TestReportView_RelabelsDailySeries(t *testing.T) {
	entries := fortnight()
	daily := ComputeDailySeries(entries)
	report := ReportView(entries)
	require.Len(t, report, len(daily))

	for i, row := range report {
		d := daily[i]
		assert.True(t, row.Date.Equal(d.Start))
		assert.True(t, row.CouponCashSale.Equal(d.TotalCouponSales))
		assert.True(t, row.CouponPaytm.Equal(d.CouponPaytm))
		assert.True(t, row.Labour.Equal(d.Labour))
		assert.True(t, row.Material.Equal(d.Material))
		assert.True(t, row.CardCash.Equal(d.CardCash))
		assert.True(t, row.CardPhonePe.Equal(d.CardPhonePe))
		assert.True(t, row.TotalSale.Equal(d.TotalSales))
		assert.True(t, row.BankDeposit.Equal(d.TotalCashDeposit))
	}
}

func TestEntriesView(t *testing.T) {
	older := core.NewDate(2025, 3, 9)
	newer := core.NewDate(2025, 3, 10)

	issue := core.Entry{
		ID: "0123456789abcdef", Date: newer, Type: core.Issue, CouponType: "Rs 50",
		FaceValue: dec(50), Quantity: dec(100), SerialStart: 1001, SerialEnd: 1100,
		Amount: dec(5000), EntryMode: core.ModeSerial, Status: core.StatusActive,
		Timestamp: newer.Add(2 * time.Hour),
	}
	withdraw := core.Entry{
		ID: "w1", Date: newer, Type: core.Withdraw, CouponType: "Rs 10",
		FaceValue: dec(10), Quantity: dec(500), Amount: dec(5000), EntryMode: core.ModeBundle,
		Status: core.StatusActive, Timestamp: newer.Add(3 * time.Hour),
	}
	costEntry := cost("c1", older, 40, 25)
	opening := entry("o1", older, core.Opening, 750)
	inactive := entry("gone", newer, core.CardCash, 1)
	inactive.Status = core.StatusInactive

	rows := EntriesView([]core.Entry{costEntry, issue, inactive, opening, withdraw})
	require.Len(t, rows, 4)

	// Newest date first, later timestamp first within a day.
	assert.Equal(t, "w1", rows[0].BundleKey)
	assert.Equal(t, "01234567", rows[1].BundleKey)
	assert.Equal(t, "2025-03-09", rows[2].Date.String())

	w := rows[0]
	assert.Equal(t, "Rs 10", w.Coupons)
	assert.Equal(t, "WITHDRAW", w.Type)
	assertDec(t, 500, w.WithheldCount, "withheld count")
	assertDec(t, -500, w.SoldCount, "sold count")
	assertDec(t, 5000, w.TotalAmount, "total amount")
	assert.Equal(t, "BUNDLE", w.EntryMode)

	is := rows[1]
	assert.Equal(t, "Mar-2025", is.Month)
	assert.Equal(t, "1001", is.IssuedStart)
	assert.Equal(t, "1100", is.IssuedEnd)
	assert.Empty(t, is.WithheldStart)
	assertDec(t, 100, is.IssuedCount, "issued count")
	assertDec(t, 100, is.SoldCount, "sold count")

	byCoupons := map[string]EntryRow{}
	for _, r := range rows {
		byCoupons[r.Coupons] = r
	}
	require.Contains(t, byCoupons, "DAILY COST")
	require.Contains(t, byCoupons, "OPENING")
	assertDec(t, 40, byCoupons["DAILY COST"].LabourCost, "labour")
	assertDec(t, 25, byCoupons["DAILY COST"].MaterialCost, "material")
	assert.Empty(t, byCoupons["DAILY COST"].Type)
	assertDec(t, 750, byCoupons["OPENING"].Opening, "opening")
	assertDec(t, 0, byCoupons["OPENING"].TotalAmount, "opening total amount")
}

func TestHeaders(t *testing.T) {
	for _, v := range Views() {
		assert.NotEmpty(t, Headers(v), "view %s", v)
	}
	assert.Nil(t, Headers("bogus"))
	assert.Len(t, DailyHeaders, 12)
	assert.Len(t, WeeklyHeaders, 12)
	assert.Len(t, MonthlyHeaders, 11)

	h := Headers(ViewReport)
	h[0] = "changed"
	assert.Equal(t, "Date", ReportHeaders[0], "Headers must return a copy")
}
