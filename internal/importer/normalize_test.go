package importer

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/core"
)

func testNormalizer(strict bool) *Normalizer {
	seq := 0
	return &Normalizer{
		Coupons: core.DefaultCoupons(),
		Now:     func() time.Time { return time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Strict: strict,
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestGridToEntries_CardCashByCouponsColumn(t *testing.T) {
	grid := ParseDelimitedText("Date\tCoupons\tCard Cash\n2025-03-10\tCARD CASH\t250")
	res := testNormalizer(false).GridToEntries(grid)

	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, core.CardCash, e.Type)
	assertDec(t, "250", e.Amount)
	assert.Equal(t, "2025-03-10", e.Date.String())
	assert.Equal(t, core.StatusActive, e.Status)
	assert.Equal(t, "id-1", e.ID)
}

func TestGridToEntries_QuotedCouponLabel(t *testing.T) {
	for _, text := range []string{
		"Date\tCoupons\tIssued_Count\n2025-03-10\t\"Rs 10\"\t5",
		"Date,Coupons,Issued_Count\n2025-03-10, \"Rs 10\",5",
	} {
		res := testNormalizer(false).GridToEntries(ParseDelimitedText(text))

		assert.Empty(t, res.Warnings, text)
		require.Len(t, res.Entries, 1, text)
		e := res.Entries[0]
		assert.Equal(t, core.Issue, e.Type)
		assert.Equal(t, "Rs 10", e.CouponType)
		assertDec(t, "10", e.FaceValue)
		assertDec(t, "50", e.Amount)
	}
}

func TestGridToEntries_QuantityFromTotal(t *testing.T) {
	grid := Grid{
		{"Date", "Coupons", "Type", "Issued_Count", "Face_Value", "Total_Amount"},
		{"2025-03-10", "Rs 50", "ISSUE", "", "50", "5000"},
	}
	res := testNormalizer(false).GridToEntries(grid)

	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, core.Issue, e.Type)
	assertDec(t, "100", e.Quantity)
	assertDec(t, "5000", e.Amount)
	assert.Equal(t, core.ModeBundle, e.EntryMode)
}

func TestGridToEntries_AmountFromQuantityAndCatalog(t *testing.T) {
	grid := Grid{
		{"date", "coupon", "type", "withheld", "withheld_Start serial number", "withheld_End serial number"},
		{"2025-03-10", "Rs 10", "WITHHELD", "50", "1001", "1050"},
	}
	res := testNormalizer(false).GridToEntries(grid)

	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, core.Withdraw, e.Type)
	assertDec(t, "10", e.FaceValue)
	assertDec(t, "500", e.Amount)
	assert.Equal(t, int64(1001), e.SerialStart)
	assert.Equal(t, int64(1050), e.SerialEnd)
	assert.Equal(t, core.ModeSerial, e.EntryMode)
}

func TestGridToEntries_HeaderOnly(t *testing.T) {
	res := testNormalizer(false).GridToEntries(Grid{{"Date", "Coupons"}})
	assert.Empty(t, res.Entries)
	assert.NotNil(t, res.Entries)
	assert.Equal(t, []string{"no data rows"}, res.Errors)
}

func TestGridToEntries_EmptyGrid(t *testing.T) {
	res := testNormalizer(false).GridToEntries(ParseDelimitedText(""))
	assert.Empty(t, res.Entries)
	assert.Equal(t, []string{"empty grid"}, res.Errors)
}

func TestGridToEntries_TypeInference(t *testing.T) {
	headers := []string{"Date", "Coupons", "Type", "Opening Balance", "Labour Cost", "Milk Cost",
		"Card Cash", "Card Phonepay", "Coupon Paytm"}

	tests := []struct {
		name string
		row  []string
		want core.EntryType
	}{
		{"opening label", []string{"2025-03-10", "OPENING", "", "900"}, core.Opening},
		{"daily cost label", []string{"2025-03-10", "DAILY COST", "", "", "40", "10"}, core.DailyCost},
		{"phonepay label", []string{"2025-03-10", "CARD PHONEPAY", "", "", "", "", "", "70"}, core.CardPhonePe},
		{"paytm label", []string{"2025-03-10", "COUPON PAYTM", "", "", "", "", "", "", "33"}, core.CouponPaytm},
		{"label beats numbers", []string{"2025-03-10", "OPENING", "", "900", "40"}, core.Opening},
		{"withdraw type", []string{"2025-03-10", "Rs 20", "WITHDRAW"}, core.Withdraw},
		{"denomination", []string{"2025-03-10", "Rs 20", ""}, core.Issue},
		{"denomination inside label", []string{"2025-03-10", "Coupon Rs 10", ""}, core.Issue},
		{"catalog label", []string{"2025-03-10", "rs 100 (combo)", ""}, core.Issue},
		{"sniff opening", []string{"2025-03-10", "", "", "500"}, core.Opening},
		{"sniff cost", []string{"2025-03-10", "", "", "", "", "25"}, core.DailyCost},
		{"sniff card cash", []string{"2025-03-10", "", "", "", "", "", "120"}, core.CardCash},
		{"sniff phonepe", []string{"2025-03-10", "", "", "", "", "", "", "80"}, core.CardPhonePe},
		{"sniff paytm", []string{"2025-03-10", "", "", "", "", "", "", "", "15"}, core.CouponPaytm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testNormalizer(true).GridToEntries(Grid{headers, tt.row})
			assert.Empty(t, res.Errors)
			require.Len(t, res.Entries, 1)
			assert.Equal(t, tt.want, res.Entries[0].Type)
		})
	}
}

func TestGridToEntries_DailyCostFields(t *testing.T) {
	grid := Grid{
		{"Date", "Coupons", "Labour Cost", "Milk Cost", "Notes"},
		{"2025-03-10", "DAILY COST", "₹ 1,200", "300/-", "weekly wages"},
	}
	res := testNormalizer(false).GridToEntries(grid)

	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assertDec(t, "1200", e.LabourCost)
	assertDec(t, "300", e.MaterialCost)
	assert.True(t, e.Amount.IsZero())
	assert.Equal(t, "weekly wages", e.Notes)
}

func TestGridToEntries_FallbackToIssue(t *testing.T) {
	grid := Grid{{"Date", "Notes"}, {"2025-03-10", "mystery row"}}

	lenient := testNormalizer(false).GridToEntries(grid)
	require.Len(t, lenient.Entries, 1)
	assert.Equal(t, core.Issue, lenient.Entries[0].Type)
	require.Len(t, lenient.Warnings, 1)
	assert.Contains(t, lenient.Warnings[0], "row 2")
	assert.Empty(t, lenient.Errors)

	strict := testNormalizer(true).GridToEntries(grid)
	assert.Empty(t, strict.Entries)
	require.Len(t, strict.Errors, 1)
	assert.Contains(t, strict.Errors[0], "row 2")
}

func TestGridToEntries_DatesAndTimestamps(t *testing.T) {
	grid := Grid{
		{"Date", "Card Cash"},
		{"10-Mar-2025", "1"},
		{"03/11/2025", "2"},
		{"not a date", "3"},
		{"", "4"},
	}
	res := testNormalizer(false).GridToEntries(grid)
	require.Len(t, res.Entries, 4)

	assert.Equal(t, "2025-03-10", res.Entries[0].Date.String())
	assert.Equal(t, "2025-03-11", res.Entries[1].Date.String())
	assert.Equal(t, "2025-05-20", res.Entries[2].Date.String())
	assert.Equal(t, "2025-05-20", res.Entries[3].Date.String())

	assert.Equal(t, res.Entries[0].Date.Add(time.Millisecond), res.Entries[0].Timestamp)
	assert.Equal(t, res.Entries[3].Date.Add(4*time.Millisecond), res.Entries[3].Timestamp)
}

func TestParseMergeMode(t *testing.T) {
	m, err := ParseMergeMode("append")
	require.NoError(t, err)
	assert.Equal(t, Append, m)

	m, err = ParseMergeMode("")
	require.NoError(t, err)
	assert.Equal(t, Replace, m)

	_, err = ParseMergeMode("merge")
	assert.ErrorIs(t, err, ErrUnknownMergeMode)
}
