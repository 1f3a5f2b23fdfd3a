package ledger

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"cashledger/internal/core"
)

// EntryRow is the spreadsheet-shaped projection of one active entry. Its
// column layout is what a user edits and pastes back through the importer.
type EntryRow struct {
	Month         string
	Date          core.Date
	Coupons       string
	IssuedStart   string
	IssuedEnd     string
	WithheldStart string
	WithheldEnd   string
	IssuedCount   decimal.Decimal
	WithheldCount decimal.Decimal
	SoldCount     decimal.Decimal
	FaceValue     decimal.Decimal
	TotalAmount   decimal.Decimal
	LabourCost    decimal.Decimal
	MaterialCost  decimal.Decimal
	CardCash      decimal.Decimal
	CardPhonePe   decimal.Decimal
	CouponPaytm   decimal.Decimal
	Opening       decimal.Decimal
	Notes         string
	BundleKey     string
	Type          string
	EntryMode     string

	timestamp int64
}

// couponsLabel is the text written to the "Coupons" column for non-coupon
// entries; the importer keys its type detection on these words.
var couponsLabel = map[core.EntryType]string{
	core.Opening:     "OPENING",
	core.DailyCost:   "DAILY COST",
	core.CardCash:    "CARD CASH",
	core.CardPhonePe: "CARD PHONEPAY",
	core.CouponPaytm: "COUPON PAYTM",
}

// EntriesView flattens the active entries, newest date first. Entries on the
// same date are ordered by timestamp, newest first.
func EntriesView(entries []core.Entry) []EntryRow {
	active := ActiveEntries(entries)
	rows := make([]EntryRow, 0, len(active))
	for _, e := range active {
		rows = append(rows, entryRow(e))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[j].Date.Before(rows[i].Date)
		}
		return rows[i].timestamp > rows[j].timestamp
	})
	return rows
}

func entryRow(e core.Entry) EntryRow {
	isIssue := e.Type == core.Issue
	isWithdraw := e.Type == core.Withdraw

	row := EntryRow{
		Month:     e.Date.Format("Jan-2006"),
		Date:      e.Date,
		Coupons:   e.CouponType,
		FaceValue: e.FaceValue,
		Notes:     e.Notes,
		BundleKey: bundleKey(e.ID),
		EntryMode: string(e.EntryMode),
		timestamp: e.Timestamp.UnixMilli(),
	}
	if label, ok := couponsLabel[e.Type]; ok {
		row.Coupons = label
	} else if row.Coupons == "" {
		row.Coupons = "-"
	}

	switch {
	case isIssue:
		row.IssuedStart = serial(e.SerialStart)
		row.IssuedEnd = serial(e.SerialEnd)
		row.IssuedCount = e.Quantity
		row.SoldCount = e.Quantity
	case isWithdraw:
		row.WithheldStart = serial(e.SerialStart)
		row.WithheldEnd = serial(e.SerialEnd)
		row.WithheldCount = e.Quantity
		row.SoldCount = e.Quantity.Neg()
	}
	if isIssue || isWithdraw {
		row.TotalAmount = e.Amount
		row.Type = string(e.Type)
	}

	row.LabourCost = e.LabourCost
	row.MaterialCost = e.MaterialCost
	switch e.Type {
	case core.CardCash:
		row.CardCash = e.Amount
	case core.CardPhonePe:
		row.CardPhonePe = e.Amount
	case core.CouponPaytm:
		row.CouponPaytm = e.Amount
	case core.Opening:
		row.Opening = e.Amount
	}
	return row
}

func serial(n int64) string {
	if n <= 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func bundleKey(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ReportRow is the compact per-day statement.
type ReportRow struct {
	Date           core.Date       `json:"date"`
	CouponCashSale decimal.Decimal `json:"couponCashSale"`
	CouponPaytm    decimal.Decimal `json:"couponPaytm"`
	Labour         decimal.Decimal `json:"labour"`
	Material       decimal.Decimal `json:"material"`
	CardCash       decimal.Decimal `json:"cardCash"`
	CardPhonePe    decimal.Decimal `json:"cardPhonePe"`
	TotalSale      decimal.Decimal `json:"totalSale"`
	BankDeposit    decimal.Decimal `json:"bankDeposit"`
}

// ReportView relabels the daily series, one row per day, most recent first.
func ReportView(entries []core.Entry) []ReportRow {
	daily := ComputeDailySeries(entries)
	rows := make([]ReportRow, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, ReportRow{
			Date:           d.Start,
			CouponCashSale: d.TotalCouponSales,
			CouponPaytm:    d.CouponPaytm,
			Labour:         d.Labour,
			Material:       d.Material,
			CardCash:       d.CardCash,
			CardPhonePe:    d.CardPhonePe,
			TotalSale:      d.TotalSales,
			BankDeposit:    d.TotalCashDeposit,
		})
	}
	return rows
}
