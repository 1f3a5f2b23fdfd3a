package ledger

// View names a derived table. Header lists below are the single source for
// both on-screen tables and file exports, and the import synonym table
// accepts every Entries header.
type View string

const (
	ViewEntries View = "entries"
	ViewDaily   View = "daily"
	ViewWeekly  View = "weekly"
	ViewMonthly View = "monthly"
	ViewReport  View = "report"
)

var (
	EntriesHeaders = []string{
		"Month", "Date", "Coupons", "Issued_Start serial number", "Issued_End serial number",
		"withheld_Start serial number", "withheld_End serial number", "Issued_Count", "Withheld_Count",
		"Sold_Count", "Face_Value", "Total_Amount", "Labour Cost", "Milk Cost", "Card Cash",
		"Card Phonepay", "Coupon Paytm", "Opening Balance", "Notes", "Bundle_Key", "Type", "Entry_Mode",
	}

	// periodTotals are the ten aggregate columns shared by the period views.
	periodTotals = []string{
		"Total Coupon Sales (₹)", "Total Card Sales (₹)", "Card Cash (₹)", "Card Phonepay (₹)",
		"Coupon Paytm (₹)", "Labour (₹)", "Milk (₹)", "Coupon Cash Closing Balance (₹)",
		"Total Cash Deposit (₹)", "Total Sales (₹)",
	}

	DailyHeaders   = append([]string{"Date", "Month"}, periodTotals...)
	WeeklyHeaders  = append([]string{"Week Start (Mon)", "Week End (Sun)"}, periodTotals...)
	MonthlyHeaders = append([]string{"Month"}, periodTotals...)

	ReportHeaders = []string{
		"Date", "Coupon Cash Sale (₹)", "Coupon Paytm (₹)", "Labour (₹)", "Milk (₹)",
		"Card Cash (₹)", "Card Phone Pay (₹)", "Total Sale (₹)", "Bank Deposit (₹)",
	}
)

// Views lists every view in display order.
func Views() []View {
	return []View{ViewEntries, ViewDaily, ViewWeekly, ViewMonthly, ViewReport}
}

// Headers returns a copy of the header list for v, or nil if v is unknown.
func Headers(v View) []string {
	var h []string
	switch v {
	case ViewEntries:
		h = EntriesHeaders
	case ViewDaily:
		h = DailyHeaders
	case ViewWeekly:
		h = WeeklyHeaders
	case ViewMonthly:
		h = MonthlyHeaders
	case ViewReport:
		h = ReportHeaders
	default:
		return nil
	}
	return append([]string(nil), h...)
}
