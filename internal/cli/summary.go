package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cashledger/internal/config"
	"cashledger/internal/core"
	applog "cashledger/internal/log"
	"cashledger/internal/services"
)

var (
	summaryDate   string
	summarySource string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the totals, closing balance and suggested opening for a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, cfg *config.Config, logger *applog.Logger, rt *ledgerRuntime) error {
			day, err := parseDay(summaryDate, time.Now)
			if err != nil {
				return err
			}
			source := day.AddDays(-1)
			if summarySource != "" {
				if source, err = parseDay(summarySource, time.Now); err != nil {
					return err
				}
			}
			return runSummary(cmd.OutOrStdout(), rt.svc, day, source)
		})
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDate, "date", "today", "day to summarise (YYYY-MM-DD or today)")
	summaryCmd.Flags().StringVar(&summarySource, "source", "", "day whose withdrawals suggest the opening (default: the day before)")
}

func runSummary(w io.Writer, svc *services.LedgerService, day, source core.Date) error {
	agg := svc.DayAggregate(day)
	suggested := svc.SuggestOpening(source)

	opening := "-"
	if e, ok := svc.OpeningEntry(day); ok {
		opening = e.Amount.String()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Date", day.String()},
		{"Opening", opening},
		{"Coupon sales", agg.TotalCouponSales.String()},
		{"Card cash", agg.CardCash.String()},
		{"Card PhonePe", agg.CardPhonePe.String()},
		{"Card sales", agg.TotalCardSales.String()},
		{"Coupon Paytm", agg.CouponPaytm.String()},
		{"Labour", agg.Labour.String()},
		{"Material", agg.Material.String()},
		{"Closing balance", svc.ClosingBalance(day).String()},
		{"Cash deposit", agg.TotalCashDeposit.String()},
		{"Total sales", agg.TotalSales.String()},
		{fmt.Sprintf("Suggested opening (%s)", source), suggested.String()},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}
