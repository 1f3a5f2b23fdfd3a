package ledger

import (
	"sort"

	"cashledger/internal/core"
)

// Period is an aggregate over a span of days: a single day, a Monday-Sunday
// week or a calendar month.
type Period struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
	DayAggregate
}

// ComputeDailySeries returns one period per distinct date that has at least
// one active entry, most recent first.
func ComputeDailySeries(entries []core.Entry) []Period {
	active := ActiveEntries(entries)

	seen := make(map[string]core.Date)
	for _, e := range active {
		seen[e.Date.String()] = e.Date
	}

	days := make([]Period, 0, len(seen))
	for key, day := range seen {
		days = append(days, Period{
			Key:          key,
			Label:        key,
			Start:        day,
			End:          day,
			DayAggregate: ComputeDayAggregate(active, day),
		})
	}
	sortDescending(days)
	return days
}

// ComputeWeeklySeries sums the daily series into weeks keyed by their Monday.
func ComputeWeeklySeries(entries []core.Entry) []Period {
	return rollup(ComputeDailySeries(entries), func(day core.Date) Period {
		monday := day.Monday()
		sunday := monday.AddDays(6)
		return Period{
			Key:   monday.String(),
			Label: monday.String() + " to " + sunday.String(),
			Start: monday,
			End:   sunday,
		}
	})
}

// ComputeMonthlySeries sums the daily series into calendar months (YYYY-MM).
func ComputeMonthlySeries(entries []core.Entry) []Period {
	return rollup(ComputeDailySeries(entries), func(day core.Date) Period {
		first := core.NewDate(day.Year(), int(day.Month()), 1)
		last := core.Date{Time: first.AddDate(0, 1, -1)}
		return Period{
			Key:   day.MonthKey(),
			Label: first.Format("January 2006"),
			Start: first,
			End:   last,
		}
	})
}

// rollup groups daily periods into buckets and sums each aggregate field of
// the member days. Totals are never recomputed from raw entries, so a bucket
// always equals the sum of its days.
func rollup(daily []Period, bucket func(core.Date) Period) []Period {
	byKey := make(map[string]*Period)
	for _, day := range daily {
		b := bucket(day.Start)
		acc, ok := byKey[b.Key]
		if !ok {
			acc = &b
			byKey[b.Key] = acc
		}
		acc.DayAggregate = acc.DayAggregate.Add(day.DayAggregate)
	}

	out := make([]Period, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, *p)
	}
	sortDescending(out)
	return out
}

func sortDescending(periods []Period) {
	sort.Slice(periods, func(i, j int) bool {
		return periods[j].Start.Before(periods[i].Start)
	})
}
