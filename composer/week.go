package composer

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/samgozman/fin-board/scavenger/fmp"
)

// MinMarketCap is the liquidity floor for the board: earnings of companies
// below $100M market cap are dropped.
const MinMarketCap = 100_000_000

// EarningEntry is one earnings line on the board, after the market cap join.
type EarningEntry struct {
	Symbol    string
	Name      string
	Time      string // bmo/amc tag if known
	MarketCap int64
}

// DayPlan holds everything scheduled for a single weekday.
type DayPlan struct {
	Earnings []*EarningEntry
	Macro    fmp.MacroEvents
}

// Week is the aggregated Monday to Friday plan. Days always contains exactly
// five entries keyed by ISO date, no matter how sparse the inputs were.
type Week struct {
	Monday time.Time
	Friday time.Time
	Days   map[string]*DayPlan

	// MissingSources names the fetchers that failed for this run, so a
	// sparse board can be told apart from a quiet week.
	MissingSources []string
}

// NextMarketWeek resolves the upcoming Monday through Friday from the given
// date. A run that already happens on Monday (UTC) keeps that same week.
func NextMarketWeek(today time.Time) (time.Time, time.Time) {
	y, m, d := today.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	monday := day.AddDate(0, 0, offset)
	return monday, monday.AddDate(0, 0, 4)
}

// BuildWeek joins earnings rows to market caps, drops entries with unknown or
// sub-threshold caps, buckets everything by day and orders each day's
// earnings by market cap descending.
func BuildWeek(monday, friday time.Time, earnings fmp.Earnings, caps map[string]int64, macro fmp.MacroEvents) *Week {
	week := &Week{
		Monday: monday,
		Friday: friday,
		Days:   make(map[string]*DayPlan, 5),
	}
	for _, d := range week.Dates() {
		week.Days[d.Format(time.DateOnly)] = &DayPlan{}
	}

	for _, ev := range macro {
		if day, ok := week.Days[ev.Date.Format(time.DateOnly)]; ok {
			day.Macro = append(day.Macro, ev)
		}
	}

	for _, e := range earnings {
		day, ok := week.Days[e.Date.Format(time.DateOnly)]
		if !ok {
			continue
		}
		mcap, ok := caps[e.Symbol]
		if !ok || mcap < MinMarketCap {
			continue
		}
		day.Earnings = append(day.Earnings, &EarningEntry{
			Symbol:    e.Symbol,
			Name:      e.Name,
			Time:      e.Time,
			MarketCap: mcap,
		})
	}

	for _, day := range week.Days {
		entries := day.Earnings
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].MarketCap > entries[j].MarketCap
		})
	}

	return week
}

// Dates returns the five weekdays of the plan in calendar order.
func (w *Week) Dates() []time.Time {
	dates := make([]time.Time, 5)
	for i := range dates {
		dates[i] = w.Monday.AddDate(0, 0, i)
	}
	return dates
}

// FormatMarketCap renders a market cap with a T/B/M suffix: 1.5B, 999M, 2.0T.
func FormatMarketCap(n int64) string {
	switch {
	case n >= 1_000_000_000_000:
		return fmt.Sprintf("%.1fT", float64(n)/1_000_000_000_000)
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.0fM", float64(n)/1_000_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// truncate cuts a string to max runes, ending with an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
