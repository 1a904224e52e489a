// Package analytics turns grouped visit counts into complete daily series
// and derives secondary views from per-link usage reports.
package analytics

import (
	"fmt"
	"time"

	"github.com/vadimbarashkov/golinks/internal/entity"
)

// DateLayout is the calendar date format used for daily buckets.
const DateLayout = "2006-01-02"

// FillDaily returns one entry per UTC calendar date from since's date through
// now's date inclusive, taking counts from raw and zero for missing dates.
// A raw date outside that span is an error so counts are never dropped.
func FillDaily(since, now time.Time, raw []entity.DailyCount) ([]entity.DailyCount, int64, error) {
	const op = "analytics.FillDaily"

	first := truncateDay(since)
	last := truncateDay(now)
	if last.Before(first) {
		return nil, 0, fmt.Errorf("%s: window ends before it starts", op)
	}

	counts := make(map[string]int64, len(raw))
	for _, dc := range raw {
		day, err := time.Parse(DateLayout, dc.Date)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: invalid date %q: %w", op, dc.Date, err)
		}
		if day.Before(first) || day.After(last) {
			return nil, 0, fmt.Errorf("%s: date %s outside window %s..%s", op,
				dc.Date, first.Format(DateLayout), last.Format(DateLayout))
		}
		counts[dc.Date] += dc.Count
	}

	days := int(last.Sub(first).Hours()/24) + 1
	series := make([]entity.DailyCount, 0, days)

	var total int64
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		date := day.Format(DateLayout)
		series = append(series, entity.DailyCount{Date: date, Count: counts[date]})
		total += counts[date]
	}

	return series, total, nil
}

// NextDay returns the start of the UTC calendar day after t's date. It is the
// exclusive upper bound of a series ending on t's date.
func NextDay(t time.Time) time.Time {
	return truncateDay(t).AddDate(0, 0, 1)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
