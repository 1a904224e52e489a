package entity

import (
	"fmt"
	"time"
)

// Range is a lookback window selector.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"

	DefaultRange = Range30d
)

// ParseRange validates a range token. An empty token selects DefaultRange.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case "":
		return DefaultRange, nil
	case Range7d, Range30d, Range90d:
		return r, nil
	default:
		return "", NewValidationError(fmt.Sprintf("invalid range %q: must be one of 7d, 30d, 90d", s))
	}
}

// Days returns the number of days the range looks back.
func (r Range) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range90d:
		return 90
	default:
		return 30
	}
}

// Since returns the lower bound of the window ending at now.
func (r Range) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.Days())
}

// DailyCount is the number of visits on one UTC calendar date.
type DailyCount struct {
	Date  string // Date is formatted as YYYY-MM-DD.
	Count int64
}

// ClickSeries is the global gap-filled visit series for a range.
type ClickSeries struct {
	Range       Range
	DailyClicks []DailyCount
	TotalClicks int64
}

// LinkAnalytics is the gap-filled visit series of a single link.
type LinkAnalytics struct {
	LinkID      int64
	Range       Range
	TotalVisits int64
	DailyVisits []DailyCount
}

// LinkUsage pairs a link with its visit count inside a range.
type LinkUsage struct {
	Link
	VisitsInRange int64
}

// TotalVisits is the all-time counter of the link.
func (u *LinkUsage) TotalVisits() int64 {
	return u.Visits
}

// UsageReport is a ranked slice of link usages for a range.
type UsageReport struct {
	Links []LinkUsage
	Range Range
	Limit int
}

// UsageOrder selects the direction of a usage report.
type UsageOrder uint8

const (
	// MostUsed orders by visits in range, then all-time visits, descending.
	MostUsed UsageOrder = iota
	// LeastUsed is the exact reverse of MostUsed.
	LeastUsed
)
