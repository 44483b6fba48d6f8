// Package window resolves dashboard period tokens into time windows
// and bucket granularities. All functions are pure - no side effects.
package window

import "time"

// Period is a dashboard time range token.
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
)

// Granularity is the bucket size used when grouping events over a window.
type Granularity string

const (
	ByHour Granularity = "hour"
	ByDate Granularity = "date"
)

// SQLiteFormat returns the strftime pattern producing the bucket label.
// Hour buckets label as "HH:00", date buckets as "YYYY-MM-DD".
func (g Granularity) SQLiteFormat() string {
	if g == ByHour {
		return "%H:00"
	}
	return "%Y-%m-%d"
}

// Window is a resolved time range with its bucket granularity.
type Window struct {
	Period      Period
	Cutoff      time.Time
	Duration    time.Duration
	Granularity Granularity
}

// Resolve maps a period token to a concrete window ending at now.
// Unknown tokens silently resolve to a day window; a dashboard link with a
// mangled query parameter renders the default view instead of failing.
// This is a PURE function.
func Resolve(period string, now time.Time) Window {
	switch Period(period) {
	case Week:
		return Window{Period: Week, Cutoff: now.Add(-7 * 24 * time.Hour), Duration: 7 * 24 * time.Hour, Granularity: ByDate}
	case Month:
		return Window{Period: Month, Cutoff: now.Add(-30 * 24 * time.Hour), Duration: 30 * 24 * time.Hour, Granularity: ByDate}
	default:
		return Window{Period: Day, Cutoff: now.Add(-24 * time.Hour), Duration: 24 * time.Hour, Granularity: ByHour}
	}
}

// Previous returns the equal-length window immediately preceding w.
// Used for period-over-period comparisons.
// This is a PURE function.
func (w Window) Previous() (start, end time.Time) {
	return w.Cutoff.Add(-w.Duration), w.Cutoff
}
