// Package analytics provides pure statistical functions over aggregated
// event data: anomaly detection, user segmentation, and cohort retention.
// No function in this package touches storage.
package analytics

import (
	"math"
	"time"
)

// Bucket is a single point of a time-bucketed frequency series.
// Label is either "HH:00" (hour buckets) or "YYYY-MM-DD" (date buckets).
type Bucket struct {
	Label string `json:"bucket"`
	Count int64  `json:"count"`
}

// EventCount is an event name with its total occurrence count.
type EventCount struct {
	Name  string `json:"event_name"`
	Count int64  `json:"count"`
}

// IdentityCount is an effective identity with its all-time event total.
type IdentityCount struct {
	Identity string
	Count    int64
}

// IdentityDay is one day on which an identity was active.
type IdentityDay struct {
	Identity string
	Day      time.Time
}

// ActiveUsers summarizes distinct active identities for a window with a
// comparison against the preceding equal-length window.
type ActiveUsers struct {
	Count         int     `json:"active_users"`
	Previous      int     `json:"previous_period"`
	Change        int     `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// CompareActiveUsers computes the period-over-period change. The percentage
// is 0 when the previous window had no active users.
// This is a PURE function.
func CompareActiveUsers(current, previous int) ActiveUsers {
	a := ActiveUsers{
		Count:    current,
		Previous: previous,
		Change:   current - previous,
	}
	if previous > 0 {
		a.ChangePercent = round1(float64(a.Change) / float64(previous) * 100)
	}
	return a
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
