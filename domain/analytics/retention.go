package analytics

import (
	"fmt"
	"sort"
	"time"
)

// Cohort is a group of identities that produced their first event in the
// same ISO week. Retention holds, per week offset from formation, the
// percentage of the cohort active in that week (one decimal place).
// Size is frozen at formation and never shrinks.
type Cohort struct {
	Week      string    `json:"cohort"`
	Size      int       `json:"size"`
	Retention []float64 `json:"retention"`
}

// BuildRetention groups activity into ISO-week cohorts. Each identity's
// cohort is the week of its earliest observed day; an identity counts as
// retained at offset k when it was active during the k-th week after its
// cohort week. Offsets at or beyond weeks are discarded. An empty cohort
// reports 0 percent everywhere rather than dividing by zero.
// This is a PURE function.
func BuildRetention(activity []IdentityDay, weeks int) []Cohort {
	if weeks <= 0 {
		weeks = 8
	}

	// Earliest active day per identity determines the cohort.
	first := make(map[string]time.Time)
	for _, a := range activity {
		day := a.Day.UTC()
		if cur, ok := first[a.Identity]; !ok || day.Before(cur) {
			first[a.Identity] = day
		}
	}

	type cohortAgg struct {
		size     int
		retained []map[string]bool
	}
	cohorts := make(map[string]*cohortAgg)

	for _, day := range first {
		label := isoWeekLabel(day)
		c := cohorts[label]
		if c == nil {
			c = &cohortAgg{retained: make([]map[string]bool, weeks)}
			cohorts[label] = c
		}
		c.size++
	}

	for _, a := range activity {
		firstDay := first[a.Identity]
		offset := weeksBetween(firstDay, a.Day.UTC())
		if offset < 0 || offset >= weeks {
			continue
		}
		c := cohorts[isoWeekLabel(firstDay)]
		if c.retained[offset] == nil {
			c.retained[offset] = make(map[string]bool)
		}
		c.retained[offset][a.Identity] = true
	}

	labels := make([]string, 0, len(cohorts))
	for label := range cohorts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	result := make([]Cohort, 0, len(labels))
	for _, label := range labels {
		c := cohorts[label]
		retention := make([]float64, weeks)
		for i, set := range c.retained {
			if c.size > 0 {
				retention[i] = round1(float64(len(set)) / float64(c.size) * 100)
			}
		}
		result = append(result, Cohort{Week: label, Size: c.size, Retention: retention})
	}
	return result
}

// isoWeekLabel formats the ISO-8601 week of t, e.g. "2025-W24".
func isoWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// weekStart returns the Monday of t's ISO week at midnight UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	back := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -back)
}

// weeksBetween counts whole ISO weeks from a's week to b's week.
func weeksBetween(a, b time.Time) int {
	return int(weekStart(b).Sub(weekStart(a)).Hours() / (24 * 7))
}
