package analytics

import "sort"

// Segment names. InactiveUsers is reserved: identities only enter the store
// by generating an event, so the segment is always empty today. It stays in
// the report so downstream charts keep a stable shape.
const (
	SegmentPower    = "power_users"
	SegmentCasual   = "casual_users"
	SegmentNew      = "new_users"
	SegmentInactive = "inactive_users"
)

// Activity thresholds for segment assignment.
const (
	powerThreshold = 20 // more than this many events
	newThreshold   = 3  // at most this many events
)

// SegmentationReport groups identities into behavioral segments.
type SegmentationReport struct {
	Segments    map[string][]string `json:"segments"`
	Percentages map[string]float64  `json:"percentages"`
	Total       int                 `json:"total_users"`
}

// SegmentUsers assigns each identity to exactly one segment by its all-time
// event total: power above 20 events, new at 3 or fewer, casual in between.
// Percentages are rounded to one decimal; with no identities at all the
// percentage map is empty.
// This is a PURE function.
func SegmentUsers(totals []IdentityCount) SegmentationReport {
	report := SegmentationReport{
		Segments: map[string][]string{
			SegmentPower:    {},
			SegmentCasual:   {},
			SegmentNew:      {},
			SegmentInactive: {},
		},
		Percentages: map[string]float64{},
		Total:       len(totals),
	}

	for _, tc := range totals {
		switch {
		case tc.Count > powerThreshold:
			report.Segments[SegmentPower] = append(report.Segments[SegmentPower], tc.Identity)
		case tc.Count <= newThreshold:
			report.Segments[SegmentNew] = append(report.Segments[SegmentNew], tc.Identity)
		default:
			report.Segments[SegmentCasual] = append(report.Segments[SegmentCasual], tc.Identity)
		}
	}

	for name := range report.Segments {
		sort.Strings(report.Segments[name])
	}

	if report.Total == 0 {
		return report
	}
	for name, members := range report.Segments {
		report.Percentages[name] = round1(float64(len(members)) / float64(report.Total) * 100)
	}
	return report
}
