package analytics_test

import (
	"reflect"
	"testing"

	"github.com/pulsekit/pulse/domain/analytics"
)

func TestSegmentUsers_Thresholds(t *testing.T) {
	totals := []analytics.IdentityCount{
		{Identity: "heavy", Count: 21},    // power: strictly more than 20
		{Identity: "edge-power", Count: 20}, // casual: exactly 20 stays casual
		{Identity: "mid", Count: 10},
		{Identity: "edge-new", Count: 3}, // new: 3 or fewer
		{Identity: "fresh", Count: 1},
	}

	report := analytics.SegmentUsers(totals)

	if got := report.Segments[analytics.SegmentPower]; !reflect.DeepEqual(got, []string{"heavy"}) {
		t.Errorf("power = %v, want [heavy]", got)
	}
	if got := report.Segments[analytics.SegmentCasual]; !reflect.DeepEqual(got, []string{"edge-power", "mid"}) {
		t.Errorf("casual = %v, want [edge-power mid]", got)
	}
	if got := report.Segments[analytics.SegmentNew]; !reflect.DeepEqual(got, []string{"edge-new", "fresh"}) {
		t.Errorf("new = %v, want [edge-new fresh]", got)
	}
	if got := report.Segments[analytics.SegmentInactive]; len(got) != 0 {
		t.Errorf("inactive = %v, want empty", got)
	}
}

func TestSegmentUsers_Percentages(t *testing.T) {
	// 1 power, 2 casual: 33.3% / 66.7%.
	totals := []analytics.IdentityCount{
		{Identity: "a", Count: 50},
		{Identity: "b", Count: 10},
		{Identity: "c", Count: 10},
	}

	report := analytics.SegmentUsers(totals)

	if report.Total != 3 {
		t.Errorf("Total = %d, want 3", report.Total)
	}
	if got := report.Percentages[analytics.SegmentPower]; got != 33.3 {
		t.Errorf("power%% = %v, want 33.3", got)
	}
	if got := report.Percentages[analytics.SegmentCasual]; got != 66.7 {
		t.Errorf("casual%% = %v, want 66.7", got)
	}
	if got := report.Percentages[analytics.SegmentNew]; got != 0 {
		t.Errorf("new%% = %v, want 0", got)
	}
}

func TestSegmentUsers_Empty(t *testing.T) {
	report := analytics.SegmentUsers(nil)

	if report.Total != 0 {
		t.Errorf("Total = %d, want 0", report.Total)
	}
	if len(report.Percentages) != 0 {
		t.Errorf("Percentages = %v, want empty map", report.Percentages)
	}
	// Segment keys stay present so chart shapes are stable.
	if len(report.Segments) != 4 {
		t.Errorf("len(Segments) = %d, want 4", len(report.Segments))
	}
}
