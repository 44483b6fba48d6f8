package analytics

import "math"

// Anomaly statuses reported alongside the anomaly list.
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient data"
	StatusNoVariance       = "no variance"
)

// Anomaly severity levels.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly is a single bucket whose count deviates abnormally from the
// series mean.
type Anomaly struct {
	Bucket   string  `json:"bucket"`
	Count    int64   `json:"count"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"`
}

// AnomalyReport is the result of anomaly detection over a frequency series.
type AnomalyReport struct {
	HasAnomalies bool      `json:"has_anomalies"`
	Anomalies    []Anomaly `json:"anomalies"`
	Confidence   float64   `json:"confidence"`
	Status       string    `json:"status"`
}

// DetectAnomalies flags buckets whose Z-score exceeds 3 standard deviations
// from the series mean, using the population standard deviation. Severity is
// high above 4 deviations, medium otherwise. Confidence grows with series
// length: min(0.5 + 0.05*n, 0.95).
//
// Degenerate series never error: fewer than 3 buckets or a zero-variance
// series yield an empty report with confidence 0 and an explanatory status.
// This is a PURE function.
func DetectAnomalies(series []Bucket) AnomalyReport {
	n := len(series)
	if n < 3 {
		return AnomalyReport{Anomalies: []Anomaly{}, Confidence: 0, Status: StatusInsufficientData}
	}

	var sum float64
	for _, b := range series {
		sum += float64(b.Count)
	}
	mean := sum / float64(n)

	var variance float64
	for _, b := range series {
		d := float64(b.Count) - mean
		variance += d * d
	}
	variance /= float64(n)

	if variance == 0 {
		return AnomalyReport{Anomalies: []Anomaly{}, Confidence: 0, Status: StatusNoVariance}
	}
	stddev := math.Sqrt(variance)

	anomalies := []Anomaly{}
	for _, b := range series {
		z := (float64(b.Count) - mean) / stddev
		if math.Abs(z) <= 3 {
			continue
		}
		severity := SeverityMedium
		if math.Abs(z) > 4 {
			severity = SeverityHigh
		}
		anomalies = append(anomalies, Anomaly{
			Bucket:   b.Label,
			Count:    b.Count,
			ZScore:   round2(z),
			Severity: severity,
		})
	}

	return AnomalyReport{
		HasAnomalies: len(anomalies) > 0,
		Anomalies:    anomalies,
		Confidence:   round2(math.Min(0.5+0.05*float64(n), 0.95)),
		Status:       StatusOK,
	}
}
