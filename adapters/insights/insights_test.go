package insights_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulsekit/pulse/adapters/insights"
	"github.com/pulsekit/pulse/domain/analytics"
	"github.com/pulsekit/pulse/domain/insight"
)

func sampleDigest() insight.Digest {
	return insight.Digest{
		ProjectName: "My App",
		Period:      "week",
		ActiveUsers: analytics.ActiveUsers{Count: 120, Previous: 100, Change: 20, ChangePercent: 20.0},
		TopEvents:   []analytics.EventCount{{Name: "page_view", Count: 900}, {Name: "signup", Count: 40}},
		TotalEvents: 1200,
		Anomalies: analytics.AnomalyReport{
			Anomalies:  []analytics.Anomaly{{Bucket: "2025-06-10", Count: 400, ZScore: 4.5, Severity: analytics.SeverityHigh}},
			Confidence: 0.85,
			Status:     analytics.StatusOK,
		},
		Segments: analytics.SegmentationReport{
			Segments:    map[string][]string{analytics.SegmentPower: {"alice"}, analytics.SegmentCasual: {"bob", "carol"}, analytics.SegmentNew: {}, analytics.SegmentInactive: {}},
			Percentages: map[string]float64{analytics.SegmentPower: 33.3, analytics.SegmentCasual: 66.7, analytics.SegmentNew: 0, analytics.SegmentInactive: 0},
			Total:       3,
		},
	}
}

// -----------------------------------------------------------------------------
// DeepSeek Tests
// -----------------------------------------------------------------------------

func TestDeepSeek_GenerateInsights(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		content := `{"insights":[{"title":"Growth","description":"Users up 20%","severity":"info"}],"recommendations":[{"title":"Keep going","description":"Momentum is good","impact":"low"}]}`
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
	defer server.Close()

	provider := insights.NewDeepSeek(insights.DeepSeekConfig{
		BaseURL: server.URL,
		APIKey:  "sk-test",
	})

	report, err := provider.GenerateInsights(context.Background(), sampleDigest())
	if err != nil {
		t.Fatalf("generate insights: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %s, want Bearer sk-test", gotAuth)
	}
	if gotBody["model"] != "deepseek-chat" {
		t.Errorf("model = %v, want deepseek-chat", gotBody["model"])
	}
	if gotBody["temperature"] != 0.3 {
		t.Errorf("temperature = %v, want 0.3", gotBody["temperature"])
	}
	if gotBody["max_tokens"] != float64(1500) {
		t.Errorf("max_tokens = %v, want 1500", gotBody["max_tokens"])
	}
	rf, _ := gotBody["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format.type = %v, want json_object", rf["type"])
	}

	if len(report.Insights) != 1 || report.Insights[0].Title != "Growth" {
		t.Errorf("unexpected insights: %+v", report.Insights)
	}
	if len(report.Recommendations) != 1 {
		t.Errorf("len(recommendations) = %d, want 1", len(report.Recommendations))
	}
	if report.Source != "deepseek" {
		t.Errorf("Source = %s, want deepseek", report.Source)
	}
}

func TestDeepSeek_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := insights.NewDeepSeek(insights.DeepSeekConfig{BaseURL: server.URL, APIKey: "bad"})

	_, err := provider.GenerateInsights(context.Background(), sampleDigest())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestDeepSeek_MalformedModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "not json at all"}},
			},
		})
	}))
	defer server.Close()

	provider := insights.NewDeepSeek(insights.DeepSeekConfig{BaseURL: server.URL, APIKey: "sk"})

	_, err := provider.GenerateInsights(context.Background(), sampleDigest())
	if err == nil {
		t.Fatal("expected error for unparseable model output")
	}
}

func TestDeepSeek_Name(t *testing.T) {
	provider := insights.NewDeepSeek(insights.DeepSeekConfig{})
	if provider.Name() != "deepseek" {
		t.Errorf("Name() = %s, want deepseek", provider.Name())
	}
}

// -----------------------------------------------------------------------------
// Mock Tests
// -----------------------------------------------------------------------------

func TestMock_GenerateInsights(t *testing.T) {
	provider := insights.NewMock()

	report, err := provider.GenerateInsights(context.Background(), sampleDigest())
	if err != nil {
		t.Fatalf("generate insights: %v", err)
	}

	if report.Source != "mock" {
		t.Errorf("Source = %s, want mock", report.Source)
	}
	if len(report.Insights) == 0 {
		t.Fatal("expected at least one insight")
	}

	// Growth digest yields a growth insight.
	if report.Insights[0].Title != "Active users growing" {
		t.Errorf("Insights[0].Title = %s, want Active users growing", report.Insights[0].Title)
	}

	// High-severity anomaly surfaces as critical.
	foundCritical := false
	for _, ins := range report.Insights {
		if ins.Severity == "critical" {
			foundCritical = true
		}
	}
	if !foundCritical {
		t.Error("expected a critical insight for the high-severity anomaly")
	}
}

func TestMock_Decline(t *testing.T) {
	provider := insights.NewMock()

	digest := sampleDigest()
	digest.ActiveUsers = analytics.ActiveUsers{Count: 50, Previous: 100, Change: -50, ChangePercent: -50.0}
	digest.Anomalies = analytics.AnomalyReport{Anomalies: []analytics.Anomaly{}, Status: analytics.StatusOK}

	report, err := provider.GenerateInsights(context.Background(), digest)
	if err != nil {
		t.Fatalf("generate insights: %v", err)
	}

	if report.Insights[0].Severity != "warning" {
		t.Errorf("Severity = %s, want warning for a decline", report.Insights[0].Severity)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected a recommendation for a decline")
	}
}

func TestMock_Deterministic(t *testing.T) {
	provider := insights.NewMock()
	digest := sampleDigest()

	a, _ := provider.GenerateInsights(context.Background(), digest)
	b, _ := provider.GenerateInsights(context.Background(), digest)

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Error("mock output should be deterministic for the same digest")
	}
}

func TestMock_EmptyDigest(t *testing.T) {
	provider := insights.NewMock()

	report, err := provider.GenerateInsights(context.Background(), insight.Digest{Period: "day"})
	if err != nil {
		t.Fatalf("generate insights: %v", err)
	}
	if len(report.Insights) == 0 {
		t.Error("even an empty digest should produce a stability insight")
	}
}
