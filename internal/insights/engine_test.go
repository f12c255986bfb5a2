package insights

import (
	"strings"
	"testing"

	"github.com/workforce-tools/tasq/config"
	"github.com/workforce-tools/tasq/internal/query"
)

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		TrendEpsilon:       0.05,
		StrongTrend:        0.1,
		HighMean:           10,
		ModerateMean:       5,
		HighVariation:      0.5,
		ModerateVariation:  0.3,
		HighRiskScore:      4,
		MediumRiskScore:    2,
		UnderstaffedBelow:  3,
		HighVolumeWarnLine: 100,
	}
}

func result(columns []string, rows ...[]interface{}) *query.ResultSet {
	return &query.ResultSet{
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
		Success:  true,
	}
}

func TestAnalyzeEmptyResult(t *testing.T) {
	e := NewEngine(testConfig())
	insight := e.Analyze("exceptions by type", &query.ResultSet{Success: true})
	if insight.Summary != "No data found for your query." {
		t.Fatalf("unexpected summary: %q", insight.Summary)
	}
	if len(insight.Findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(insight.Findings))
	}
	if len(insight.Recommendations) == 0 {
		t.Fatal("expected fallback suggestions")
	}
}

func TestAnalyzeFailedResult(t *testing.T) {
	e := NewEngine(testConfig())
	insight := e.Analyze("tenant overview", &query.ResultSet{Success: false, ErrorMessage: "boom"})
	if insight.Summary != "No data found for your query." {
		t.Fatalf("unexpected summary: %q", insight.Summary)
	}
}

func TestTenantListActiveFraction(t *testing.T) {
	e := NewEngine(testConfig())
	rs := result([]string{"tenant_name", "is_active"},
		[]interface{}{"Tenant_A", true},
		[]interface{}{"Tenant_B", false},
		[]interface{}{"Tenant_C", true},
		[]interface{}{"Tenant_D", false},
		[]interface{}{"Tenant_E", false},
	)
	insight := e.Analyze("active tenants", rs)

	if !strings.Contains(insight.Summary, "2 of 5") {
		t.Fatalf("summary should state the active fraction, got %q", insight.Summary)
	}
	foundInactive := false
	for _, f := range insight.Findings {
		if f.Type == FindingWarning && strings.Contains(f.Message, "3 tenants are inactive") {
			foundInactive = true
		}
	}
	if !foundInactive {
		t.Fatalf("expected a finding recording the inactive fraction, got %+v", insight.Findings)
	}
}

func TestSummaryAndFindingsAgreeOnCounts(t *testing.T) {
	e := NewEngine(testConfig())
	rs := result([]string{"location_name", "tenant_name", "colleague_count"},
		[]interface{}{"Location_A", "Tenant_X", int64(12)},
		[]interface{}{"Location_B", "Tenant_X", int64(7)},
		[]interface{}{"Location_C", "Tenant_Y", int64(1)},
	)
	insight := e.Analyze("colleagues by location", rs)

	// The summary total and the highlight total come from the same aggregate.
	if !strings.Contains(insight.Summary, "20 colleagues") || !strings.Contains(insight.Summary, "3 locations") {
		t.Fatalf("unexpected summary: %q", insight.Summary)
	}
	if insight.Highlights == nil || insight.Highlights.Total != 20 {
		t.Fatalf("expected highlight total 20, got %+v", insight.Highlights)
	}
	if insight.Highlights.TopValue != "Location_A" {
		t.Fatalf("expected Location_A as top value, got %q", insight.Highlights.TopValue)
	}

	foundWarning := false
	for _, f := range insight.Findings {
		if f.Type == FindingWarning && strings.Contains(f.Message, "fewer than 3") {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatal("expected an understaffed warning for Location_C")
	}
}

func TestExceptionTypeTopFinding(t *testing.T) {
	e := NewEngine(testConfig())
	rs := result([]string{"exception_type", "exception_count", "avg_duration_mins", "affected_colleagues"},
		[]interface{}{"LATE_IN", int64(40), 12.5, int64(9)},
		[]interface{}{"ABSENCE", int64(80), 480.0, int64(15)},
	)
	insight := e.Analyze("exceptions by type", rs)

	if !strings.Contains(insight.Summary, "120 total exceptions across 2 different types") {
		t.Fatalf("unexpected summary: %q", insight.Summary)
	}
	top := insight.Findings[0]
	if top.Type != FindingTrend || !strings.Contains(top.Message, "ABSENCE is the most common") {
		t.Fatalf("expected ABSENCE trend finding first, got %+v", top)
	}
	if insight.Recommendations[0] != "Exception volume is high; review the most common type first" {
		t.Fatalf("expected the high-volume recommendation, got %v", insight.Recommendations)
	}
}

func TestDailyExceptionResolutionRate(t *testing.T) {
	e := NewEngine(testConfig())
	rs := result([]string{"exception_date", "total_exceptions", "resolved_count", "open_count"},
		[]interface{}{"2026-08-25", int64(10), int64(6), int64(2)},
		[]interface{}{"2026-08-26", int64(20), int64(9), int64(3)},
	)
	insight := e.Analyze("daily exceptions", rs)

	// resolved/(resolved+open) = 15/20 = 75%
	rateFound := false
	peakFound := false
	for _, f := range insight.Findings {
		if strings.Contains(f.Message, "resolution rate: 75.0%") {
			rateFound = true
		}
		if f.Type == FindingAnomaly && strings.Contains(f.Message, "2026-08-26") {
			peakFound = true
		}
	}
	if !rateFound {
		t.Fatalf("expected 75%% resolution rate finding: %+v", insight.Findings)
	}
	if !peakFound {
		t.Fatalf("expected peak day anomaly: %+v", insight.Findings)
	}
}

func TestExceptionStatusPercentages(t *testing.T) {
	e := NewEngine(testConfig())
	rs := result([]string{"status", "tenant_name", "count"},
		[]interface{}{"OPEN", "Tenant_A", int64(30)},
		[]interface{}{"RESOLVED", "Tenant_A", int64(50)},
		[]interface{}{"OPEN", "Tenant_B", int64(20)},
	)
	insight := e.Analyze("exception status distribution", rs)

	if !strings.Contains(insight.Summary, "2 tenants") {
		t.Fatalf("unexpected summary: %q", insight.Summary)
	}
	open, resolved := false, false
	for _, f := range insight.Findings {
		if strings.Contains(f.Message, "OPEN: 50.0%") {
			open = true
		}
		if strings.Contains(f.Message, "RESOLVED: 50.0%") {
			resolved = true
		}
	}
	if !open || !resolved {
		t.Fatalf("expected per-status percentage findings: %+v", insight.Findings)
	}
}

func TestGenericInsightForUnknownCategory(t *testing.T) {
	e := NewEngine(testConfig())
	rs := result([]string{"message"}, []interface{}{"hello"})
	insight := e.Analyze("freeform", rs)
	if !strings.Contains(insight.Summary, "1 results") {
		t.Fatalf("unexpected summary %q", insight.Summary)
	}
}

func TestMalformedCellsAreSkipped(t *testing.T) {
	e := NewEngine(testConfig())
	rs := result([]string{"location_name", "colleague_count"},
		[]interface{}{"Location_A", "12"},
		[]interface{}{"Location_B", "not-a-number"},
		[]interface{}{"Location_C", nil},
	)
	insight := e.Analyze("colleagues by location", rs)
	if insight.Highlights == nil || insight.Highlights.Total != 12 {
		t.Fatalf("expected only the parsable cell to count, got %+v", insight.Highlights)
	}
}
