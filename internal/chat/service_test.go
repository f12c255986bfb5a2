package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/workforce-tools/tasq/config"
	"github.com/workforce-tools/tasq/internal/cache"
	"github.com/workforce-tools/tasq/internal/charts"
	"github.com/workforce-tools/tasq/internal/conversation"
	"github.com/workforce-tools/tasq/internal/insights"
	"github.com/workforce-tools/tasq/internal/nlq"
	"github.com/workforce-tools/tasq/internal/query"
	"github.com/workforce-tools/tasq/internal/registry"
)

// fakeExecutor serves canned results keyed on a substring of the SQL text.
type fakeExecutor struct {
	results map[string]*query.ResultSet
	calls   int
}

func (f *fakeExecutor) Execute(ctx context.Context, sqlText string) *query.ResultSet {
	f.calls++
	for key, rs := range f.results {
		if strings.Contains(sqlText, key) {
			rs.Query = sqlText
			return rs
		}
	}
	return &query.ResultSet{Query: sqlText, Success: false, ErrorMessage: "no fixture for query"}
}

func newTestService(exec *fakeExecutor) *Service {
	cfg := config.ConversationConfig{HistorySize: 5, SessionTimeout: 30 * time.Minute, ContextTurns: 3}
	store := conversation.NewStore(cfg.HistorySize, cfg.SessionTimeout)
	reg := registry.Default()
	analytics := config.AnalyticsConfig{
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
	return NewService(cfg, store, nlq.New(reg, nil), exec,
		insights.NewEngine(analytics), charts.NewProjector(reg),
		cache.New(config.CacheConfig{Enabled: false}))
}

func TestHandleTurnActiveTenants(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*query.ResultSet{
		"is_active = true": {
			Columns: []string{"tenant_id", "tenant_name", "tenant_code", "onboarded_date_time_utc"},
			Rows: [][]interface{}{
				{"t1", "Tenant_A", "TA", "2025-01-01"},
				{"t2", "Tenant_B", "TB", "2025-02-01"},
			},
			RowCount: 2,
			Success:  true,
		},
	}}
	svc := newTestService(exec)

	resp := svc.HandleTurn(context.Background(), "", "show me active tenants")
	if resp.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if resp.Category != "active tenants" {
		t.Fatalf("unexpected category %q", resp.Category)
	}
	if resp.Insight == nil || resp.Insight.Summary == "" {
		t.Fatal("expected an insight summary")
	}
	if !strings.Contains(resp.Message, resp.Insight.Summary) {
		t.Fatal("message should open with the insight summary")
	}

	history := svc.History(resp.SessionID)
	if len(history) != 2 {
		t.Fatalf("expected user + assistant turns, got %d", len(history))
	}
	if history[1].Role != conversation.RoleAssistant || history[1].RowCount != 2 {
		t.Fatalf("unexpected assistant turn: %+v", history[1])
	}
}

func TestHandleTurnFollowUpUsesSessionContext(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*query.ResultSet{
		"colleague_count": {
			Columns: []string{"location_name", "tenant_name", "colleague_count"},
			Rows: [][]interface{}{
				{"Location_16599b2c", "Tenant_A", int64(42)},
				{"Location_77aa01ff", "Tenant_A", int64(2)},
			},
			RowCount: 2,
			Success:  true,
		},
	}}
	svc := newTestService(exec)

	first := svc.HandleTurn(context.Background(), "", "show colleagues by location")
	if first.Insight == nil || first.Insight.Highlights == nil || first.Insight.Highlights.TopValue != "Location_16599b2c" {
		t.Fatalf("expected the top location in highlights, got %+v", first.Insight)
	}

	// The follow-up names no location; the session context must supply it.
	second := svc.HandleTurn(context.Background(), first.SessionID, "tell me more about that location")
	history := svc.History(first.SessionID)
	last := history[len(history)-1]
	if !strings.Contains(last.Prompt, "Location_16599b2c") {
		t.Fatalf("expected enhanced prompt to carry the location, got %q", last.Prompt)
	}
	if second.SessionID != first.SessionID {
		t.Fatal("follow-up must stay in the same session")
	}
}

func TestHandleTurnUnknownRendersHelp(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*query.ResultSet{}}
	svc := newTestService(exec)

	resp := svc.HandleTurn(context.Background(), "", "sing me a song")
	if resp.Category != registry.CategoryUnknown {
		t.Fatalf("unexpected category %q", resp.Category)
	}
	if exec.calls != 0 {
		t.Fatal("help path must not touch the database")
	}
	if resp.Result == nil || resp.Result.RowCount != 1 || resp.Result.Columns[0] != "message" {
		t.Fatalf("expected synthetic single-cell result, got %+v", resp.Result)
	}
	if !strings.Contains(resp.Message, "Available queries") {
		t.Fatalf("expected help text, got %q", resp.Message)
	}
	if len(resp.FollowUps) == 0 || len(resp.FollowUps) > maxFollowUps {
		t.Fatalf("unexpected follow-up count %d", len(resp.FollowUps))
	}
}

func TestHandleTurnQueryFailure(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*query.ResultSet{}}
	svc := newTestService(exec)

	resp := svc.HandleTurn(context.Background(), "", "show me active tenants")
	if !strings.Contains(resp.Message, "I couldn't run that query") {
		t.Fatalf("expected failure message, got %q", resp.Message)
	}
	history := svc.History(resp.SessionID)
	if history[len(history)-1].Role != conversation.RoleError {
		t.Fatal("failed turn should be recorded with the error role")
	}
}

func TestClearSession(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*query.ResultSet{}}
	svc := newTestService(exec)

	resp := svc.HandleTurn(context.Background(), "", "sing me a song")
	if len(svc.History(resp.SessionID)) == 0 {
		t.Fatal("expected history before clearing")
	}
	svc.ClearSession(resp.SessionID)
	if len(svc.History(resp.SessionID)) != 0 {
		t.Fatal("expected empty history after clearing")
	}
}

func TestFollowUpsDeduplicateAndCap(t *testing.T) {
	ups := followUps("exceptions by type", &insights.Insight{Highlights: &insights.Highlights{TopValue: "LATE_IN"}})
	if len(ups) > maxFollowUps {
		t.Fatalf("follow-ups exceed cap: %v", ups)
	}
	seen := map[string]bool{}
	for _, u := range ups {
		if seen[u] {
			t.Fatalf("duplicate follow-up %q", u)
		}
		seen[u] = true
	}
}
