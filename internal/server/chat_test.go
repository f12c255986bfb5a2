package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/workforce-tools/tasq/config"
	"github.com/workforce-tools/tasq/internal/cache"
	"github.com/workforce-tools/tasq/internal/charts"
	"github.com/workforce-tools/tasq/internal/chat"
	"github.com/workforce-tools/tasq/internal/conversation"
	"github.com/workforce-tools/tasq/internal/insights"
	"github.com/workforce-tools/tasq/internal/nlq"
	"github.com/workforce-tools/tasq/internal/query"
	"github.com/workforce-tools/tasq/internal/registry"
)

func newTestHandler(t *testing.T) (*ChatHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	convCfg := config.ConversationConfig{HistorySize: 5, SessionTimeout: 30 * time.Minute, ContextTurns: 3}
	analytics := config.AnalyticsConfig{
		TrendEpsilon: 0.05, StrongTrend: 0.1,
		HighMean: 10, ModerateMean: 5,
		HighVariation: 0.5, ModerateVariation: 0.3,
		HighRiskScore: 4, MediumRiskScore: 2,
		UnderstaffedBelow: 3, HighVolumeWarnLine: 100,
	}
	reg := registry.Default()
	svc := chat.NewService(
		convCfg,
		conversation.NewStore(convCfg.HistorySize, convCfg.SessionTimeout),
		nlq.New(reg, nil),
		query.NewExecutor(db),
		insights.NewEngine(analytics),
		charts.NewProjector(reg),
		cache.New(config.CacheConfig{Enabled: false}),
	)
	return &ChatHandler{Service: svc}, mock
}

func postMessage(t *testing.T, h *ChatHandler, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.message(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, out
}

func TestMessageEndpoint(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery("SELECT tenant_id").WillReturnRows(
		sqlmock.NewRows([]string{"tenant_id", "tenant_name", "tenant_code", "onboarded_date_time_utc"}).
			AddRow("t1", "Tenant_A", "TA", "2025-01-01").
			AddRow("t2", "Tenant_B", "TB", "2025-03-01"))

	rec, out := postMessage(t, h, `{"message":"show me active tenants"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if out["session_id"] == "" {
		t.Fatal("expected a session id")
	}
	if out["category"] != "active tenants" {
		t.Fatalf("unexpected category %v", out["category"])
	}
	if _, ok := out["insight"].(map[string]interface{}); !ok {
		t.Fatalf("expected insight object, got %T", out["insight"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMessageEndpointRequiresMessage(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.message(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHistoryAndClearEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)

	// Unknown utterance still records turns without touching the database.
	_, out := postMessage(t, h, `{"message":"sing me a song"}`)
	sessionID, _ := out["session_id"].(string)
	if sessionID == "" {
		t.Fatal("expected session id")
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)
	if err := h.history(c); err != nil {
		t.Fatalf("history error: %v", err)
	}
	var hist struct {
		Turns []json.RawMessage `json:"turns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(hist.Turns))
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)
	if err := h.clear(c); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/suggestions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.suggestions(c); err != nil {
		t.Fatalf("suggestions error: %v", err)
	}
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Suggestions) == 0 {
		t.Fatal("expected canned suggestions")
	}
}
