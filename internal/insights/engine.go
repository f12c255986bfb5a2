package insights

import (
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/workforce-tools/tasq/config"
	"github.com/workforce-tools/tasq/internal/query"
)

// strategy turns one category's rows into findings and a summary. Every
// strategy is a pure function over the result set.
type strategy func(*query.ResultSet) Insight

// Engine derives an Insight from a categorized result set: a flat dispatch
// table of per-category strategies, then a predictive pass for anything that
// looks like a time series.
type Engine struct {
	cfg        config.AnalyticsConfig
	logger     *log.Logger
	strategies map[string]strategy
}

// NewEngine builds an engine with the configured thresholds.
func NewEngine(cfg config.AnalyticsConfig) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: log.New(log.Writer(), "[INSIGHT] ", log.LstdFlags),
	}
	e.strategies = map[string]strategy{
		"active tenants":                e.tenantListInsights,
		"all tenants":                   e.tenantListInsights,
		"colleagues by location":        e.colleagueLocationInsights,
		"exceptions by type":            e.exceptionTypeInsights,
		"daily exceptions":              e.dailyExceptionInsights,
		"tenant overview":               e.tenantOverviewInsights,
		"shift patterns":                e.shiftPatternInsights,
		"exception status distribution": e.exceptionStatusInsights,
	}
	return e
}

// Analyze dispatches on category and augments the outcome with predictive
// statistics. Empty or failed results produce the fixed no-data insight.
func (e *Engine) Analyze(category string, rs *query.ResultSet) *Insight {
	if rs.Empty() {
		return &Insight{
			Summary:         "No data found for your query.",
			Findings:        []Finding{},
			Recommendations: defaultSuggestions(),
		}
	}

	var insight Insight
	if fn, ok := e.strategies[category]; ok {
		insight = fn(rs)
	} else {
		insight = e.genericInsights(rs)
	}

	e.augmentWithPrediction(&insight, rs)

	sort.SliceStable(insight.Findings, func(i, j int) bool {
		return insight.Findings[i].Significance > insight.Findings[j].Significance
	})
	return &insight
}

func (e *Engine) genericInsights(rs *query.ResultSet) Insight {
	return Insight{
		Summary: fmt.Sprintf("Your query returned %d results.", rs.RowCount),
		Findings: []Finding{{
			Type:         FindingHighlight,
			Message:      fmt.Sprintf("Found %d records", rs.RowCount),
			Significance: 0.5,
		}},
		Recommendations: defaultSuggestions(),
	}
}

func defaultSuggestions() []string {
	return []string{
		"Show tenant overview",
		"Show exceptions by type",
		"Show colleagues by location",
	}
}

// cellNumber coerces one cell to float64: numbers directly, numeric strings
// via parsing. Anything else is skipped rather than aborting the analysis.
func cellNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func cellBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "t"
	default:
		return false
	}
}

// columnNumbers collects the numeric cells of one column, skipping anything
// that does not coerce.
func columnNumbers(rs *query.ResultSet, col int) []float64 {
	if col < 0 {
		return nil
	}
	out := make([]float64, 0, len(rs.Rows))
	for i := range rs.Rows {
		if f, ok := cellNumber(rs.Cell(i, col)); ok {
			out = append(out, f)
		}
	}
	return out
}

// maxRow returns the index of the row with the largest value in col, or -1.
func maxRow(rs *query.ResultSet, col int) int {
	best, bestVal := -1, 0.0
	for i := range rs.Rows {
		if f, ok := cellNumber(rs.Cell(i, col)); ok {
			if best < 0 || f > bestVal {
				best, bestVal = i, f
			}
		}
	}
	return best
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
