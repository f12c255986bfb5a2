package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/workforce-tools/tasq/internal/query"
)

// Prediction is the outcome of the one-step statistical look-ahead. The
// forecast is a plain linear extrapolation (mean + slope), deliberately
// nothing fancier.
type Prediction struct {
	Column        string  `json:"column"`
	Trend         string  `json:"trend"`
	RelativeTrend float64 `json:"relative_trend"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"std_dev"`
	Forecast      float64 `json:"forecast"`
	Risk          string  `json:"risk"`
}

// Trend labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// augmentWithPrediction appends trend, risk and forecast findings when the
// result looks like a time series. A nil prediction (no time column, empty
// series, zero mean) leaves the insight untouched.
func (e *Engine) augmentWithPrediction(insight *Insight, rs *query.ResultSet) {
	p := e.Predict(rs)
	if p == nil {
		return
	}

	insight.Findings = append(insight.Findings,
		Finding{
			Type:         FindingTrend,
			Message:      fmt.Sprintf("%s trend is %s", prettyColumn(p.Column), p.Trend),
			Significance: 0.6,
		},
		Finding{
			Type:         riskFindingType(p.Risk),
			Message:      fmt.Sprintf("Projected risk level: %s", p.Risk),
			Significance: 0.7,
		},
		Finding{
			Type:         FindingHighlight,
			Message:      fmt.Sprintf("Next period forecast: %.1f", p.Forecast),
			Significance: 0.5,
		},
	)

	if insight.Highlights == nil {
		insight.Highlights = &Highlights{}
	}
	insight.Highlights.Trend = p.Trend
	insight.Highlights.Average = p.Mean

	if p.Risk == RiskHigh {
		insight.Recommendations = append([]string{"Values are trending into high risk; investigate recent changes"}, insight.Recommendations...)
	}
}

// Predict computes trend, risk and forecast over the first series-like numeric
// column. It returns nil when the result has no date/time-named column, the
// series is empty, or the mean is zero; division never panics here.
func (e *Engine) Predict(rs *query.ResultSet) *Prediction {
	if rs.Empty() || !hasTimeSeries(rs) {
		return nil
	}

	col := seriesColumn(rs)
	if col < 0 {
		return nil
	}
	values := columnNumbers(rs, col)
	if len(values) < 2 {
		return nil
	}

	mean := sum(values) / float64(len(values))
	if mean == 0 {
		return nil
	}

	slope := regressionSlope(values)
	relative := slope / mean

	trend := TrendStable
	switch {
	case relative > e.cfg.TrendEpsilon:
		trend = TrendIncreasing
	case relative < -e.cfg.TrendEpsilon:
		trend = TrendDecreasing
	}

	stdDev := standardDeviation(values, mean)

	return &Prediction{
		Column:        rs.Columns[col],
		Trend:         trend,
		RelativeTrend: relative,
		Mean:          mean,
		StdDev:        stdDev,
		Forecast:      mean + slope,
		Risk:          e.riskLevel(mean, stdDev, relative),
	}
}

// riskLevel scores three axes 0-2 points each: base magnitude, coefficient of
// variation, and trend strength. The cut-offs are configured heuristics.
func (e *Engine) riskLevel(mean, stdDev, relativeTrend float64) string {
	score := 0

	m := math.Abs(mean)
	switch {
	case m > e.cfg.HighMean:
		score += 2
	case m > e.cfg.ModerateMean:
		score += 1
	}

	cv := stdDev / m
	switch {
	case cv > e.cfg.HighVariation:
		score += 2
	case cv > e.cfg.ModerateVariation:
		score += 1
	}

	switch {
	case relativeTrend > e.cfg.StrongTrend:
		score += 2
	case relativeTrend > e.cfg.TrendEpsilon:
		score += 1
	}

	switch {
	case score >= e.cfg.HighRiskScore:
		return RiskHigh
	case score >= e.cfg.MediumRiskScore:
		return RiskMedium
	default:
		return RiskLow
	}
}

// regressionSlope fits y = a + b*x with x as the row index and returns b.
func regressionSlope(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func standardDeviation(values []float64, mean float64) float64 {
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// hasTimeSeries reports whether any column name suggests a time axis.
func hasTimeSeries(rs *query.ResultSet) bool {
	return rs.ColumnIndex("date", "time", "period", "hour", "day") >= 0
}

// seriesColumn picks the value column to predict over: count/total named
// columns first, then the first numeric column that is not the time axis.
func seriesColumn(rs *query.ResultSet) int {
	if i := rs.ColumnIndex("total_", "_count", "count"); i >= 0 && len(columnNumbers(rs, i)) > 0 {
		return i
	}
	timeCol := rs.ColumnIndex("date", "time", "period", "hour", "day")
	for i := range rs.Columns {
		if i == timeCol {
			continue
		}
		if len(columnNumbers(rs, i)) > 0 {
			return i
		}
	}
	return -1
}

func prettyColumn(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func riskFindingType(risk string) string {
	if risk == RiskHigh {
		return FindingWarning
	}
	return FindingHighlight
}
