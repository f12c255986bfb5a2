package insights

// Finding types, in rough order of how alarming they are.
const (
	FindingHighlight = "HIGHLIGHT"
	FindingTrend     = "TREND"
	FindingAnomaly   = "ANOMALY"
	FindingWarning   = "WARNING"
)

// Risk levels produced by the predictive layer.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Finding is one discrete, labeled observation extracted from a result set.
// Significance is a [0,1] display weight, never a decision input.
type Finding struct {
	Type         string  `json:"type"`
	Message      string  `json:"message"`
	Value        string  `json:"value,omitempty"`
	Significance float64 `json:"significance"`
}

// Highlights is the headline block of an insight.
type Highlights struct {
	TopValue string  `json:"top_value,omitempty"`
	Total    int64   `json:"total,omitempty"`
	Average  float64 `json:"average,omitempty"`
	Trend    string  `json:"trend,omitempty"`
}

// Insight is the analytical companion of one answered query.
type Insight struct {
	Summary         string      `json:"summary"`
	Findings        []Finding   `json:"findings"`
	Recommendations []string    `json:"recommendations,omitempty"`
	Highlights      *Highlights `json:"highlights,omitempty"`
}
