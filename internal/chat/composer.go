package chat

import (
	"fmt"
	"strings"

	"github.com/workforce-tools/tasq/internal/charts"
	"github.com/workforce-tools/tasq/internal/insights"
	"github.com/workforce-tools/tasq/internal/query"
	"github.com/workforce-tools/tasq/internal/registry"
)

const maxFollowUps = 5

// Suggestions is the canned starter list shown to a fresh session.
var Suggestions = []string{
	"Show me active tenants",
	"Show colleagues by location",
	"What are the exceptions by type?",
	"Show daily exceptions",
	"Give me a tenant overview",
	"Show shift patterns",
	"Show exception status distribution",
	"Who are the top 5 colleagues generating exceptions?",
}

// composeMessage renders the conversational answer: summary, key findings,
// an optional chart note and recommendations. Failed queries collapse to a
// single apology line.
func composeMessage(rs *query.ResultSet, insight *insights.Insight, chart *charts.Spec) string {
	if rs != nil && !rs.Success {
		var b strings.Builder
		b.WriteString("I couldn't run that query: ")
		b.WriteString(rs.ErrorMessage)
		b.WriteString("\n\nTry one of the suggested questions, or rephrase.")
		return b.String()
	}

	var b strings.Builder
	b.WriteString(insight.Summary)

	if len(insight.Findings) > 0 {
		b.WriteString("\n\n📊 Key Findings:")
		for _, f := range insight.Findings {
			b.WriteString("\n• ")
			b.WriteString(f.Message)
		}
	}

	if chart != nil {
		fmt.Fprintf(&b, "\n\n📈 A %s chart has been generated to visualize this data.", chart.Kind)
	}

	if len(insight.Recommendations) > 0 {
		b.WriteString("\n\n💡 Recommendations:")
		for _, r := range dedupCap(insight.Recommendations) {
			b.WriteString("\n• ")
			b.WriteString(r)
		}
	}
	return b.String()
}

// followUps proposes the next questions: the insight's actionable
// recommendations first (process advice like "monitor"/"review" lines is
// skipped), then topic-specific canned questions, deduplicated and capped.
func followUps(category string, insight *insights.Insight) []string {
	var out []string
	seen := map[string]bool{}
	add := func(qs ...string) {
		for _, q := range qs {
			if len(out) >= maxFollowUps || seen[q] {
				continue
			}
			seen[q] = true
			out = append(out, q)
		}
	}

	if insight != nil {
		for _, rec := range insight.Recommendations {
			lower := strings.ToLower(rec)
			if strings.Contains(lower, "monitor") || strings.Contains(lower, "review") {
				continue
			}
			add(rec)
		}
	}

	switch {
	case strings.Contains(category, "tenant"):
		add("Show colleagues by location", "What are the exceptions by type?", "Give me a tenant overview")
	case strings.Contains(category, "exception"):
		add("Show daily exceptions", "Who are the top 5 colleagues generating exceptions?", "Show exception status distribution")
	case strings.Contains(category, "colleague"):
		add("Show shift patterns", "What are the exceptions by type?", "Show colleague activity")
	case category == registry.CategoryUnknown:
		add(Suggestions...)
		return out
	}

	if insight != nil && insight.Highlights != nil && insight.Highlights.TopValue != "" {
		add("Tell me more about " + insight.Highlights.TopValue)
	}
	add("Show me active tenants", "Show daily exceptions")
	return out
}

// dedupCap keeps the first occurrence of each line, at most maxFollowUps.
func dedupCap(lines []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, l := range lines {
		if len(out) >= maxFollowUps || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
