package chat

import (
	"strings"
	"testing"

	"github.com/workforce-tools/tasq/internal/insights"
	"github.com/workforce-tools/tasq/internal/query"
)

func TestFollowUpsSeedFromRecommendations(t *testing.T) {
	insight := &insights.Insight{
		Recommendations: []string{
			"Show inactive tenant details",
			"Monitor onboarding throughput weekly",
			"Review tenant access policies",
			"Show tenant overview",
		},
	}

	ups := followUps("active tenants", insight)
	if len(ups) == 0 || ups[0] != "Show inactive tenant details" {
		t.Fatalf("expected recommendations to lead the follow-ups, got %v", ups)
	}
	for _, u := range ups {
		lower := strings.ToLower(u)
		if strings.Contains(lower, "monitor") || strings.Contains(lower, "review") {
			t.Fatalf("process advice leaked into follow-ups: %q", u)
		}
	}
	found := false
	for _, u := range ups {
		if u == "Show tenant overview" {
			found = true
		}
	}
	if !found {
		t.Fatalf("actionable recommendation missing from follow-ups: %v", ups)
	}
	if len(ups) > maxFollowUps {
		t.Fatalf("follow-ups exceed cap: %v", ups)
	}
}

func TestFollowUpsRecommendationsRespectCapAndDedup(t *testing.T) {
	insight := &insights.Insight{
		Recommendations: []string{
			"Show daily exceptions",
			"Show daily exceptions",
			"Show exceptions by type",
			"Show exception status distribution",
			"Show top 5 colleagues",
			"Show shift patterns",
			"Show colleague activity",
		},
	}

	ups := followUps("exceptions by type", insight)
	if len(ups) != maxFollowUps {
		t.Fatalf("expected exactly %d follow-ups, got %v", maxFollowUps, ups)
	}
	seen := map[string]bool{}
	for _, u := range ups {
		if seen[u] {
			t.Fatalf("duplicate follow-up %q", u)
		}
		seen[u] = true
	}
}

func TestComposeMessageRecommendationsDedupedAndCapped(t *testing.T) {
	rs := &query.ResultSet{
		Columns:  []string{"tenant_name"},
		Rows:     [][]interface{}{{"Tenant_A"}},
		RowCount: 1,
		Success:  true,
	}
	insight := &insights.Insight{
		Summary: "Found 1 tenants.",
		Recommendations: []string{
			"Show tenant overview",
			"Show tenant overview",
			"Show colleagues by location",
			"Show exceptions by type",
			"Show daily exceptions",
			"Show shift patterns",
			"Show colleague activity",
		},
	}

	msg := composeMessage(rs, insight, nil)
	if strings.Count(msg, "Show tenant overview") != 1 {
		t.Fatalf("duplicate recommendation rendered:\n%s", msg)
	}
	if strings.Count(msg, "\n• ") != maxFollowUps {
		t.Fatalf("expected %d recommendation bullets, got:\n%s", maxFollowUps, msg)
	}
}
