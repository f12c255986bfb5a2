package insights

import (
	"fmt"

	"github.com/workforce-tools/tasq/internal/query"
)

// tenantListInsights covers the plain tenant listings. When the rows carry an
// is_active column the summary reports the active fraction; the same counts
// feed the findings so the two can never disagree.
func (e *Engine) tenantListInsights(rs *query.ResultSet) Insight {
	activeCol := rs.ColumnIndex("is_active")
	if activeCol < 0 {
		return Insight{
			Summary: fmt.Sprintf("Found %d tenants.", rs.RowCount),
			Findings: []Finding{{
				Type:         FindingHighlight,
				Message:      fmt.Sprintf("Found %d tenants", rs.RowCount),
				Significance: 0.5,
			}},
			Recommendations: []string{
				"Show tenant overview",
				"Show colleagues by location",
				"Show exceptions by type",
			},
		}
	}

	active := 0
	for i := range rs.Rows {
		if cellBool(rs.Cell(i, activeCol)) {
			active++
		}
	}
	inactive := rs.RowCount - active

	findings := []Finding{{
		Type:         FindingHighlight,
		Message:      fmt.Sprintf("%d of %d tenants are active", active, rs.RowCount),
		Significance: 0.8,
	}}
	if inactive > 0 {
		findings = append(findings, Finding{
			Type:         FindingWarning,
			Message:      fmt.Sprintf("%d tenants are inactive", inactive),
			Value:        fmt.Sprintf("%d", inactive),
			Significance: 0.6,
		})
	}

	return Insight{
		Summary:  fmt.Sprintf("%d of %d tenants are active.", active, rs.RowCount),
		Findings: findings,
		Recommendations: []string{
			"Show inactive tenant details",
			"Show tenant overview",
			"Show colleagues by location",
		},
	}
}

func (e *Engine) colleagueLocationInsights(rs *query.ResultSet) Insight {
	countCol := rs.ColumnIndex("colleague_count")
	nameCol := rs.ColumnIndex("location_name")

	counts := columnNumbers(rs, countCol)
	total := int64(sum(counts))

	var findings []Finding
	var topLocation string
	if top := maxRow(rs, countCol); top >= 0 {
		topLocation = cellString(rs.Cell(top, nameCol))
		findings = append(findings, Finding{
			Type:         FindingHighlight,
			Message:      fmt.Sprintf("%s has the most colleagues", topLocation),
			Value:        cellString(rs.Cell(top, countCol)),
			Significance: 0.9,
		})
	}

	understaffed := 0
	for _, c := range counts {
		if int64(c) < e.cfg.UnderstaffedBelow {
			understaffed++
		}
	}
	if understaffed > 0 {
		findings = append(findings, Finding{
			Type:         FindingWarning,
			Message:      fmt.Sprintf("%d locations have fewer than %d colleagues", understaffed, e.cfg.UnderstaffedBelow),
			Significance: 0.7,
		})
	}

	return Insight{
		Summary:  fmt.Sprintf("Found %d colleagues distributed across %d locations.", total, rs.RowCount),
		Findings: findings,
		Recommendations: []string{
			"Show colleague activity",
			"Show exceptions by type",
			"Show shift patterns",
		},
		Highlights: &Highlights{TopValue: topLocation, Total: total},
	}
}

func (e *Engine) exceptionTypeInsights(rs *query.ResultSet) Insight {
	countCol := rs.ColumnIndex("exception_count")
	typeCol := rs.ColumnIndex("exception_type")
	durationCol := rs.ColumnIndex("avg_duration")

	counts := columnNumbers(rs, countCol)
	total := int64(sum(counts))

	var findings []Finding
	var topType string
	if top := maxRow(rs, countCol); top >= 0 {
		topType = cellString(rs.Cell(top, typeCol))
		findings = append(findings, Finding{
			Type:         FindingTrend,
			Message:      fmt.Sprintf("%s is the most common exception type", topType),
			Value:        cellString(rs.Cell(top, countCol)),
			Significance: 0.8,
		})
		if avg, ok := cellNumber(rs.Cell(top, durationCol)); ok {
			findings = append(findings, Finding{
				Type:         FindingHighlight,
				Message:      fmt.Sprintf("Average duration: %.1f minutes", avg),
				Significance: 0.6,
			})
		}
	}

	recommendations := []string{
		"Show daily exceptions",
		"Show exception status distribution",
		"Show top 5 colleagues",
	}
	if float64(total) > e.cfg.HighVolumeWarnLine {
		recommendations = append([]string{"Exception volume is high; review the most common type first"}, recommendations...)
	}

	return Insight{
		Summary:         fmt.Sprintf("Analyzed %d total exceptions across %d different types.", total, rs.RowCount),
		Findings:        findings,
		Recommendations: recommendations,
		Highlights:      &Highlights{TopValue: topType, Total: total},
	}
}

func (e *Engine) dailyExceptionInsights(rs *query.ResultSet) Insight {
	totalCol := rs.ColumnIndex("total_exceptions")
	resolvedCol := rs.ColumnIndex("resolved_count")
	openCol := rs.ColumnIndex("open_count")
	dateCol := rs.ColumnIndex("exception_date", "date")

	totals := columnNumbers(rs, totalCol)
	total := int64(sum(totals))
	resolved := sum(columnNumbers(rs, resolvedCol))
	open := sum(columnNumbers(rs, openCol))

	var findings []Finding
	if resolved+open > 0 {
		rate := resolved / (resolved + open) * 100
		findings = append(findings, Finding{
			Type:         FindingHighlight,
			Message:      fmt.Sprintf("Overall resolution rate: %.1f%%", rate),
			Significance: 0.8,
		})
	}
	if peak := maxRow(rs, totalCol); peak >= 0 {
		findings = append(findings, Finding{
			Type:         FindingAnomaly,
			Message:      fmt.Sprintf("Peak exception day: %s", cellString(rs.Cell(peak, dateCol))),
			Value:        cellString(rs.Cell(peak, totalCol)),
			Significance: 0.7,
		})
	}

	return Insight{
		Summary:  fmt.Sprintf("Analyzed exception trends over %d days with %d total exceptions.", rs.RowCount, total),
		Findings: findings,
		Recommendations: []string{
			"Show exceptions by type",
			"Show exception status distribution",
			"Show top 5 colleagues",
		},
		Highlights: &Highlights{Total: total},
	}
}

func (e *Engine) tenantOverviewInsights(rs *query.ResultSet) Insight {
	activeCol := rs.ColumnIndex("is_active")
	nameCol := rs.ColumnIndex("tenant_name")
	colleagueCol := rs.ColumnIndex("colleague_count")
	shiftCol := rs.ColumnIndex("shift_count")

	active := 0
	for i := range rs.Rows {
		if cellBool(rs.Cell(i, activeCol)) {
			active++
		}
	}

	findings := []Finding{{
		Type:         FindingHighlight,
		Message:      fmt.Sprintf("%d of %d tenants are active", active, rs.RowCount),
		Significance: 0.8,
	}}

	var topTenant string
	if top := maxRow(rs, colleagueCol); top >= 0 {
		topTenant = cellString(rs.Cell(top, nameCol))
		findings = append(findings, Finding{
			Type:         FindingHighlight,
			Message:      fmt.Sprintf("%s has the most colleagues", topTenant),
			Value:        cellString(rs.Cell(top, colleagueCol)),
			Significance: 0.7,
		})
	}

	withoutShifts := 0
	for _, c := range columnNumbers(rs, shiftCol) {
		if c == 0 {
			withoutShifts++
		}
	}
	if withoutShifts > 0 {
		findings = append(findings, Finding{
			Type:         FindingWarning,
			Message:      fmt.Sprintf("%d tenants have no planned shifts", withoutShifts),
			Significance: 0.6,
		})
	}

	return Insight{
		Summary:  fmt.Sprintf("Overview of %d tenants in the system.", rs.RowCount),
		Findings: findings,
		Recommendations: []string{
			"Show inactive tenant details",
			"Show colleagues by location",
			"Show shift patterns",
		},
		Highlights: &Highlights{TopValue: topTenant},
	}
}

func (e *Engine) shiftPatternInsights(rs *query.ResultSet) Insight {
	hourCol := rs.ColumnIndex("shift_hour", "hour")
	countCol := rs.ColumnIndex("shift_count")

	counts := columnNumbers(rs, countCol)
	total := int64(sum(counts))

	var findings []Finding
	if peak := maxRow(rs, countCol); peak >= 0 {
		if hour, ok := cellNumber(rs.Cell(peak, hourCol)); ok {
			findings = append(findings, Finding{
				Type:         FindingHighlight,
				Message:      fmt.Sprintf("Most shifts start at %d:00", int(hour)),
				Value:        cellString(rs.Cell(peak, countCol)),
				Significance: 0.8,
			})
		}
	}

	return Insight{
		Summary:  fmt.Sprintf("Analyzed %d shifts across different start times.", total),
		Findings: findings,
		Recommendations: []string{
			"Show colleague activity",
			"Show daily exceptions",
			"Show tenant overview",
		},
		Highlights: &Highlights{Total: total},
	}
}

func (e *Engine) exceptionStatusInsights(rs *query.ResultSet) Insight {
	statusCol := rs.ColumnIndex("status")
	tenantCol := rs.ColumnIndex("tenant_name")
	countCol := rs.ColumnIndex("count")

	statusTotals := map[string]float64{}
	statusOrder := []string{}
	tenants := map[string]bool{}
	for i := range rs.Rows {
		status := cellString(rs.Cell(i, statusCol))
		if _, seen := statusTotals[status]; !seen {
			statusOrder = append(statusOrder, status)
		}
		if c, ok := cellNumber(rs.Cell(i, countCol)); ok {
			statusTotals[status] += c
		}
		if t := cellString(rs.Cell(i, tenantCol)); t != "" {
			tenants[t] = true
		}
	}

	total := 0.0
	for _, v := range statusTotals {
		total += v
	}

	var findings []Finding
	if total > 0 {
		for _, status := range statusOrder {
			findings = append(findings, Finding{
				Type:         FindingHighlight,
				Message:      fmt.Sprintf("%s: %.1f%% of exceptions", status, statusTotals[status]/total*100),
				Value:        fmt.Sprintf("%.0f", statusTotals[status]),
				Significance: 0.6,
			})
		}
	}

	return Insight{
		Summary:  fmt.Sprintf("Exception status breakdown across %d tenants.", len(tenants)),
		Findings: findings,
		Recommendations: []string{
			"Show daily exceptions",
			"Show exceptions by type",
			"Show tenant overview",
		},
		Highlights: &Highlights{Total: int64(total)},
	}
}
