package charts

import (
	"fmt"
	"hash/fnv"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/workforce-tools/tasq/internal/query"
	"github.com/workforce-tools/tasq/internal/registry"
)

// Projector turns query results into chart specs. Categories with a registry
// chart hint get the configured shape; anything else is auto-detected from
// the column types. A nil return means "no chart for this result".
type Projector struct {
	registry *registry.Registry
	logger   *log.Logger
}

func NewProjector(reg *registry.Registry) *Projector {
	return &Projector{
		registry: reg,
		logger:   log.New(log.Writer(), "[CHARTS] ", log.LstdFlags),
	}
}

// Project builds a chart for the given category and result, or nil when the
// result is empty or carries nothing plottable.
func (p *Projector) Project(category string, rs *query.ResultSet) *Spec {
	if rs.Empty() {
		return nil
	}
	if entry, ok := p.registry.Lookup(category); ok && entry.Chart != nil {
		hint := entry.Chart
		if len(hint.GroupBy) == 2 {
			return p.pivot(category, hint, rs)
		}
		return p.fromHint(category, hint, rs)
	}
	return p.autoDetect(category, rs)
}

func (p *Projector) fromHint(category string, hint *registry.ChartHint, rs *query.ResultSet) *Spec {
	labelCol := rs.ColumnIndex(strings.ToLower(hint.LabelColumn))
	if labelCol < 0 {
		p.logger.Printf("label column %q missing for %q, falling back to auto-detect", hint.LabelColumn, category)
		return p.autoDetect(category, rs)
	}

	labels := make([]string, len(rs.Rows))
	for i := range rs.Rows {
		labels[i] = cellLabel(rs.Cell(i, labelCol))
	}

	datasets := make([]Dataset, 0, len(hint.ValueColumns))
	for _, name := range hint.ValueColumns {
		col := rs.ColumnIndex(strings.ToLower(name))
		if col < 0 {
			continue
		}
		datasets = append(datasets, newDataset(prettyLabel(name), columnValues(rs, col)))
	}
	if len(datasets) == 0 {
		return nil
	}
	return &Spec{Kind: hint.Kind, Title: prettyLabel(category), Labels: labels, Datasets: datasets}
}

// pivot builds a stacked chart: labels from the distinct values of
// GroupBy[0] in row order, one dataset per distinct value of GroupBy[1].
// Missing (label, group) combinations are filled with zero so every dataset
// stays aligned with the label axis.
func (p *Projector) pivot(category string, hint *registry.ChartHint, rs *query.ResultSet) *Spec {
	labelCol := rs.ColumnIndex(strings.ToLower(hint.GroupBy[0]))
	groupCol := rs.ColumnIndex(strings.ToLower(hint.GroupBy[1]))
	valueCol := -1
	if len(hint.ValueColumns) > 0 {
		valueCol = rs.ColumnIndex(strings.ToLower(hint.ValueColumns[0]))
	}
	if labelCol < 0 || groupCol < 0 || valueCol < 0 {
		return p.autoDetect(category, rs)
	}

	var labels []string
	labelIdx := map[string]int{}
	groups := map[string][]float64{}
	var groupOrder []string

	for i := range rs.Rows {
		label := cellLabel(rs.Cell(i, labelCol))
		if _, ok := labelIdx[label]; !ok {
			labelIdx[label] = len(labels)
			labels = append(labels, label)
		}
	}
	for i := range rs.Rows {
		group := cellLabel(rs.Cell(i, groupCol))
		if _, ok := groups[group]; !ok {
			groups[group] = make([]float64, len(labels))
			groupOrder = append(groupOrder, group)
		}
		v, _ := numericCell(rs.Cell(i, valueCol))
		groups[group][labelIdx[cellLabel(rs.Cell(i, labelCol))]] += v
	}
	sort.Strings(groupOrder)

	datasets := make([]Dataset, 0, len(groupOrder))
	for _, g := range groupOrder {
		datasets = append(datasets, newDataset(g, groups[g]))
	}
	return &Spec{Kind: hint.Kind, Title: prettyLabel(category), Labels: labels, Datasets: datasets}
}

// autoDetect uses the first non-numeric column as the label axis and every
// numeric column as a dataset. Results with no numeric column get no chart.
func (p *Projector) autoDetect(category string, rs *query.ResultSet) *Spec {
	if len(rs.Columns) < 2 {
		return nil
	}
	labelCol := -1
	var valueCols []int
	for c := range rs.Columns {
		if columnNumeric(rs, c) {
			valueCols = append(valueCols, c)
		} else if labelCol < 0 {
			labelCol = c
		}
	}
	if labelCol < 0 || len(valueCols) == 0 {
		return nil
	}

	labels := make([]string, len(rs.Rows))
	for i := range rs.Rows {
		labels[i] = cellLabel(rs.Cell(i, labelCol))
	}
	datasets := make([]Dataset, 0, len(valueCols))
	for _, c := range valueCols {
		datasets = append(datasets, newDataset(prettyLabel(rs.Columns[c]), columnValues(rs, c)))
	}
	return &Spec{Kind: registry.ChartBar, Title: prettyLabel(category), Labels: labels, Datasets: datasets}
}

func newDataset(label string, values []float64) Dataset {
	border := colorFor(label)
	return Dataset{
		Label:           label,
		Values:          values,
		BorderColor:     border,
		BackgroundColor: border + "33",
		BorderWidth:     2,
	}
}

// colorFor derives a stable color from the dataset label. Channels are kept
// in 100..255 so series stay readable on a white background.
func colorFor(label string) string {
	h := fnv.New32a()
	h.Write([]byte(label))
	seed := h.Sum32()
	r := 100 + (seed>>16)%156
	g := 100 + (seed>>8)%156
	b := 100 + seed%156
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// columnValues returns one value per row, coercing what it can and filling
// the rest with zero so datasets stay aligned with the label axis.
func columnValues(rs *query.ResultSet, col int) []float64 {
	out := make([]float64, len(rs.Rows))
	for i := range rs.Rows {
		if v, ok := numericCell(rs.Cell(i, col)); ok {
			out[i] = v
		}
	}
	return out
}

func columnNumeric(rs *query.ResultSet, col int) bool {
	seen := false
	for i := range rs.Rows {
		v := rs.Cell(i, col)
		if v == nil {
			continue
		}
		if _, ok := numericCell(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func numericCell(v interface{}) (float64, bool) {
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

func cellLabel(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// prettyLabel turns snake_case column names and category phrases into
// human-readable labels.
func prettyLabel(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
