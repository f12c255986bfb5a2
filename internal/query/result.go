package query

import (
	"strings"
	"time"
)

// ResultSet is the tabular outcome of one executed query. Columns are ordered
// and unique; every row has one cell per column. Consumers treat it read-only.
type ResultSet struct {
	Query        string          `json:"query"`
	Columns      []string        `json:"columns"`
	Rows         [][]interface{} `json:"rows"`
	RowCount     int             `json:"row_count"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Duration     time.Duration   `json:"execution_time"`
}

// Empty reports whether the result carries no usable rows.
func (r *ResultSet) Empty() bool {
	return r == nil || !r.Success || len(r.Rows) == 0
}

// ColumnIndex returns the position of the first column whose lowercase name
// contains any of the given fragments, or -1.
func (r *ResultSet) ColumnIndex(fragments ...string) int {
	for i, col := range r.Columns {
		lc := strings.ToLower(col)
		for _, f := range fragments {
			if strings.Contains(lc, f) {
				return i
			}
		}
	}
	return -1
}

// Cell returns row[col] or nil when out of range.
func (r *ResultSet) Cell(row, col int) interface{} {
	if row < 0 || row >= len(r.Rows) {
		return nil
	}
	cells := r.Rows[row]
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}
