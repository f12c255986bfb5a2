package registry

import (
	"sort"
	"strings"
)

// Chart kinds understood by the projector.
const (
	ChartBar        = "bar"
	ChartLine       = "line"
	ChartDonut      = "donut"
	ChartStackedBar = "stacked-bar"
)

// ChartHint tells the projector how to turn a category's rows into a chart
// without auto-detection. A two-element GroupBy requests a pivoted chart:
// labels from distinct values of GroupBy[0], one dataset per distinct value
// of GroupBy[1].
type ChartHint struct {
	Kind         string
	ValueColumns []string
	LabelColumn  string
	GroupBy      []string
}

// Entry maps one canonical phrase to a fixed, fully-formed read-only query.
// Templates carry no user input, so nothing is ever interpolated into SQL.
type Entry struct {
	Phrase string
	SQL    string
	Chart  *ChartHint
}

// Registry is the immutable set of known query patterns, built once at
// startup and passed into the components that need it.
type Registry struct {
	entries []Entry
}

// New builds a registry from entries, ordered longest phrase first so that
// Match is deterministic: the longest matching phrase wins, ties broken
// lexicographically.
func New(entries []Entry) *Registry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Phrase) != len(sorted[j].Phrase) {
			return len(sorted[i].Phrase) > len(sorted[j].Phrase)
		}
		return sorted[i].Phrase < sorted[j].Phrase
	})
	return &Registry{entries: sorted}
}

// Match returns the entry whose phrase occurs in the lowercased utterance.
// When several phrases match, the longest one wins.
func (r *Registry) Match(utterance string) (Entry, bool) {
	q := strings.ToLower(utterance)
	for _, e := range r.entries {
		if strings.Contains(q, e.Phrase) {
			return e, true
		}
	}
	return Entry{}, false
}

// Lookup finds the entry for an exact category tag.
func (r *Registry) Lookup(category string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Phrase == category {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns the registry contents, longest phrase first.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
