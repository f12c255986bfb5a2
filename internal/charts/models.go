package charts

// Dataset is one named series. Values always has exactly one entry per
// chart label; pivoted charts fill gaps with zero.
type Dataset struct {
	Label           string    `json:"label"`
	Values          []float64 `json:"values"`
	BackgroundColor string    `json:"background_color"`
	BorderColor     string    `json:"border_color"`
	BorderWidth     int       `json:"border_width"`
}

// Spec is a renderer-agnostic chart description: a kind, an ordered label
// axis and one or more aligned datasets.
type Spec struct {
	Kind     string    `json:"kind"`
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}
