package entity

// EntityRecord is one node extracted from search output.
type EntityRecord struct {
	Title      string         `json:"title"`
	Type       string         `json:"type"`
	Category   string         `json:"category"`
	PivotIndex int            `json:"pivot"`
	Events     []string       `json:"events,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// EntitySummary is one bucket of the per-type histogram.
type EntitySummary struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Example int    `json:"example"`
	Color   string `json:"color"`
}

type ResultSummary struct {
	Entities    []EntitySummary `json:"entities"`
	ResultCount int             `json:"resultCount"`
}
