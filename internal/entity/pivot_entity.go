package entity

import (
	"encoding/json"
)

// PivotField is one named entry of a pivot.
type PivotField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// PivotFields is an ordered list of named entries, addressable by name and
// by position.
type PivotFields struct {
	entries []PivotField
}

func NewPivotFields(entries ...PivotField) PivotFields {
	out := PivotFields{entries: make([]PivotField, 0, len(entries))}
	for _, e := range entries {
		out.Set(e.Name, e.Value)
	}
	return out
}

func (f PivotFields) Len() int {
	return len(f.entries)
}

func (f PivotFields) At(i int) (PivotField, bool) {
	if i < 0 || i >= len(f.entries) {
		return PivotField{}, false
	}
	return f.entries[i], true
}

func (f PivotFields) Get(name string) (any, bool) {
	for _, e := range f.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing entry or appends a new one.
func (f *PivotFields) Set(name string, value any) {
	for i := range f.entries {
		if f.entries[i].Name == name {
			f.entries[i].Value = value
			return
		}
	}
	f.entries = append(f.entries, PivotField{Name: name, Value: value})
}

// Map flattens the entries into a name to value mapping.
func (f PivotFields) Map() map[string]any {
	out := make(map[string]any, len(f.entries))
	for _, e := range f.entries {
		out[e.Name] = e.Value
	}
	return out
}

func (f PivotFields) Entries() []PivotField {
	out := make([]PivotField, len(f.entries))
	copy(out, f.entries)
	return out
}

// Clone deep-copies the entries so the copy shares no mutable state.
func (f PivotFields) Clone() PivotFields {
	out := PivotFields{entries: make([]PivotField, len(f.entries))}
	for i, e := range f.entries {
		out.entries[i] = PivotField{Name: e.Name, Value: cloneValue(e.Value)}
	}
	return out
}

func (f PivotFields) MarshalJSON() ([]byte, error) {
	if f.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f.entries)
}

func (f *PivotFields) UnmarshalJSON(b []byte) error {
	var entries []PivotField
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	*f = NewPivotFields(entries...)
	return nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// Field names every pivot understands.
const (
	FieldMode   = "Mode"
	FieldSearch = "Search"
	FieldLinks  = "Links"
	FieldTime   = "Time"
)

type Pivot struct {
	ID            string
	Fields        PivotFields
	Enabled       bool
	ResultCount   int
	Results       []EntityRecord
	ResultSummary *ResultSummary
}

// NewPivot returns an empty pivot with a fresh id.
func NewPivot(fields ...PivotField) *Pivot {
	return &Pivot{ID: NewID(), Fields: NewPivotFields(fields...)}
}

// Mode is the template family the pivot searches with.
func (p *Pivot) Mode() string {
	v, ok := p.Fields.Get(FieldMode)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Clone copies the field values under a new id. Search output is not
// carried over.
func (p *Pivot) Clone() *Pivot {
	return &Pivot{
		ID:     NewID(),
		Fields: p.Fields.Clone(),
	}
}
