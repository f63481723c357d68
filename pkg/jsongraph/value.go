package jsongraph

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collections addressable by references.
const (
	InvestigationsByID = "investigationsById"
	PivotsByID         = "pivotsById"
	UsersByID          = "usersById"
)

// Ref points at an entity by collection and id. It is the only form of
// indirection in the graph.
type Ref struct {
	Collection string
	ID         string
}

// NewRef returns a reference to id inside collection.
func NewRef(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

// Path returns the graph path the reference points to.
func (r Ref) Path() Path {
	return P(r.Collection, r.ID)
}

func (r Ref) String() string {
	return fmt.Sprintf("%s['%s']", r.Collection, r.ID)
}

type sentinelJSON struct {
	Type  string `json:"$type"`
	Value any    `json:"value"`
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(sentinelJSON{Type: "ref", Value: []string{r.Collection, r.ID}})
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type  string   `json:"$type"`
		Value []string `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Type != "ref" || len(raw.Value) != 2 {
		return fmt.Errorf("not a reference: %s", string(b))
	}
	*r = Ref{Collection: raw.Value[0], ID: raw.Value[1]}
	return nil
}

// Atom wraps a complex value so it travels as a single leaf.
type Atom struct {
	Value any
}

func (a Atom) MarshalJSON() ([]byte, error) {
	return json.Marshal(sentinelJSON{Type: "atom", Value: a.Value})
}

// ErrorValue is a structured error attached to the path that produced it.
type ErrorValue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorValue) MarshalJSON() ([]byte, error) {
	type plain ErrorValue
	return json.Marshal(sentinelJSON{Type: "error", Value: plain(e)})
}

// PathValue asserts that a concrete path resolves to a value.
type PathValue struct {
	Path  Path `json:"path"`
	Value any  `json:"value"`
}

// Invalidation tells clients to discard whatever they cached under a path.
// The path may contain ranges; they are kept as ranges on the wire.
type Invalidation struct {
	Path Path `json:"path"`
}

func (i Invalidation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path        Path `json:"path"`
		Invalidated bool `json:"invalidated"`
	}{Path: i.Path, Invalidated: true})
}

// NewPathValue pairs a path with a value.
func NewPathValue(path Path, value any) PathValue {
	return PathValue{Path: path, Value: value}
}

// NewInvalidation marks a path pattern as stale.
func NewInvalidation(path Path) Invalidation {
	return Invalidation{Path: path}
}

// Response is the result of a query or a call.
type Response struct {
	Values        []PathValue    `json:"values"`
	Invalidations []Invalidation `json:"invalidations"`
}

// Add appends path values.
func (r *Response) Add(values ...PathValue) {
	r.Values = append(r.Values, values...)
}

// Set appends one path value built from literals.
func (r *Response) Set(value any, parts ...any) {
	r.Values = append(r.Values, NewPathValue(P(parts...), value))
}

// Invalidate appends invalidations.
func (r *Response) Invalidate(paths ...Path) {
	for _, p := range paths {
		r.Invalidations = append(r.Invalidations, NewInvalidation(p))
	}
}

// Merge appends everything from other.
func (r *Response) Merge(other Response) {
	r.Values = append(r.Values, other.Values...)
	r.Invalidations = append(r.Invalidations, other.Invalidations...)
}

// Normalize rewrites every value so the leaves are scalars, references,
// atoms or errors.
func (r *Response) Normalize() {
	for i := range r.Values {
		r.Values[i].Value = Normalize(r.Values[i].Value)
	}
}

// Normalize returns v unchanged when it is already a protocol leaf and
// wraps it into an Atom otherwise.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case Ref, Atom, ErrorValue:
		return v
	case *Ref:
		if t == nil {
			return nil
		}
		return *t
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return t.UnixMilli()
	default:
		return Atom{Value: v}
	}
}

// MarshalJSON writes empty lists instead of null.
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	p := plain(r)
	if p.Values == nil {
		p.Values = []PathValue{}
	}
	if p.Invalidations == nil {
		p.Invalidations = []Invalidation{}
	}
	return json.Marshal(p)
}
