package jsongraph

import (
	"encoding/json"
	"fmt"
	"math"
)

// Range is an inclusive span of list indices. It exists to keep requests for
// consecutive indices small: [0, 1, 2, 10, 11] travels as
// [{from: 0, to: 2}, {from: 10, to: 11}].
type Range struct {
	From Key
	To   Key
}

// NewRange builds the inclusive range [from, to].
func NewRange(from, to int) Range {
	return Range{From: Index(from), To: Index(to)}
}

// Bounds returns the numeric bounds of the range.
func (r Range) Bounds() (int, int, error) {
	from, ok := r.From.Int()
	if !ok {
		return 0, 0, &InvalidRangeError{Range: r, Reason: fmt.Sprintf("non-numeric lower bound %q", r.From.String())}
	}
	to, ok := r.To.Int()
	if !ok {
		return 0, 0, &InvalidRangeError{Range: r, Reason: fmt.Sprintf("non-numeric upper bound %q", r.To.String())}
	}
	return from, to, nil
}

// MaxRangeSpan caps how many indices a range may expand to when no list
// length bounds it.
const MaxRangeSpan = 1 << 16

// Indices expands the range to to-from+1 ascending indices. A range whose
// upper bound is below its lower bound is empty.
func (r Range) Indices() ([]int, error) {
	return r.indices(-1)
}

// IndicesWithin expands the range clamped to the positions of a list of
// length n, so a huge upper bound costs nothing.
func (r Range) IndicesWithin(n int) ([]int, error) {
	return r.indices(max(n, 0))
}

func (r Range) indices(limit int) ([]int, error) {
	from, to, err := r.Bounds()
	if err != nil {
		return nil, err
	}
	if limit >= 0 {
		from = max(from, 0)
		to = min(to, limit-1)
	}
	if to < from {
		return nil, nil
	}
	if from < 0 && to > math.MaxInt+from {
		return nil, &InvalidRangeError{Range: r, Reason: "span overflows"}
	}
	if to-from >= MaxRangeSpan {
		return nil, &InvalidRangeError{Range: r, Reason: fmt.Sprintf("spans more than %d indices", MaxRangeSpan)}
	}
	span := to - from
	out := make([]int, 0, span+1)
	for off := 0; off <= span; off++ {
		out = append(out, from+off)
	}
	return out, nil
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.From.String(), r.To.String())
}

type rangeJSON struct {
	From   *Key `json:"from,omitempty"`
	To     *Key `json:"to,omitempty"`
	Length *Key `json:"length,omitempty"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	from, to := r.From, r.To
	return json.Marshal(rangeJSON{From: &from, To: &to})
}

// UnmarshalJSON accepts {from, to} and {from, length}. A missing lower bound
// means 0 and a missing upper bound means a single index.
func (r *Range) UnmarshalJSON(b []byte) error {
	var raw rangeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	from := Index(0)
	if raw.From != nil {
		from = *raw.From
	}
	to := from
	switch {
	case raw.To != nil:
		to = *raw.To
	case raw.Length != nil:
		f, okFrom := from.Int()
		n, okLen := raw.Length.Int()
		if !okFrom || !okLen {
			to = *raw.Length
			break
		}
		if (n > 0 && f > math.MaxInt-(n-1)) || (n <= 0 && f < math.MinInt-(n-1)) {
			return &InvalidRangeError{
				Range:  Range{From: from, To: *raw.Length},
				Reason: fmt.Sprintf("from %d with length %d overflows", f, n),
			}
		}
		to = Index(f + n - 1)
	}
	*r = Range{From: from, To: to}
	return nil
}

// ExpandSegment turns a segment mixing discrete keys and ranges into an
// ordered key sequence. Duplicates collapse to their first occurrence.
func ExpandSegment(seg Segment) ([]Key, error) {
	return expandSegment(seg, -1)
}

func expandSegment(seg Segment, limit int) ([]Key, error) {
	seen := make(map[string]struct{}, len(seg))
	out := make([]Key, 0, len(seg))
	add := func(k Key) {
		id := k.String()
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, k)
	}

	for _, sel := range seg {
		if sel.Range == nil {
			add(sel.Key)
			continue
		}
		indices, err := sel.Range.indices(limit)
		if err != nil {
			return nil, err
		}
		for _, i := range indices {
			add(Index(i))
		}
	}
	return out, nil
}

// ExpandIndices is ExpandSegment for numeric lists: every key must be an
// integer.
func ExpandIndices(seg Segment) ([]int, error) {
	return expandIndices(seg, -1)
}

// ExpandIndicesWithin is ExpandIndices for a list of length n: ranges are
// clamped to the list before they are expanded. Discrete keys are kept as
// requested.
func ExpandIndicesWithin(seg Segment, n int) ([]int, error) {
	return expandIndices(seg, max(n, 0))
}

func expandIndices(seg Segment, limit int) ([]int, error) {
	keys, err := expandSegment(seg, limit)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		i, ok := k.Int()
		if !ok {
			return nil, &InvalidRangeError{Range: Range{From: k, To: k}, Reason: fmt.Sprintf("key %q is not a list index", k.String())}
		}
		out = append(out, i)
	}
	return out, nil
}
