package jsongraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Selector is one element of a segment: either a key or a range.
type Selector struct {
	Key   Key
	Range *Range
}

// Segment is one step of a path. A single key addresses one child; several
// keys and ranges address many children at once.
type Segment []Selector

// Path is a sequence of segments. A path whose segments each hold a single
// key is concrete.
type Path []Segment

// KeySegment builds a segment of plain keys.
func KeySegment(keys ...Key) Segment {
	seg := make(Segment, len(keys))
	for i, k := range keys {
		seg[i] = Selector{Key: k}
	}
	return seg
}

// RangeSegment builds a segment of ranges.
func RangeSegment(ranges ...Range) Segment {
	seg := make(Segment, len(ranges))
	for i := range ranges {
		r := ranges[i]
		seg[i] = Selector{Range: &r}
	}
	return seg
}

// P builds a path from literals. Strings and ints become keys, Range and
// []Range become range segments, []string and []any become key sets, and
// Segment values are used as is.
func P(parts ...any) Path {
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		switch t := part.(type) {
		case Segment:
			path = append(path, t)
		case Range:
			path = append(path, RangeSegment(t))
		case []Range:
			path = append(path, RangeSegment(t...))
		case []string:
			keys := make([]Key, len(t))
			for i, s := range t {
				keys[i] = Name(s)
			}
			path = append(path, KeySegment(keys...))
		case []any:
			seg := make(Segment, 0, len(t))
			for _, item := range t {
				if r, ok := item.(Range); ok {
					rr := r
					seg = append(seg, Selector{Range: &rr})
					continue
				}
				k, err := KeyOf(item)
				if err != nil {
					panic(fmt.Sprintf("jsongraph.P: %v", err))
				}
				seg = append(seg, Selector{Key: k})
			}
			path = append(path, seg)
		default:
			k, err := KeyOf(part)
			if err != nil {
				panic(fmt.Sprintf("jsongraph.P: %v", err))
			}
			path = append(path, KeySegment(k))
		}
	}
	return path
}

// Single returns the key of a one-key segment.
func (s Segment) Single() (Key, bool) {
	if len(s) != 1 || s[0].Range != nil {
		return Key{}, false
	}
	return s[0].Key, true
}

// HasRanges reports whether the segment holds at least one range.
func (s Segment) HasRanges() bool {
	for _, sel := range s {
		if sel.Range != nil {
			return true
		}
	}
	return false
}

// Keys returns the plain keys of the segment, skipping ranges.
func (s Segment) Keys() []Key {
	keys := make([]Key, 0, len(s))
	for _, sel := range s {
		if sel.Range == nil {
			keys = append(keys, sel.Key)
		}
	}
	return keys
}

func (s Segment) String() string {
	if k, ok := s.Single(); ok {
		return k.String()
	}
	parts := make([]string, len(s))
	for i, sel := range s {
		if sel.Range != nil {
			parts[i] = sel.Range.String()
		} else {
			parts[i] = sel.Key.String()
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (s Segment) MarshalJSON() ([]byte, error) {
	if k, ok := s.Single(); ok {
		return json.Marshal(k)
	}
	items := make([]any, len(s))
	for i, sel := range s {
		if sel.Range != nil {
			items[i] = *sel.Range
		} else {
			items[i] = sel.Key
		}
	}
	return json.Marshal(items)
}

// UnmarshalJSON accepts a literal, a range object, or a list of literals and
// range objects.
func (s *Segment) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty path segment")
	}
	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		seg := make(Segment, 0, len(items))
		for _, item := range items {
			sel, err := decodeSelector(item)
			if err != nil {
				return err
			}
			seg = append(seg, sel)
		}
		*s = seg
		return nil
	default:
		sel, err := decodeSelector(b)
		if err != nil {
			return err
		}
		*s = Segment{sel}
		return nil
	}
}

func decodeSelector(b []byte) (Selector, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var r Range
		if err := json.Unmarshal(b, &r); err != nil {
			return Selector{}, err
		}
		return Selector{Range: &r}, nil
	}
	var k Key
	if err := json.Unmarshal(b, &k); err != nil {
		return Selector{}, err
	}
	return Selector{Key: k}, nil
}

// Concrete returns the keys of a path whose segments are all single keys.
func (p Path) Concrete() ([]Key, bool) {
	keys := make([]Key, len(p))
	for i, seg := range p {
		k, ok := seg.Single()
		if !ok {
			return nil, false
		}
		keys[i] = k
	}
	return keys, true
}

// Append returns a new path with the given literals added.
func (p Path) Append(parts ...any) Path {
	out := make(Path, 0, len(p)+len(parts))
	out = append(out, p...)
	return append(out, P(parts...)...)
}

// Concat returns a new path made of p followed by rest.
func (p Path) Concat(rest Path) Path {
	out := make(Path, 0, len(p)+len(rest))
	out = append(out, p...)
	return append(out, rest...)
}

func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		if k, ok := seg.Single(); ok && !k.IsIndex() {
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(k.String())
			continue
		}
		if k, ok := seg.Single(); ok {
			sb.WriteString("[" + k.String() + "]")
			continue
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}
