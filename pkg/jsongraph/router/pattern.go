package router

import (
	"strings"

	"pivot-graph-be/pkg/jsongraph"
)

type matcherKind int

const (
	matchLiteral matcherKind = iota
	matchKeys
	matchRanges
)

// Matcher accepts or rejects one path segment.
type Matcher struct {
	kind  matcherKind
	names map[string]struct{}
	order []string
	param string
}

// Literal matches a segment whose every key is one of names.
func Literal(names ...string) Matcher {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Matcher{kind: matchLiteral, names: set, order: names}
}

// Keys matches any segment and binds it to param.
func Keys(param string) Matcher {
	return Matcher{kind: matchKeys, param: param}
}

// Ranges matches a segment made only of ranges and integer keys and binds
// it to param.
func Ranges(param string) Matcher {
	return Matcher{kind: matchRanges, param: param}
}

func (m Matcher) accepts(seg jsongraph.Segment) bool {
	if len(seg) == 0 {
		return false
	}
	switch m.kind {
	case matchLiteral:
		for _, sel := range seg {
			if sel.Range != nil {
				return false
			}
			if _, ok := m.names[sel.Key.String()]; !ok {
				return false
			}
		}
		return true
	case matchRanges:
		for _, sel := range seg {
			if sel.Range != nil {
				continue
			}
			if _, ok := sel.Key.Int(); !ok {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (m Matcher) String() string {
	switch m.kind {
	case matchLiteral:
		if len(m.order) == 1 {
			return m.order[0]
		}
		return "['" + strings.Join(m.order, "','") + "']"
	case matchRanges:
		return "[{ranges:" + m.param + "}]"
	default:
		return "[{keys:" + m.param + "}]"
	}
}

// Pattern is the structural shape a route accepts.
type Pattern []Matcher

func (p Pattern) String() string {
	var sb strings.Builder
	for i, m := range p {
		s := m.String()
		if i > 0 && !strings.HasPrefix(s, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// match binds path against the pattern. With exact set the path must have the
// pattern's length; otherwise it must be strictly longer.
func (p Pattern) match(path jsongraph.Path, exact bool) (Match, bool) {
	if len(p) == 0 {
		return Match{}, false
	}
	if exact && len(path) != len(p) {
		return Match{}, false
	}
	if !exact && len(path) <= len(p) {
		return Match{}, false
	}

	params := make(map[string]jsongraph.Segment)
	for i, m := range p {
		if !m.accepts(path[i]) {
			return Match{}, false
		}
		if m.param != "" {
			params[m.param] = path[i]
		}
	}
	return Match{Path: path[:len(p)], Params: params}, true
}

// Match is a path bound to a route pattern.
type Match struct {
	Path   jsongraph.Path
	Params map[string]jsongraph.Segment
}

// Keys expands the named parameter into its ordered, de-duplicated keys.
func (m Match) Keys(param string) ([]jsongraph.Key, error) {
	return jsongraph.ExpandSegment(m.Params[param])
}

// Names returns the expanded keys of the named parameter as strings.
func (m Match) Names(param string) ([]string, error) {
	keys, err := m.Keys(param)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out, nil
}

// Indices expands the named parameter into integer list positions.
func (m Match) Indices(param string) ([]int, error) {
	return jsongraph.ExpandIndices(m.Params[param])
}

// IndicesWithin expands the named parameter against a list of length n.
// Ranges are clamped to the list first. Discrete positions past the end
// are kept and left to the caller.
func (m Match) IndicesWithin(param string, n int) ([]int, error) {
	return jsongraph.ExpandIndicesWithin(m.Params[param], n)
}

// At returns the literal keys requested at position i of the matched path.
func (m Match) At(i int) []string {
	if i < 0 || i >= len(m.Path) {
		return nil
	}
	keys := m.Path[i].Keys()
	out := make([]string, len(keys))
	for j, k := range keys {
		out[j] = k.String()
	}
	return out
}
