package router

import (
	"encoding/json"
	"fmt"
	"strconv"

	"pivot-graph-be/pkg/jsongraph"
)

// Args are the positional arguments of a call, as decoded from JSON.
type Args []any

func invalidArg(i int, format string, a ...any) error {
	return &jsongraph.InvalidArgumentsError{Reason: fmt.Sprintf("argument %d: ", i) + fmt.Sprintf(format, a...)}
}

// Has reports whether argument i is present and not null.
func (a Args) Has(i int) bool {
	return i >= 0 && i < len(a) && a[i] != nil
}

// String returns argument i as a string.
func (a Args) String(i int) (string, error) {
	if !a.Has(i) {
		return "", invalidArg(i, "missing")
	}
	switch v := a[i].(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", invalidArg(i, "want a string, got %T", v)
	}
}

// Int returns argument i as an integer. The second result is false when
// the argument is absent so callers can apply their default.
func (a Args) Int(i int) (int, bool, error) {
	if !a.Has(i) {
		return 0, false, nil
	}
	switch v := a[i].(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v != float64(int(v)) {
			return 0, true, invalidArg(i, "want an integer, got %v", v)
		}
		return int(v), true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, invalidArg(i, "want an integer, got %s", v)
		}
		return int(n), true, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, true, invalidArg(i, "want an integer, got %q", v)
		}
		return n, true, nil
	default:
		return 0, true, invalidArg(i, "want an integer, got %T", v)
	}
}

// Strings returns every argument from position i on as strings. A single
// list argument is flattened.
func (a Args) Strings(from int) ([]string, error) {
	if from >= len(a) {
		return nil, nil
	}
	rest := a[from:]
	if len(rest) == 1 {
		if list, ok := rest[0].([]any); ok {
			rest = list
		}
	}
	out := make([]string, 0, len(rest))
	for i := range rest {
		s, err := Args(rest).String(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
