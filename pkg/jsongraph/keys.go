// Package jsongraph holds the wire vocabulary of the graph query protocol:
// keys, ranges, paths, references, atoms and invalidations.
package jsongraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Key is one concrete path key: a name or an integer index.
type Key struct {
	name    string
	index   int
	isIndex bool
}

// Name returns a named key.
func Name(name string) Key {
	return Key{name: name}
}

// Index returns an integer key.
func Index(i int) Key {
	return Key{index: i, isIndex: true}
}

// KeyOf converts a loosely typed literal (string, int, float64, Key) to a Key.
func KeyOf(v any) (Key, error) {
	switch t := v.(type) {
	case Key:
		return t, nil
	case string:
		return Name(t), nil
	case int:
		return Index(t), nil
	case int64:
		return Index(int(t)), nil
	case float64:
		if t == float64(int(t)) {
			return Index(int(t)), nil
		}
		return Name(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Index(int(i)), nil
		}
		return Name(t.String()), nil
	default:
		return Key{}, fmt.Errorf("unsupported key literal %T", v)
	}
}

// Int reports the key as an integer index. Decimal names such as "3" are
// accepted as indices.
func (k Key) Int() (int, bool) {
	if k.isIndex {
		return k.index, true
	}
	i, err := strconv.Atoi(k.name)
	if err != nil {
		return 0, false
	}
	return i, true
}

// IsIndex reports whether the key was built or decoded as a number.
func (k Key) IsIndex() bool {
	return k.isIndex
}

func (k Key) String() string {
	if k.isIndex {
		return strconv.Itoa(k.index)
	}
	return k.name
}

func (k Key) MarshalJSON() ([]byte, error) {
	if k.isIndex {
		return []byte(strconv.Itoa(k.index)), nil
	}
	return json.Marshal(k.name)
}

func (k *Key) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = Name(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("key must be a string or a number: %w", err)
	}
	parsed, err := KeyOf(n)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
