package jsongraph

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeIndices(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want []int
	}{
		{"single", NewRange(4, 4), []int{4}},
		{"span", NewRange(2, 5), []int{2, 3, 4, 5}},
		{"inverted is empty", NewRange(5, 2), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.Indices()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeIndicesCountMatchesBounds(t *testing.T) {
	for from := -3; from < 5; from++ {
		for to := from; to < from+7; to++ {
			got, err := NewRange(from, to).Indices()
			require.NoError(t, err)
			require.Len(t, got, to-from+1)
			for i, idx := range got {
				assert.Equal(t, from+i, idx)
			}
		}
	}
}

func TestRangeNonNumericBound(t *testing.T) {
	_, err := Range{From: Name("a"), To: Index(3)}.Indices()

	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Contains(t, rangeErr.Error(), "lower bound")
}

func TestRangeIndicesWithinClampsToList(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		n    int
		want []int
	}{
		{"huge upper bound", NewRange(0, math.MaxInt), 3, []int{0, 1, 2}},
		{"negative lower bound", NewRange(-5, 1), 4, []int{0, 1}},
		{"past the end", NewRange(7, 9), 3, nil},
		{"empty list", NewRange(0, math.MaxInt), 0, nil},
		{"extreme bounds", NewRange(math.MinInt, math.MaxInt), 2, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.IndicesWithin(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeIndicesRejectsOversizedSpans(t *testing.T) {
	tests := []struct {
		name string
		r    Range
	}{
		{"overflowing span", NewRange(math.MinInt, math.MaxInt)},
		{"max int upper bound", NewRange(0, math.MaxInt)},
		{"just over the cap", NewRange(0, MaxRangeSpan)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Indices()

			var rangeErr *InvalidRangeError
			assert.True(t, errors.As(err, &rangeErr))
		})
	}

	got, err := NewRange(math.MaxInt-2, math.MaxInt).Indices()
	require.NoError(t, err)
	assert.Equal(t, []int{math.MaxInt - 2, math.MaxInt - 1, math.MaxInt}, got)
}

func TestExpandIndicesWithinKeepsDiscreteKeys(t *testing.T) {
	seg := Segment{
		{Key: Index(9)},
		{Range: &Range{From: Index(0), To: Index(math.MaxInt)}},
	}

	got, err := ExpandIndicesWithin(seg, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 0, 1}, got)
}

func TestRangeLengthOverflow(t *testing.T) {
	var r Range
	err := json.Unmarshal([]byte(`{"from": 9223372036854775807, "length": 2}`), &r)

	var rangeErr *InvalidRangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestExpandSegmentCollapsesDuplicates(t *testing.T) {
	seg := Segment{
		{Key: Index(3)},
		{Range: &Range{From: Index(1), To: Index(4)}},
		{Key: Name("3")},
		{Key: Name("length")},
	}

	keys, err := ExpandSegment(seg)
	require.NoError(t, err)

	got := make([]string, len(keys))
	for i, k := range keys {
		got[i] = k.String()
	}
	assert.Equal(t, []string{"3", "1", "2", "4", "length"}, got)
}

func TestExpandIndicesRejectsNames(t *testing.T) {
	_, err := ExpandIndices(KeySegment(Index(0), Name("name")))

	var rangeErr *InvalidRangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestRangeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Range
	}{
		{"from to", `{"from":1,"to":3}`, NewRange(1, 3)},
		{"to only", `{"to":2}`, NewRange(0, 2)},
		{"from length", `{"from":2,"length":3}`, NewRange(2, 4)},
		{"from only", `{"from":5}`, NewRange(5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Range
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r)
		})
	}

	out, err := json.Marshal(NewRange(0, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":0,"to":1}`, string(out))
}
