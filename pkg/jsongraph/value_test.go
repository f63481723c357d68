package jsongraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWireShape(t *testing.T) {
	var res Response
	res.Set(2, "pivots", "length")
	res.Add(NewPathValue(P("pivots", 0), NewRef(PivotsByID, "p1")))
	res.Invalidate(P("pivots", NewRange(1, 4)))

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"values": [
			{"path": ["pivots","length"], "value": 2},
			{"path": ["pivots",0], "value": {"$type":"ref","value":["pivotsById","p1"]}}
		],
		"invalidations": [
			{"path": ["pivots",[{"from":1,"to":4}]], "invalidated": true}
		]
	}`, string(out))
}

func TestRefRoundTrip(t *testing.T) {
	var r Ref
	require.NoError(t, json.Unmarshal([]byte(`{"$type":"ref","value":["usersById","u1"]}`), &r))
	assert.Equal(t, NewRef(UsersByID, "u1"), r)
	assert.Equal(t, P("usersById", "u1"), r.Path())

	assert.Error(t, json.Unmarshal([]byte(`{"$type":"atom","value":1}`), &r))
}

func TestNormalize(t *testing.T) {
	ref := NewRef(PivotsByID, "p")
	stamp := time.UnixMilli(1700000000000)

	assert.Equal(t, "x", Normalize("x"))
	assert.Equal(t, 3, Normalize(3))
	assert.Nil(t, Normalize(nil))
	assert.Equal(t, ref, Normalize(ref))
	assert.Equal(t, ref, Normalize(&ref))
	assert.Equal(t, int64(1700000000000), Normalize(stamp))
	assert.Equal(t, Atom{Value: map[string]int{"a": 1}}, Normalize(map[string]int{"a": 1}))
	assert.Equal(t, Atom{Value: []string{"a"}}, Normalize([]string{"a"}))
}

func TestNewErrorValue(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{&InvalidRangeError{Range: NewRange(0, 1), Reason: "x"}, CodeInvalidRange},
		{fmt.Errorf("wrapped: %w", &NoMatchingRouteError{Path: P("nope")}), CodeNoMatchingRoute},
		{&MissingReferenceError{Ref: NewRef(PivotsByID, "gone")}, CodeMissingReference},
		{&InvalidArgumentsError{Reason: "want id"}, CodeInvalidArguments},
		{errors.New("other"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ev := NewErrorValue(tt.err)
			assert.Equal(t, tt.code, ev.Code)
			assert.Equal(t, tt.err.Error(), ev.Message)
		})
	}

	out, err := json.Marshal(NewErrorValue(errors.New("x")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"$type":"error","value":{"code":"INTERNAL","message":"x"}}`, string(out))
}
