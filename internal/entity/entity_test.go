package entity

import (
	"errors"
	"testing"

	"pivot-graph-be/pkg/jsongraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPivotCloneIsolation(t *testing.T) {
	src := NewPivot(
		PivotField{Name: FieldSearch, Value: "index=main"},
		PivotField{Name: FieldLinks, Value: []any{"src_ip", map[string]any{"k": "v"}}},
	)
	src.Enabled = true
	src.ResultCount = 4
	src.Results = []EntityRecord{{Title: "e1", Type: "EventID"}}

	clone := src.Clone()
	require.NotEqual(t, src.ID, clone.ID)
	assert.False(t, clone.Enabled)
	assert.Zero(t, clone.ResultCount)
	assert.Empty(t, clone.Results)
	assert.Nil(t, clone.ResultSummary)

	clone.Fields.Set(FieldSearch, "index=other")
	links, _ := clone.Fields.Get(FieldLinks)
	links.([]any)[1].(map[string]any)["k"] = "changed"

	v, _ := src.Fields.Get(FieldSearch)
	assert.Equal(t, "index=main", v)
	srcLinks, _ := src.Fields.Get(FieldLinks)
	assert.Equal(t, "v", srcLinks.([]any)[1].(map[string]any)["k"])
}

func TestPivotFieldsOrderAndSet(t *testing.T) {
	f := NewPivotFields(PivotField{Name: "a", Value: 1}, PivotField{Name: "b", Value: 2})
	f.Set("a", 3)
	f.Set("c", 4)

	require.Equal(t, 3, f.Len())
	first, ok := f.At(0)
	require.True(t, ok)
	assert.Equal(t, PivotField{Name: "a", Value: 3}, first)
	_, ok = f.At(3)
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"a": 3, "b": 2, "c": 4}, f.Map())
}

func TestInvestigationInsertAndSplice(t *testing.T) {
	inv := NewInvestigation("x", "p0", "p1")

	assert.Equal(t, 1, inv.InsertPivot(1, "new"))
	assert.Equal(t, []string{"p0", "new", "p1"}, inv.PivotIDs())
	assert.Equal(t, 3, inv.InsertPivot(-1, "last"))

	ref, ok := inv.SplicePivot(0)
	require.True(t, ok)
	assert.Equal(t, "p0", ref.ID)
	assert.True(t, inv.IsDetached("p0"))
	assert.Equal(t, []string{"new", "p1", "last"}, inv.PivotIDs())

	_, ok = inv.SplicePivot(9)
	assert.False(t, ok)
}

func TestUserRemoveInvestigationsReassignsActive(t *testing.T) {
	u := NewUser("analyst")
	u.AddInvestigation("i1")
	u.AddInvestigation("i2")
	u.AddInvestigation("i3")

	require.True(t, u.Activate("i2"))
	u.RemoveInvestigations([]string{"i2"})
	active, ok := u.ActiveID()
	require.True(t, ok)
	assert.Equal(t, "i1", active)

	u.RemoveInvestigations([]string{"i1", "i3"})
	_, ok = u.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, u.Investigations)
}

func TestAppResolveAndTotal(t *testing.T) {
	app := NewApp("Pivots", "http://localhost/")
	user := NewUser("analyst")
	app.PutUser(user)
	app.CurrentUser = jsongraph.NewRef(jsongraph.UsersByID, user.ID)

	p1, p2 := NewPivot(), NewPivot()
	p1.Enabled, p1.ResultCount = true, 5
	p2.ResultCount = 7
	app.PutPivots(p1, p2)
	inv := NewInvestigation("i", p1.ID, p2.ID)
	app.PutInvestigation(inv)
	user.AddInvestigation(inv.ID)

	assert.Equal(t, 5, app.Total())
	assert.Len(t, app.Pivots(), 2)

	got, err := app.Resolve(jsongraph.NewRef(jsongraph.PivotsByID, p2.ID))
	require.NoError(t, err)
	assert.Same(t, p2, got)

	_, err = app.Resolve(jsongraph.NewRef(jsongraph.PivotsByID, "missing"))
	var missing *jsongraph.MissingReferenceError
	assert.True(t, errors.As(err, &missing))
}

func TestPivotReferenced(t *testing.T) {
	app := NewApp("Pivots", "")
	app.PutInvestigation(&Investigation{ID: "a", Pivots: []jsongraph.Ref{jsongraph.NewRef(jsongraph.PivotsByID, "shared")}})
	app.PutInvestigation(&Investigation{ID: "b", Pivots: []jsongraph.Ref{jsongraph.NewRef(jsongraph.PivotsByID, "shared")}})

	assert.True(t, app.PivotReferenced("shared", []string{"a"}))
	assert.False(t, app.PivotReferenced("shared", []string{"a", "b"}))
}
