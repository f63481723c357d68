package entity

import (
	"fmt"
	"slices"
	"time"

	"pivot-graph-be/pkg/jsongraph"
)

type Investigation struct {
	ID             string
	Name           string
	Pivots         []jsongraph.Ref
	DetachedPivots []string
	ModifiedOn     time.Time
}

// DefaultInvestigationName names the n-th investigation of a user.
func DefaultInvestigationName(n int) string {
	return fmt.Sprintf("Untitled Investigation %d", n)
}

func NewInvestigation(name string, pivotIDs ...string) *Investigation {
	inv := &Investigation{ID: NewID(), Name: name, Pivots: make([]jsongraph.Ref, 0, len(pivotIDs))}
	for _, id := range pivotIDs {
		inv.Pivots = append(inv.Pivots, jsongraph.NewRef(jsongraph.PivotsByID, id))
	}
	return inv
}

func (i *Investigation) PivotIDs() []string {
	out := make([]string, len(i.Pivots))
	for n, ref := range i.Pivots {
		out[n] = ref.ID
	}
	return out
}

// HasPivot reports whether the pivot list references id.
func (i *Investigation) HasPivot(id string) bool {
	return slices.ContainsFunc(i.Pivots, func(r jsongraph.Ref) bool { return r.ID == id })
}

// InsertPivot places a reference to id at index, clamped to the list bounds,
// and returns the index used.
func (i *Investigation) InsertPivot(index int, id string) int {
	if index < 0 || index > len(i.Pivots) {
		index = len(i.Pivots)
	}
	i.Pivots = slices.Insert(i.Pivots, index, jsongraph.NewRef(jsongraph.PivotsByID, id))
	return index
}

// SplicePivot removes the reference at index and records the pivot as
// detached.
func (i *Investigation) SplicePivot(index int) (jsongraph.Ref, bool) {
	if index < 0 || index >= len(i.Pivots) {
		return jsongraph.Ref{}, false
	}
	ref := i.Pivots[index]
	i.Pivots = slices.Delete(i.Pivots, index, index+1)
	i.Detach(ref.ID)
	return ref, true
}

func (i *Investigation) Detach(id string) {
	if !slices.Contains(i.DetachedPivots, id) {
		i.DetachedPivots = append(i.DetachedPivots, id)
	}
}

func (i *Investigation) IsDetached(id string) bool {
	return slices.Contains(i.DetachedPivots, id)
}

// Clone copies the investigation onto a new id referencing pivotIDs. The
// detached set is not carried over.
func (i *Investigation) Clone(pivotIDs []string) *Investigation {
	return NewInvestigation(fmt.Sprintf("%s (copy)", i.Name), pivotIDs...)
}
