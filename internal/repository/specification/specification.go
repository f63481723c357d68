// Package specification holds reusable gorm query filters.
package specification

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ByIDs matches rows whose primary key is one of IDs. An empty list
// matches nothing.
type ByIDs struct {
	IDs []string
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	if len(s.IDs) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where("id IN ?", s.IDs)
}

// ListsAnyPivot matches investigations whose pivot list holds one of
// PivotIDs.
type ListsAnyPivot struct {
	PivotIDs []string
}

func (s ListsAnyPivot) Apply(db *gorm.DB) *gorm.DB {
	if len(s.PivotIDs) == 0 {
		return db.Where("1 = 0")
	}
	exprs := make([]clause.Expression, len(s.PivotIDs))
	for i, id := range s.PivotIDs {
		exprs[i] = datatypes.JSONArrayQuery("pivot_ids").Contains(id)
	}
	return db.Where(clause.Or(exprs...))
}
