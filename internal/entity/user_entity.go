package entity

import (
	"slices"

	"pivot-graph-be/pkg/jsongraph"
)

type User struct {
	ID                  string
	Name                string
	Investigations      []jsongraph.Ref
	ActiveInvestigation *jsongraph.Ref
}

func NewUser(name string) *User {
	return &User{ID: NewID(), Name: name}
}

// ActiveID returns the id of the active investigation.
func (u *User) ActiveID() (string, bool) {
	if u.ActiveInvestigation == nil {
		return "", false
	}
	return u.ActiveInvestigation.ID, true
}

// AddInvestigation appends id to the user's list and makes it active. It
// returns the new list length.
func (u *User) AddInvestigation(id string) int {
	ref := jsongraph.NewRef(jsongraph.InvestigationsByID, id)
	u.Investigations = append(u.Investigations, ref)
	u.ActiveInvestigation = &ref
	return len(u.Investigations)
}

func (u *User) Owns(id string) bool {
	return slices.ContainsFunc(u.Investigations, func(r jsongraph.Ref) bool { return r.ID == id })
}

// Activate makes an owned investigation active.
func (u *User) Activate(id string) bool {
	for _, ref := range u.Investigations {
		if ref.ID == id {
			r := ref
			u.ActiveInvestigation = &r
			return true
		}
	}
	return false
}

// RemoveInvestigations drops ids from the list. When the active one is
// removed the first remaining entry becomes active, or none.
func (u *User) RemoveInvestigations(ids []string) (removed int) {
	before := len(u.Investigations)
	u.Investigations = slices.DeleteFunc(u.Investigations, func(r jsongraph.Ref) bool {
		return slices.Contains(ids, r.ID)
	})

	if active, ok := u.ActiveID(); ok && slices.Contains(ids, active) {
		if len(u.Investigations) > 0 {
			first := u.Investigations[0]
			u.ActiveInvestigation = &first
		} else {
			u.ActiveInvestigation = nil
		}
	}
	return before - len(u.Investigations)
}
