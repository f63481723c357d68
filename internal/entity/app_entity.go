package entity

import (
	"pivot-graph-be/pkg/jsongraph"
)

// Column describes one column of the pivot table.
type Column struct {
	Name string `json:"name"`
}

// Columns is a fixed-shape list carrying its own id and total label.
type Columns struct {
	ID    string
	Total string
	Items []Column
}

func DefaultColumns() Columns {
	return Columns{
		ID:    "cols",
		Total: "Total",
		Items: []Column{{Name: FieldSearch}, {Name: FieldLinks}, {Name: FieldTime}},
	}
}

// App is the root of one session's graph. Entities live in the ById
// collections and refer to each other only through references.
type App struct {
	ID          string
	Title       string
	URL         string
	CurrentUser jsongraph.Ref
	Cols        Columns

	InvestigationsById map[string]*Investigation
	PivotsById         map[string]*Pivot
	UsersById          map[string]*User
}

func NewApp(title, url string) *App {
	return &App{
		ID:                 NewID(),
		Title:              title,
		URL:                url,
		Cols:               DefaultColumns(),
		InvestigationsById: make(map[string]*Investigation),
		PivotsById:         make(map[string]*Pivot),
		UsersById:          make(map[string]*User),
	}
}

func (a *App) PutUser(u *User) {
	a.UsersById[u.ID] = u
}

func (a *App) PutInvestigation(inv *Investigation) {
	a.InvestigationsById[inv.ID] = inv
}

func (a *App) PutPivots(pivots ...*Pivot) {
	for _, p := range pivots {
		a.PivotsById[p.ID] = p
	}
}

func (a *App) User(id string) (*User, error) {
	if u, ok := a.UsersById[id]; ok {
		return u, nil
	}
	return nil, &jsongraph.MissingReferenceError{Ref: jsongraph.NewRef(jsongraph.UsersByID, id)}
}

func (a *App) Investigation(id string) (*Investigation, error) {
	if inv, ok := a.InvestigationsById[id]; ok {
		return inv, nil
	}
	return nil, &jsongraph.MissingReferenceError{Ref: jsongraph.NewRef(jsongraph.InvestigationsByID, id)}
}

func (a *App) Pivot(id string) (*Pivot, error) {
	if p, ok := a.PivotsById[id]; ok {
		return p, nil
	}
	return nil, &jsongraph.MissingReferenceError{Ref: jsongraph.NewRef(jsongraph.PivotsByID, id)}
}

// Resolve looks a reference up in its collection.
func (a *App) Resolve(ref jsongraph.Ref) (any, error) {
	switch ref.Collection {
	case jsongraph.UsersByID:
		return a.User(ref.ID)
	case jsongraph.InvestigationsByID:
		return a.Investigation(ref.ID)
	case jsongraph.PivotsByID:
		return a.Pivot(ref.ID)
	default:
		return nil, &jsongraph.MissingReferenceError{Ref: ref}
	}
}

// Current returns the session user.
func (a *App) Current() (*User, error) {
	return a.User(a.CurrentUser.ID)
}

// ActiveInvestigation returns the current user's active investigation.
func (a *App) ActiveInvestigation() (*User, *Investigation, error) {
	user, err := a.Current()
	if err != nil {
		return nil, nil, err
	}
	id, ok := user.ActiveID()
	if !ok {
		return user, nil, &jsongraph.MissingReferenceError{Ref: jsongraph.NewRef(jsongraph.InvestigationsByID, "")}
	}
	inv, err := a.Investigation(id)
	if err != nil {
		return user, nil, err
	}
	return user, inv, nil
}

// Pivots is the root pivot list: the active investigation's references.
func (a *App) Pivots() []jsongraph.Ref {
	_, inv, err := a.ActiveInvestigation()
	if err != nil {
		return nil
	}
	return inv.Pivots
}

// Total sums the result counts of the enabled pivots in the root list.
func (a *App) Total() int {
	total := 0
	for _, ref := range a.Pivots() {
		if p, ok := a.PivotsById[ref.ID]; ok && p.Enabled {
			total += p.ResultCount
		}
	}
	return total
}

// PivotReferenced reports whether an investigation outside skip still lists
// the pivot.
func (a *App) PivotReferenced(pivotID string, skip []string) bool {
	for id, inv := range a.InvestigationsById {
		if contains(skip, id) {
			continue
		}
		if inv.HasPivot(pivotID) {
			return true
		}
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
