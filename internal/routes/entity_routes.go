package routes

import (
	"context"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/jsongraph/router"
)

var (
	userFields          = []string{"id", "name", "activeInvestigation"}
	investigationFields = []string{"id", "name", "modifiedOn", "detachedPivots"}
)

func (r *appRoutes) entityRoutes() []router.Route {
	return []router.Route{
		{
			Name:    "usersById.fields",
			Pattern: router.Pattern{router.Literal(jsongraph.UsersByID), router.Keys("ids"), router.Literal(userFields...)},
			Get:     r.getUserFields,
		},
		{
			Name:    "usersById.investigations.length",
			Pattern: router.Pattern{router.Literal(jsongraph.UsersByID), router.Keys("ids"), router.Literal("investigations"), router.Literal("length")},
			Get:     r.getUserInvestigationsLength,
		},
		{
			Name:    "usersById.investigations.items",
			Pattern: router.Pattern{router.Literal(jsongraph.UsersByID), router.Keys("ids"), router.Literal("investigations"), router.Ranges("indices")},
			Get:     r.getUserInvestigations,
		},
		{
			Name:    "investigationsById.fields",
			Pattern: router.Pattern{router.Literal(jsongraph.InvestigationsByID), router.Keys("ids"), router.Literal(investigationFields...)},
			Get:     r.getInvestigationFields,
		},
		{
			Name:    "investigationsById.pivots.length",
			Pattern: router.Pattern{router.Literal(jsongraph.InvestigationsByID), router.Keys("ids"), router.Literal("pivots"), router.Literal("length")},
			Get:     r.getInvestigationPivotsLength,
		},
		{
			Name:    "investigationsById.pivots.items",
			Pattern: router.Pattern{router.Literal(jsongraph.InvestigationsByID), router.Keys("ids"), router.Literal("pivots"), router.Ranges("indices")},
			Get:     r.getInvestigationPivots,
		},
		{
			Name:    "pivotsById.entries",
			Pattern: router.Pattern{router.Literal(jsongraph.PivotsByID), router.Keys("ids"), router.Ranges("indices"), router.Literal("name", "value")},
			Get:     r.getPivotEntries,
		},
		{
			Name:    "pivotsById.fields",
			Pattern: router.Pattern{router.Literal(jsongraph.PivotsByID), router.Keys("ids"), router.Keys("fields")},
			Get:     r.getPivotFields,
		},
	}
}

// eachEntity emits the entities named by ids. A single missing entity fails
// the whole match so the router can invalidate the reference that led here;
// among several, a missing one only invalidates its own path.
func eachEntity[T any](res *jsongraph.Response, collection string, ids []string, lookup func(string) (T, error), emit func(id string, e T)) error {
	for _, id := range ids {
		e, err := lookup(id)
		if err != nil {
			if len(ids) == 1 {
				return err
			}
			res.Invalidate(jsongraph.P(collection, id))
			continue
		}
		emit(id, e)
	}
	return nil
}

func (r *appRoutes) getUserFields(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	fields := m.At(2)
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.UsersByID, ids, r.app().User, func(id string, u *entity.User) {
		for _, f := range fields {
			switch f {
			case "id":
				res.Set(u.ID, jsongraph.UsersByID, id, f)
			case "name":
				res.Set(u.Name, jsongraph.UsersByID, id, f)
			case "activeInvestigation":
				res.Set(u.ActiveInvestigation, jsongraph.UsersByID, id, f)
			}
		}
	})
	return res, err
}

func (r *appRoutes) getUserInvestigationsLength(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.UsersByID, ids, r.app().User, func(id string, u *entity.User) {
		res.Set(len(u.Investigations), jsongraph.UsersByID, id, "investigations", "length")
	})
	return res, err
}

func (r *appRoutes) getUserInvestigations(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	if _, err := listIndices(m, 0); err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.UsersByID, ids, r.app().User, func(id string, u *entity.User) {
		indices, _ := listIndices(m, len(u.Investigations))
		for _, i := range indices {
			res.Set(u.Investigations[i], jsongraph.UsersByID, id, "investigations", i)
		}
	})
	return res, err
}

func (r *appRoutes) getInvestigationFields(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	fields := m.At(2)
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.InvestigationsByID, ids, r.app().Investigation, func(id string, inv *entity.Investigation) {
		for _, f := range fields {
			switch f {
			case "id":
				res.Set(inv.ID, jsongraph.InvestigationsByID, id, f)
			case "name":
				res.Set(inv.Name, jsongraph.InvestigationsByID, id, f)
			case "modifiedOn":
				res.Set(inv.ModifiedOn, jsongraph.InvestigationsByID, id, f)
			case "detachedPivots":
				res.Set(append([]string{}, inv.DetachedPivots...), jsongraph.InvestigationsByID, id, f)
			}
		}
	})
	return res, err
}

func (r *appRoutes) getInvestigationPivotsLength(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.InvestigationsByID, ids, r.app().Investigation, func(id string, inv *entity.Investigation) {
		res.Set(len(inv.Pivots), jsongraph.InvestigationsByID, id, "pivots", "length")
	})
	return res, err
}

func (r *appRoutes) getInvestigationPivots(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	if _, err := listIndices(m, 0); err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.InvestigationsByID, ids, r.app().Investigation, func(id string, inv *entity.Investigation) {
		indices, _ := listIndices(m, len(inv.Pivots))
		for _, i := range indices {
			res.Set(inv.Pivots[i], jsongraph.InvestigationsByID, id, "pivots", i)
		}
	})
	return res, err
}

// getPivotEntries reads the ordered field list positionally:
// pivotsById[id][0].name is the name of the first field.
func (r *appRoutes) getPivotEntries(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	if _, err := listIndices(m, 0); err != nil {
		return jsongraph.Response{}, err
	}
	parts := m.At(3)
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.PivotsByID, ids, r.app().Pivot, func(id string, p *entity.Pivot) {
		indices, _ := listIndices(m, p.Fields.Len())
		for _, i := range indices {
			field, _ := p.Fields.At(i)
			for _, part := range parts {
				if part == "name" {
					res.Set(field.Name, jsongraph.PivotsByID, id, i, part)
				} else {
					res.Set(field.Value, jsongraph.PivotsByID, id, i, part)
				}
			}
		}
	})
	return res, err
}

func (r *appRoutes) getPivotFields(_ context.Context, m router.Match) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	fields, err := m.Names("fields")
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	err = eachEntity(&res, jsongraph.PivotsByID, ids, r.app().Pivot, func(id string, p *entity.Pivot) {
		for _, f := range fields {
			res.Set(pivotField(p, f), jsongraph.PivotsByID, id, f)
		}
	})
	return res, err
}

// pivotField reads a pivot attribute, falling back to the named entry of
// its field list. Unknown names read as null.
func pivotField(p *entity.Pivot, name string) any {
	switch name {
	case "id":
		return p.ID
	case "enabled":
		return p.Enabled
	case "resultCount":
		return p.ResultCount
	case "length":
		return p.Fields.Len()
	case "results":
		if p.Results == nil {
			return []entity.EntityRecord{}
		}
		return p.Results
	case "resultSummary":
		if p.ResultSummary == nil {
			return nil
		}
		return *p.ResultSummary
	}
	v, _ := p.Fields.Get(name)
	return v
}
