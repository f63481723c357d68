// Package routes declares the graph routes of one session.
package routes

import (
	"context"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/service"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/jsongraph/router"
	"pivot-graph-be/pkg/store"
)

// Deps are the services call routes delegate to.
type Deps struct {
	Investigations service.IInvestigationService
	Search         service.ISearchPivotService
}

type appRoutes struct {
	sess *store.Session
	deps Deps
}

// AppRoutes returns the route table over sess. Get routes only read the
// graph; every mutation happens in a call route.
func AppRoutes(sess *store.Session, deps Deps) []router.Route {
	r := &appRoutes{sess: sess, deps: deps}

	routes := []router.Route{
		{
			Name:    "root",
			Pattern: router.Pattern{router.Literal("id", "title", "url", "total")},
			Get:     r.getRoot,
		},
		{
			Name:    "currentUser",
			Pattern: router.Pattern{router.Literal("currentUser")},
			Get:     r.getCurrentUser,
		},
		{
			Name:    "lengths",
			Pattern: router.Pattern{router.Literal("cols", "pivots"), router.Literal("length")},
			Get:     r.getLengths,
		},
		{
			Name:    "cols",
			Pattern: router.Pattern{router.Literal("cols"), router.Literal("id", "total")},
			Get:     r.getColsInfo,
		},
		{
			Name:    "cols.items",
			Pattern: router.Pattern{router.Literal("cols"), router.Ranges("indices")},
			Get:     r.getCols,
		},
		{
			Name:    "cols.items.fields",
			Pattern: router.Pattern{router.Literal("cols"), router.Ranges("indices"), router.Keys("fields")},
			Get:     r.getColFields,
		},
		{
			Name:    "pivots.length.ranged",
			Pattern: router.Pattern{router.Literal("pivots"), router.Ranges("indices"), router.Literal("length")},
			Get:     r.getRangedPivotsLength,
		},
		{
			Name:    "pivots.items",
			Pattern: router.Pattern{router.Literal("pivots"), router.Ranges("indices")},
			Get:     r.getPivots,
		},
	}
	routes = append(routes, r.entityRoutes()...)
	routes = append(routes, r.callRoutes()...)
	return routes
}

func (r *appRoutes) app() *entity.App {
	return r.sess.App
}

func (r *appRoutes) getRoot(_ context.Context, m router.Match) (jsongraph.Response, error) {
	app := r.app()
	var res jsongraph.Response
	for _, name := range m.At(0) {
		switch name {
		case "id":
			res.Set(app.ID, name)
		case "title":
			res.Set(app.Title, name)
		case "url":
			res.Set(app.URL, name)
		case "total":
			res.Set(app.Total(), name)
		}
	}
	return res, nil
}

func (r *appRoutes) getCurrentUser(_ context.Context, _ router.Match) (jsongraph.Response, error) {
	var res jsongraph.Response
	res.Set(r.app().CurrentUser, "currentUser")
	return res, nil
}

func (r *appRoutes) getLengths(_ context.Context, m router.Match) (jsongraph.Response, error) {
	app := r.app()
	var res jsongraph.Response
	for _, name := range m.At(0) {
		switch name {
		case "cols":
			res.Set(len(app.Cols.Items), "cols", "length")
		case "pivots":
			res.Set(len(app.Pivots()), "pivots", "length")
		}
	}
	return res, nil
}

func (r *appRoutes) getColsInfo(_ context.Context, m router.Match) (jsongraph.Response, error) {
	cols := r.app().Cols
	var res jsongraph.Response
	for _, name := range m.At(1) {
		switch name {
		case "id":
			res.Set(cols.ID, "cols", "id")
		case "total":
			res.Set(cols.Total, "cols", "total")
		}
	}
	return res, nil
}

func (r *appRoutes) getCols(_ context.Context, m router.Match) (jsongraph.Response, error) {
	items := r.app().Cols.Items
	indices, err := listIndices(m, len(items))
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	for _, i := range indices {
		res.Set(items[i], "cols", i)
	}
	return res, nil
}

func (r *appRoutes) getColFields(_ context.Context, m router.Match) (jsongraph.Response, error) {
	items := r.app().Cols.Items
	indices, err := listIndices(m, len(items))
	if err != nil {
		return jsongraph.Response{}, err
	}
	fields, err := m.Names("fields")
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	for _, i := range indices {
		for _, f := range fields {
			if f == "name" {
				res.Set(items[i].Name, "cols", i, f)
			}
		}
	}
	return res, nil
}

// getRangedPivotsLength answers a length query sent with an index range,
// such as pivots[0..1].length, with the plain list length.
func (r *appRoutes) getRangedPivotsLength(_ context.Context, m router.Match) (jsongraph.Response, error) {
	n := len(r.app().Pivots())
	if _, err := listIndices(m, n); err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	res.Set(n, "pivots", "length")
	return res, nil
}

func (r *appRoutes) getPivots(_ context.Context, m router.Match) (jsongraph.Response, error) {
	refs := r.app().Pivots()
	indices, err := listIndices(m, len(refs))
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	for _, i := range indices {
		res.Set(refs[i], "pivots", i)
	}
	return res, nil
}

// listIndices expands the "indices" parameter against a list of length n and
// drops positions past the end. Clients may ask for elements their cache
// still holds after the list shrank.
func listIndices(m router.Match, n int) ([]int, error) {
	indices, err := m.IndicesWithin("indices", n)
	if err != nil {
		return nil, err
	}
	return inBounds(indices, n), nil
}

func inBounds(indices []int, n int) []int {
	out := indices[:0:0]
	for _, i := range indices {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	return out
}
