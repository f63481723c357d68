package routes

import (
	"context"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/jsongraph/router"
)

func (r *appRoutes) callRoutes() []router.Route {
	return []router.Route{
		{
			Name:    "pivots.insert",
			Pattern: router.Pattern{router.Literal("pivots"), router.Literal("insert")},
			Call:    r.insertPivot,
		},
		{
			Name:    "pivots.splice",
			Pattern: router.Pattern{router.Literal("pivots"), router.Literal("splice")},
			Call:    r.splicePivot,
		},
		{
			Name:    "pivots.searchPivot",
			Pattern: router.Pattern{router.Literal("pivots"), router.Literal("searchPivot")},
			Call:    r.searchPivot,
		},
		{
			Name:    "usersById.investigations.create",
			Pattern: router.Pattern{router.Literal(jsongraph.UsersByID), router.Keys("ids"), router.Literal("investigations"), router.Literal("create")},
			Call:    r.createInvestigation,
		},
		{
			Name:    "usersById.investigations.clone",
			Pattern: router.Pattern{router.Literal(jsongraph.UsersByID), router.Keys("ids"), router.Literal("investigations"), router.Literal("clone")},
			Call:    r.cloneInvestigation,
		},
		{
			Name:    "usersById.investigations.remove",
			Pattern: router.Pattern{router.Literal(jsongraph.UsersByID), router.Keys("ids"), router.Literal("investigations"), router.Literal("remove")},
			Call:    r.removeInvestigations,
		},
		{
			Name:    "usersById.investigations.switchActive",
			Pattern: router.Pattern{router.Literal(jsongraph.UsersByID), router.Keys("ids"), router.Literal("investigations"), router.Literal("switchActive")},
			Call:    r.switchActiveInvestigation,
		},
		{
			Name:    "investigationsById.save",
			Pattern: router.Pattern{router.Literal(jsongraph.InvestigationsByID), router.Keys("ids"), router.Literal("save")},
			Call:    r.saveInvestigations,
		},
		{
			Name:    "pivotsById.setField",
			Pattern: router.Pattern{router.Literal(jsongraph.PivotsByID), router.Keys("ids"), router.Literal("setField")},
			Call:    r.setPivotField,
		},
	}
}

func (r *appRoutes) activeInvestigation() (*entity.Investigation, error) {
	_, inv, err := r.app().ActiveInvestigation()
	return inv, err
}

// insertPivot takes an optional index; without one the pivot is appended.
// Only the positions after the inserted one shift.
func (r *appRoutes) insertPivot(ctx context.Context, _ router.Match, args router.Args) (jsongraph.Response, error) {
	inv, err := r.activeInvestigation()
	if err != nil {
		return jsongraph.Response{}, err
	}
	index, ok, err := args.Int(0)
	if err != nil {
		return jsongraph.Response{}, err
	}
	if !ok {
		index = len(inv.Pivots)
	}

	at, pivot, err := r.deps.Investigations.InsertPivot(ctx, r.sess, inv.ID, index)
	if err != nil {
		return jsongraph.Response{}, err
	}
	length := len(inv.Pivots)

	var res jsongraph.Response
	res.Set(r.app().Total(), "total")
	res.Set(length, "pivots", "length")
	res.Set(jsongraph.NewRef(jsongraph.PivotsByID, pivot.ID), "pivots", at)
	if at < length-1 {
		res.Invalidate(jsongraph.P("pivots", jsongraph.NewRange(at+1, length-1)))
	}
	return res, nil
}

// splicePivot removes the pivot at the given index and republishes the
// graph without it.
func (r *appRoutes) splicePivot(ctx context.Context, _ router.Match, args router.Args) (jsongraph.Response, error) {
	inv, err := r.activeInvestigation()
	if err != nil {
		return jsongraph.Response{}, err
	}
	index, ok, err := args.Int(0)
	if err != nil {
		return jsongraph.Response{}, err
	}
	if !ok {
		return jsongraph.Response{}, &jsongraph.InvalidArgumentsError{Reason: "argument 0: missing pivot index"}
	}
	oldLength := len(inv.Pivots)

	pivotID, err := r.deps.Investigations.SplicePivot(ctx, r.sess, inv.ID, index)
	if err != nil {
		return jsongraph.Response{}, err
	}
	// The dataset still holds the spliced pivot's entities.
	url, err := r.deps.Search.UploadGraph(ctx, r.sess)
	if err != nil {
		return jsongraph.Response{}, err
	}

	var res jsongraph.Response
	res.Set(r.app().Total(), "total")
	res.Set(len(inv.Pivots), "pivots", "length")
	res.Set(url, "url")
	res.Invalidate(
		jsongraph.P(jsongraph.PivotsByID, pivotID),
		jsongraph.P("pivots", jsongraph.NewRange(index, oldLength-1)),
	)
	return res, nil
}

// searchPivot runs the pivot at the optional index, the last one by
// default, then uploads the graph and points url at the new dataset.
func (r *appRoutes) searchPivot(ctx context.Context, _ router.Match, args router.Args) (jsongraph.Response, error) {
	inv, err := r.activeInvestigation()
	if err != nil {
		return jsongraph.Response{}, err
	}
	index, ok, err := args.Int(0)
	if err != nil {
		return jsongraph.Response{}, err
	}
	if !ok {
		index = -1
	}

	result, err := r.deps.Search.SearchPivot(ctx, r.sess, inv.ID, index)
	if err != nil {
		return jsongraph.Response{}, err
	}
	url, err := r.deps.Search.UploadGraph(ctx, r.sess)
	if err != nil {
		return jsongraph.Response{}, err
	}

	id := result.Pivot.ID
	var res jsongraph.Response
	res.Set(jsongraph.NewRef(jsongraph.PivotsByID, id), "pivots", result.Index)
	res.Set(true, jsongraph.PivotsByID, id, "enabled")
	res.Set(result.Pivot.ResultCount, jsongraph.PivotsByID, id, "resultCount")
	res.Set(pivotField(result.Pivot, "resultSummary"), jsongraph.PivotsByID, id, "resultSummary")
	res.Set(r.app().Total(), "total")
	res.Set(url, "url")
	res.Invalidate(jsongraph.P(jsongraph.PivotsByID, id, "results"))
	return res, nil
}

func (r *appRoutes) createInvestigation(ctx context.Context, m router.Match, _ router.Args) (jsongraph.Response, error) {
	userIDs, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	for _, userID := range userIDs {
		created, err := r.deps.Investigations.Create(ctx, r.sess, userID)
		if err != nil {
			return jsongraph.Response{}, err
		}
		r.addedInvestigation(&res, userID, created.Investigation.ID, created.NumInvestigations)
	}
	return res, nil
}

func (r *appRoutes) cloneInvestigation(ctx context.Context, m router.Match, args router.Args) (jsongraph.Response, error) {
	userIDs, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	sourceID, err := args.String(0)
	if err != nil {
		return jsongraph.Response{}, err
	}
	cloned, err := r.deps.Investigations.Clone(ctx, r.sess, sourceID)
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	for _, userID := range userIDs {
		if userID == cloned.User.ID {
			r.addedInvestigation(&res, userID, cloned.Investigation.ID, cloned.NumInvestigations)
		}
	}
	return res, nil
}

// addedInvestigation reports a new active investigation at the end of the
// user's list.
func (r *appRoutes) addedInvestigation(res *jsongraph.Response, userID, investigationID string, length int) {
	ref := jsongraph.NewRef(jsongraph.InvestigationsByID, investigationID)
	res.Set(length, jsongraph.UsersByID, userID, "investigations", "length")
	res.Set(ref, jsongraph.UsersByID, userID, "investigations", length-1)
	res.Set(ref, jsongraph.UsersByID, userID, "activeInvestigation")
	res.Set(r.app().Total(), "total")
	res.Invalidate(jsongraph.P("pivots"))
}

func (r *appRoutes) removeInvestigations(ctx context.Context, m router.Match, args router.Args) (jsongraph.Response, error) {
	userIDs, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	investigationIDs, err := args.Strings(0)
	if err != nil {
		return jsongraph.Response{}, err
	}
	if len(investigationIDs) == 0 {
		return jsongraph.Response{}, &jsongraph.InvalidArgumentsError{Reason: "no investigation ids"}
	}

	removed, err := r.deps.Investigations.Remove(ctx, r.sess, investigationIDs, userIDs)
	if err != nil {
		return jsongraph.Response{}, err
	}

	var res jsongraph.Response
	for _, change := range removed.Users {
		id := change.User.ID
		res.Set(change.NewLength, jsongraph.UsersByID, id, "investigations", "length")
		res.Set(change.User.ActiveInvestigation, jsongraph.UsersByID, id, "activeInvestigation")
		if change.OldLength > 0 {
			res.Invalidate(jsongraph.P(jsongraph.UsersByID, id, "investigations", jsongraph.NewRange(0, change.OldLength-1)))
		}
	}
	for _, inv := range removed.Investigations {
		res.Invalidate(jsongraph.P(jsongraph.InvestigationsByID, inv.ID))
	}
	for _, id := range removed.PivotIDs {
		res.Invalidate(jsongraph.P(jsongraph.PivotsByID, id))
	}
	res.Set(r.app().Total(), "total")
	res.Invalidate(jsongraph.P("pivots"))
	return res, nil
}

func (r *appRoutes) switchActiveInvestigation(ctx context.Context, m router.Match, args router.Args) (jsongraph.Response, error) {
	userIDs, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	investigationID, err := args.String(0)
	if err != nil {
		return jsongraph.Response{}, err
	}

	var res jsongraph.Response
	for _, userID := range userIDs {
		inv, err := r.deps.Investigations.SwitchActive(ctx, r.sess, userID, investigationID)
		if err != nil {
			return jsongraph.Response{}, err
		}
		res.Set(jsongraph.NewRef(jsongraph.InvestigationsByID, inv.ID), jsongraph.UsersByID, userID, "activeInvestigation")
	}
	res.Set(r.app().Total(), "total")
	res.Invalidate(jsongraph.P("pivots"))
	return res, nil
}

func (r *appRoutes) saveInvestigations(ctx context.Context, m router.Match, _ router.Args) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	saved, err := r.deps.Investigations.Save(ctx, r.sess, ids)
	if err != nil {
		return jsongraph.Response{}, err
	}
	var res jsongraph.Response
	for _, inv := range saved {
		res.Set(inv.ModifiedOn, jsongraph.InvestigationsByID, inv.ID, "modifiedOn")
		res.Set([]string{}, jsongraph.InvestigationsByID, inv.ID, "detachedPivots")
	}
	return res, nil
}

// setPivotField takes a field name and its new value.
func (r *appRoutes) setPivotField(_ context.Context, m router.Match, args router.Args) (jsongraph.Response, error) {
	ids, err := m.Names("ids")
	if err != nil {
		return jsongraph.Response{}, err
	}
	name, err := args.String(0)
	if err != nil {
		return jsongraph.Response{}, err
	}
	var value any
	if args.Has(1) {
		value = args[1]
	}

	var res jsongraph.Response
	for _, id := range ids {
		p, err := r.app().Pivot(id)
		if err != nil {
			return jsongraph.Response{}, err
		}
		p.Fields.Set(name, value)
		res.Set(value, jsongraph.PivotsByID, id, name)
		res.Set(p.Fields.Len(), jsongraph.PivotsByID, id, "length")
	}
	return res, nil
}
