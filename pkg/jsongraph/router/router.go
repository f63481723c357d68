// Package router resolves path queries and calls against an ordered table
// of routes.
package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pivot-graph-be/pkg/flow"
	"pivot-graph-be/pkg/jsongraph"
)

const defaultMaxHops = 8

// GetHandler produces the values of a matched get route.
type GetHandler func(ctx context.Context, m Match) (jsongraph.Response, error)

// CallHandler performs the mutation of a matched call route and returns the
// values that changed plus the paths it invalidated.
type CallHandler func(ctx context.Context, m Match, args Args) (jsongraph.Response, error)

// Route is one entry of the route table. A route carries a Get handler, a
// Call handler, or both.
type Route struct {
	Name    string
	Pattern Pattern
	Get     GetHandler
	Call    CallHandler
}

func (r Route) name() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern.String()
}

// Observer is notified after every handler invocation.
type Observer interface {
	ObserveRoute(kind, route string, elapsed time.Duration, err error)
}

type Option func(*Router)

// WithObserver registers an observer of handler invocations.
func WithObserver(o Observer) Option {
	return func(r *Router) { r.observer = o }
}

// WithMaxHops bounds how many references a single path may traverse.
func WithMaxHops(n int) Option {
	return func(r *Router) { r.maxHops = n }
}

type Router struct {
	routes   []Route
	maxHops  int
	observer Observer
}

func New(routes []Route, opts ...Option) *Router {
	r := &Router{routes: routes, maxHops: defaultMaxHops}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get resolves every path. Paths resolve concurrently and their values are
// merged in completion order. A failing path yields an error value or an
// invalidation at its own location and never affects its siblings.
func (r *Router) Get(ctx context.Context, paths []jsongraph.Path) jsongraph.Response {
	parts, _ := flow.FanOut(ctx, paths, func(ctx context.Context, p jsongraph.Path) (jsongraph.Response, error) {
		res, err := flow.Safe(func() (jsongraph.Response, error) { return r.resolve(ctx, p, 0) })
		if err != nil {
			return failure(p, err), nil
		}
		return res, nil
	})

	out := jsongraph.Response{}
	for _, part := range parts {
		out.Merge(part)
	}
	out.Normalize()
	return out
}

// Call runs the call route matching path. When no call route matches, a
// get route matching a prefix that resolves to a reference redirects the
// call onto the referenced entity.
func (r *Router) Call(ctx context.Context, path jsongraph.Path, args Args) (jsongraph.Response, error) {
	res, err := r.call(ctx, path, args, 0)
	if err != nil {
		return jsongraph.Response{}, err
	}
	res.Normalize()
	return res, nil
}

func (r *Router) call(ctx context.Context, path jsongraph.Path, args Args, hops int) (jsongraph.Response, error) {
	if hops > r.maxHops {
		return jsongraph.Response{}, fmt.Errorf("call %s: reference chain longer than %d hops", path, r.maxHops)
	}

	for _, route := range r.routes {
		if route.Call == nil {
			continue
		}
		m, ok := route.Pattern.match(path, true)
		if !ok {
			continue
		}
		start := time.Now()
		res, err := route.Call(ctx, m, args)
		r.observe("call", route.name(), start, err)
		return res, err
	}

	for n := len(path) - 1; n > 0; n-- {
		prefix := path[:n]
		route, m, ok := r.find(prefix, true)
		if !ok {
			continue
		}
		res, err := r.runGet(ctx, route, m)
		if err != nil {
			return jsongraph.Response{}, err
		}
		for _, pv := range res.Values {
			ref, isRef := asRef(pv.Value)
			if !isRef || pv.Path.String() != prefix.String() {
				continue
			}
			return r.call(ctx, ref.Path().Concat(path[n:]), args, hops+1)
		}
	}

	return jsongraph.Response{}, &jsongraph.NoMatchingRouteError{Path: path}
}

func (r *Router) resolve(ctx context.Context, path jsongraph.Path, hops int) (jsongraph.Response, error) {
	if hops > r.maxHops {
		return jsongraph.Response{}, fmt.Errorf("reference chain longer than %d hops", r.maxHops)
	}

	if route, m, ok := r.find(path, true); ok {
		return r.runGet(ctx, route, m)
	}

	if route, m, ok := r.findPrefix(path); ok {
		res, err := r.runGet(ctx, route, m)
		if err != nil {
			return jsongraph.Response{}, err
		}
		return r.follow(ctx, res, path[len(m.Path):], hops), nil
	}

	if parts, ok := splitFirstMulti(path); ok {
		out := jsongraph.Response{}
		for _, p := range parts {
			res, err := r.resolve(ctx, p, hops)
			if err != nil {
				res = failure(p, err)
			}
			out.Merge(res)
		}
		return out, nil
	}

	return jsongraph.Response{}, &jsongraph.NoMatchingRouteError{Path: path}
}

// follow resolves the remainder of a path through every reference the
// prefix produced. A reference to a missing entity invalidates the path
// that held it.
func (r *Router) follow(ctx context.Context, res jsongraph.Response, rest jsongraph.Path, hops int) jsongraph.Response {
	out := jsongraph.Response{Invalidations: res.Invalidations}
	for _, pv := range res.Values {
		out.Add(pv)
		ref, ok := asRef(pv.Value)
		if !ok {
			continue
		}
		target := ref.Path().Concat(rest)
		sub, err := r.resolve(ctx, target, hops+1)
		if err != nil {
			var missing *jsongraph.MissingReferenceError
			if errors.As(err, &missing) {
				out.Invalidate(pv.Path)
				continue
			}
			sub = failure(target, err)
		}
		out.Merge(sub)
	}
	return out
}

func (r *Router) runGet(ctx context.Context, route Route, m Match) (jsongraph.Response, error) {
	start := time.Now()
	res, err := route.Get(ctx, m)
	r.observe("get", route.name(), start, err)
	return res, err
}

// find returns the first get route in declaration order whose pattern
// matches path exactly.
func (r *Router) find(path jsongraph.Path, exact bool) (Route, Match, bool) {
	for _, route := range r.routes {
		if route.Get == nil {
			continue
		}
		if m, ok := route.Pattern.match(path, exact); ok {
			return route, m, true
		}
	}
	return Route{}, Match{}, false
}

// findPrefix returns the get route matching the longest strict prefix of
// path. Declaration order breaks ties.
func (r *Router) findPrefix(path jsongraph.Path) (Route, Match, bool) {
	var (
		best  Route
		bestM Match
		found bool
	)
	for _, route := range r.routes {
		if route.Get == nil {
			continue
		}
		m, ok := route.Pattern.match(path, false)
		if !ok {
			continue
		}
		if !found || len(m.Path) > len(bestM.Path) {
			best, bestM, found = route, m, true
		}
	}
	return best, bestM, found
}

func (r *Router) observe(kind, name string, start time.Time, err error) {
	if r.observer != nil {
		r.observer.ObserveRoute(kind, name, time.Since(start), err)
	}
}

// splitFirstMulti splits path on its first segment holding several keys.
func splitFirstMulti(path jsongraph.Path) ([]jsongraph.Path, bool) {
	for i, seg := range path {
		if len(seg) < 2 || seg.HasRanges() {
			continue
		}
		out := make([]jsongraph.Path, 0, len(seg))
		for _, sel := range seg {
			p := make(jsongraph.Path, len(path))
			copy(p, path)
			p[i] = jsongraph.Segment{sel}
			out = append(out, p)
		}
		return out, true
	}
	return nil, false
}

func failure(path jsongraph.Path, err error) jsongraph.Response {
	var out jsongraph.Response
	var missing *jsongraph.MissingReferenceError
	if errors.As(err, &missing) {
		out.Invalidate(path)
		return out
	}
	out.Add(jsongraph.NewPathValue(path, jsongraph.NewErrorValue(err)))
	return out
}

func asRef(v any) (jsongraph.Ref, bool) {
	switch t := v.(type) {
	case jsongraph.Ref:
		return t, true
	case *jsongraph.Ref:
		if t != nil {
			return *t, true
		}
	}
	return jsongraph.Ref{}, false
}
