// Package flow holds the two composition primitives the graph services use:
// a fan-out/join over a batch and a latest-wins sequential hand-off.
package flow

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FanOut runs fn for every item concurrently and waits for all of them.
// Results are collected in completion order, not input order. The first
// error is returned once every started branch has finished. A branch that
// panics fails with a *PanicError.
func FanOut[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		results = make([]R, 0, len(items))
	)

	g, gCtx := errgroup.WithContext(ctx)
	for _, item := range items {
		item := item
		g.Go(func() error {
			r, err := Safe(func() (R, error) { return fn(gCtx, item) })
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Each is FanOut for branches that produce no value.
func Each[T any](ctx context.Context, items []T, fn func(context.Context, T) error) error {
	_, err := FanOut(ctx, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}
