// Package asyncx runs a function over a slice concurrently.
package asyncx

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// All calls fn for every item concurrently and returns the results in item
// order. The first error cancels the context passed to the remaining calls
// and is returned once every call has finished.
func All[T any, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	return AllLimit(ctx, -1, items, fn)
}

// AllLimit is All with at most limit calls in flight. A negative limit
// means no limit.
func AllLimit[T any, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, item := range items {
		eg.Go(func() error {
			r, err := fn(egCtx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// parent cancelled while every call still succeeded
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
