package graph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap runs fn for every item concurrently, at most limit at a time (limit <= 0 means
// unbounded). Item failures are reported per index and do not stop siblings. Results are indexed
// by input position, so the caller can merge them in a fixed order after the barrier.
// If ctx ends before every item finishes, the partial results are discarded and ctx.Err() returned.
func ParallelMap[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, []error, error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = fn(gctx, i, item)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}
