package pathing

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Query is one start/end pair for FindPaths.
type Query struct {
	Start Vector3i `json:"start"`
	End   Vector3i `json:"end"`
}

// Result is the outcome of one Query. Plan is nil when Err is set.
type Result struct {
	Query Query
	Plan  *Plan
	Stats SearchStats
	Err   error
}

// FindPaths runs independent searches over g in parallel, at most limit at a
// time (no limit when limit <= 0). Results are in query order.
//
// A missing path is recorded on its Result. Any other failure, or ctx being
// cancelled, aborts the whole batch. g must not be mutated while this runs.
func FindPaths(ctx context.Context, g *Graph, queries []Query, limit int) ([]Result, error) {
	results := make([]Result, len(queries))

	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, q := range queries {
		i, q := i, q // per-iteration copies (Go <1.22 loop semantics)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			plan, stats, err := g.Route(q.Start, q.End)
			results[i] = Result{Query: q, Plan: plan, Stats: stats, Err: err}
			if err != nil && !errors.Is(err, ErrNoPath) && !errors.Is(err, ErrEmptyGraph) {
				return err
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
