package features

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps small batches on a single goroutine.
const minChunk = 256

// ExtractAll computes the vectors of many passwords in parallel. The result
// is index-aligned with the input.
func ExtractAll(ctx context.Context, passwords []string) ([]Vector, error) {
	vectors := make([]Vector, len(passwords))
	if len(passwords) == 0 {
		return vectors, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := max(minChunk, (len(passwords)+workers-1)/workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(passwords); start += chunk {
		end := min(start+chunk, len(passwords))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				vectors[i] = Extract(passwords[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
