package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunBatch calls run for every index in [0, n) on a bounded set of goroutines.
// Each call must own its own Loop; loops are never shared between goroutines.
// The first error cancels the remaining work.
func RunBatch(ctx context.Context, n int, run func(ctx context.Context, idx int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		idx := i
		g.Go(func() error {
			return run(ctx, idx)
		})
	}
	return g.Wait()
}
