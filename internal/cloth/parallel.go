package cloth

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the particle count below which per-particle passes run
// on the calling goroutine.
const parallelThreshold = 4096

// parallelFor runs fn over disjoint chunks of [0, n). Each index is visited by
// exactly one goroutine, so fn may mutate element i without locking.
func parallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
