package simulation

import "golang.org/x/sync/errgroup"

// DefaultParallelThreshold is the population size below which a step runs
// on the calling goroutine. Under it the goroutine overhead dominates.
const DefaultParallelThreshold = 256

// forEach calls fn(i) for every i in [0, n), splitting the range into one
// contiguous chunk per worker when n is large enough. fn must only write
// to slot i of its output; the frozen world it reads is shared.
func (f *Flock) forEach(n int, fn func(i int)) {
	if n < f.parallelThreshold || f.workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + f.workers - 1) / f.workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	// workers never fail
	_ = g.Wait()
}
