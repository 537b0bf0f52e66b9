package voldata

import (
	"runtime"
	"sync"
)

// forEachSlice runs fn(z) for z in [0, n) across NumCPU workers. Slices are
// striped over workers; fn must only touch state disjoint per z.
func forEachSlice(n int, fn func(z int)) {
	if n <= 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for z := w; z < n; z += workers {
				fn(z)
			}
		}(w)
	}
	wg.Wait()
}
