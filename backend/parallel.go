package backend

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pbnjay/memory"
)

type parallel struct {
	workers int
}

func newParallel(workers int) parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return parallel{workers: workers}
}

func (impl parallel) Name() string {
	return "parallel"
}

func (impl parallel) Space() uint64 {
	return memory.TotalMemory()
}

// Sum splits the indexes in contiguous ranges, one per worker, each worker
// writing only its own range of the result.
func (impl parallel) Sum(a, b []float32) ([]float32, error) {
	if err := checkSizes(a, b); err != nil {
		return nil, err
	}

	n := len(a)
	result := make([]float32, n)

	workers := impl.workers
	if workers > n {
		workers = n
	}
	if workers == 0 {
		return result, nil
	}

	chunk := (n + workers - 1) / workers
	errs := make([]error, workers)
	wg := sync.WaitGroup{}

	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			defer func() {
				if e := recover(); e != nil {
					errs[w] = fmt.Errorf("worker %d exception: %v", w, e)
				}
			}()

			out, va, vb := result[start:end], a[start:end], b[start:end]
			for i := range out {
				out[i] = va[i] + vb[i]
			}
		}(w, start, end)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
