package device

import (
	"fmt"
	"sync"
)

// Pipeline is a compiled compute function ready to be dispatched.
type Pipeline struct {
	device     *Device
	function   *Function
	maxThreads int
}

// NewComputePipeline builds a pipeline for fn. maxThreads limits the
// work-group size, zero means the device maximum.
func (d *Device) NewComputePipeline(fn *Function, maxThreads int) (*Pipeline, error) {
	if fn == nil || fn.Kernel == nil {
		return nil, fmt.Errorf("%w: missing function", ErrInvalidPipeline)
	} else if maxThreads < 0 || maxThreads > d.MaxThreadsPerGroup {
		return nil, fmt.Errorf("%w: %s max threads %d not in [0, %d]",
			ErrInvalidPipeline, fn.Name, maxThreads, d.MaxThreadsPerGroup)
	}

	if maxThreads == 0 {
		maxThreads = d.MaxThreadsPerGroup
	}

	return &Pipeline{
		device:     d,
		function:   fn,
		maxThreads: maxThreads,
	}, nil
}

// MaxTotalThreadsPerGroup is the largest work-group this pipeline accepts.
func (p *Pipeline) MaxTotalThreadsPerGroup() int {
	return p.maxThreads
}

// FunctionName returns the name of the kernel the pipeline runs.
func (p *Pipeline) FunctionName() string {
	return p.function.Name
}

// dispatch runs grid logical threads in groups of size group, spreading the
// groups over the device cores, and returns once all of them are done.
// The last group may be partial.
func (p *Pipeline) dispatch(args []*Buffer, grid, group int) (err error) {
	if grid == 0 {
		return nil
	}

	kernel := p.function.Kernel
	groups := (grid + group - 1) / group
	workers := p.device.NumCores
	if groups < workers {
		workers = groups
	}
	perWorker := (groups + workers - 1) / workers

	wg := sync.WaitGroup{}
	once := sync.Once{}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		first := w * perWorker
		last := first + perWorker
		if last > groups {
			last = groups
		}

		go func(first, last int) {
			defer wg.Done()
			defer func() {
				if e := recover(); e != nil {
					once.Do(func() {
						err = fmt.Errorf("kernel %s exception: %v", p.function.Name, e)
					})
				}
			}()

			for g := first; g < last; g++ {
				tid := ThreadID{GroupIdx: g, GroupDim: group, GridDim: grid}
				n := group
				if left := grid - g*group; left < n {
					n = left
				}
				for t := 0; t < n; t++ {
					tid.ThreadIdx = t
					kernel(tid, args)
				}
			}
		}(first, last)
	}

	wg.Wait()
	return
}
