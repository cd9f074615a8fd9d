package backend

import (
	"fmt"

	"github.com/evilsocket/sumbench/device"
)

type kernel struct {
	device   *device.Device
	pipeline *device.Pipeline
	queue    *device.Queue
}

func newKernel(dev *device.Device, groupSize int) (*kernel, error) {
	fn, err := dev.DefaultLibrary().MakeFunction(device.AdditionKernel)
	if err != nil {
		return nil, err
	}

	pipeline, err := dev.NewComputePipeline(fn, groupSize)
	if err != nil {
		return nil, err
	}

	queue, err := dev.NewCommandQueue()
	if err != nil {
		return nil, err
	}

	return &kernel{
		device:   dev,
		pipeline: pipeline,
		queue:    queue,
	}, nil
}

func (impl *kernel) Name() string {
	return "kernel"
}

func (impl *kernel) Space() uint64 {
	return impl.device.TotalMem
}

func (impl *kernel) Close() error {
	impl.queue.Close()
	return nil
}

// GroupSize returns the work-group width used for dispatches.
func (impl *kernel) GroupSize() int {
	return impl.pipeline.MaxTotalThreadsPerGroup()
}

// Sum uploads both inputs, runs one kernel thread per element and reads
// back the result once the command buffer is completed.
func (impl *kernel) Sum(a, b []float32) ([]float32, error) {
	if err := checkSizes(a, b); err != nil {
		return nil, err
	}

	n := len(a)
	bufA, err := impl.device.NewBufferWithData(a)
	if err != nil {
		return nil, err
	}
	bufB, err := impl.device.NewBufferWithData(b)
	if err != nil {
		return nil, err
	}
	bufC, err := impl.device.NewBuffer(device.Float32Stride * n)
	if err != nil {
		return nil, err
	}

	cb := impl.queue.CommandBuffer()
	enc := cb.ComputeEncoder()
	enc.SetComputePipelineState(impl.pipeline)
	enc.SetBuffer(bufA, 0)
	enc.SetBuffer(bufB, 1)
	enc.SetBuffer(bufC, 2)
	if err := enc.DispatchThreads(n, impl.GroupSize()); err != nil {
		return nil, err
	}
	enc.EndEncoding()

	if err := cb.Commit(); err != nil {
		return nil, err
	} else if err := cb.WaitUntilCompleted(); err != nil {
		return nil, fmt.Errorf("kernel %s failed: %w", impl.pipeline.FunctionName(), err)
	}

	result := make([]float32, n)
	bufC.ReadInto(result)
	return result, nil
}
