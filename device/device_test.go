package device

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func testDevice(t *testing.T, cores, maxThreads int) *Device {
	d, err := New("test", cores, maxThreads, DefaultLibrary())
	require.NoError(t, err)
	return d
}

func addition(t *testing.T, d *Device, maxThreads int) *Pipeline {
	fn, err := d.DefaultLibrary().MakeFunction(AdditionKernel)
	require.NoError(t, err)
	p, err := d.NewComputePipeline(fn, maxThreads)
	require.NoError(t, err)
	return p
}

func TestDefaultIsShared(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	require.True(t, a == b)
	require.Equal(t, DefaultMaxThreadsPerGroup, a.MaxThreadsPerGroup)
	require.Contains(t, a.DefaultLibrary().Names(), AdditionKernel)
}

func TestNewInvalid(t *testing.T) {
	_, err := New("none", 0, 1024, DefaultLibrary())
	require.True(t, errors.Is(err, ErrNoDevice))

	_, err = New("none", 4, 0, DefaultLibrary())
	require.True(t, errors.Is(err, ErrNoDevice))

	_, err = New("none", 4, 1024, nil)
	require.True(t, errors.Is(err, ErrNoDevice))
}

func TestMakeFunctionNotFound(t *testing.T) {
	d := testDevice(t, 2, 64)
	fn, err := d.DefaultLibrary().MakeFunction("subtraction_compute_function")
	require.Nil(t, fn)
	require.True(t, errors.Is(err, ErrKernelNotFound))
	require.Contains(t, err.Error(), "subtraction_compute_function")
}

func TestNewComputePipeline(t *testing.T) {
	d := testDevice(t, 2, 64)

	p := addition(t, d, 0)
	require.Equal(t, 64, p.MaxTotalThreadsPerGroup())
	require.Equal(t, AdditionKernel, p.FunctionName())

	p = addition(t, d, 16)
	require.Equal(t, 16, p.MaxTotalThreadsPerGroup())

	fn, _ := d.DefaultLibrary().MakeFunction(AdditionKernel)
	_, err := d.NewComputePipeline(fn, 65)
	require.True(t, errors.Is(err, ErrInvalidPipeline))

	_, err = d.NewComputePipeline(nil, 0)
	require.True(t, errors.Is(err, ErrInvalidPipeline))
}

func TestBufferStrideSizing(t *testing.T) {
	d := testDevice(t, 1, 1)

	buf, err := d.NewBufferWithData([]float32{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3*Float32Stride, buf.Length())
	require.Equal(t, 3, buf.Count())
	require.Equal(t, []float32{1, 2, 3}, buf.Contents())

	buf, err = d.NewBuffer(0)
	require.NoError(t, err)
	require.Equal(t, 0, buf.Count())

	_, err = d.NewBuffer(Float32Stride + 1)
	require.True(t, errors.Is(err, ErrOutOfMemory))
}

func TestDispatchAddition(t *testing.T) {
	for _, tc := range []struct {
		n, cores, group int
	}{
		{0, 4, 8},
		{1, 4, 8},
		{7, 4, 8},
		{8, 4, 8},
		{1000, 3, 64},
		{1025, 8, 1024},
	} {
		d := testDevice(t, tc.cores, 1024)
		p := addition(t, d, 0)
		q, err := d.NewCommandQueue()
		require.NoError(t, err)

		a := make([]float32, tc.n)
		b := make([]float32, tc.n)
		for i := range a {
			a[i] = float32(i % 10)
			b[i] = float32((i * 7) % 10)
		}

		bufA, _ := d.NewBufferWithData(a)
		bufB, _ := d.NewBufferWithData(b)
		bufC, _ := d.NewBuffer(Float32Stride * tc.n)

		cb := q.CommandBuffer()
		enc := cb.ComputeEncoder()
		enc.SetComputePipelineState(p)
		enc.SetBuffer(bufA, 0)
		enc.SetBuffer(bufB, 1)
		enc.SetBuffer(bufC, 2)
		require.NoError(t, enc.DispatchThreads(tc.n, tc.group))
		enc.EndEncoding()

		require.NoError(t, cb.Commit())
		require.NoError(t, cb.WaitUntilCompleted())

		out := make([]float32, tc.n)
		require.Equal(t, tc.n, bufC.ReadInto(out))
		for i := range out {
			require.Equal(t, a[i]+b[i], out[i], "n=%d i=%d", tc.n, i)
		}

		q.Close()
	}
}

func TestDispatchVisitsEveryThreadOnce(t *testing.T) {
	lib := NewLibrary()
	counts := make([]int32, 333)
	lib.Register("count", func(tid ThreadID, _ []*Buffer) {
		atomic.AddInt32(&counts[tid.Global()], 1)
	})

	d, err := New("count", 5, 32, lib)
	require.NoError(t, err)
	fn, err := lib.MakeFunction("count")
	require.NoError(t, err)
	p, err := d.NewComputePipeline(fn, 0)
	require.NoError(t, err)
	q, err := d.NewCommandQueue()
	require.NoError(t, err)
	defer q.Close()

	cb := q.CommandBuffer()
	enc := cb.ComputeEncoder()
	enc.SetComputePipelineState(p)
	require.NoError(t, enc.DispatchThreads(len(counts), 32))
	enc.EndEncoding()
	require.NoError(t, cb.Commit())
	require.NoError(t, cb.WaitUntilCompleted())

	for i, c := range counts {
		require.Equal(t, int32(1), c, "thread %d", i)
	}
}

func TestDispatchValidation(t *testing.T) {
	d := testDevice(t, 2, 64)
	q, err := d.NewCommandQueue()
	require.NoError(t, err)
	defer q.Close()

	enc := q.CommandBuffer().ComputeEncoder()
	require.True(t, errors.Is(enc.DispatchThreads(10, 8), ErrInvalidPipeline))

	enc.SetComputePipelineState(addition(t, d, 16))
	require.True(t, errors.Is(enc.DispatchThreads(10, 32), ErrInvalidGroupSize))
	require.True(t, errors.Is(enc.DispatchThreads(10, 0), ErrInvalidGroupSize))

	enc.SetBuffer(nil, 1)
	require.Error(t, enc.DispatchThreads(10, 8))
}

func TestKernelPanicIsReported(t *testing.T) {
	d := testDevice(t, 2, 64)
	q, err := d.NewCommandQueue()
	require.NoError(t, err)
	defer q.Close()

	small, _ := d.NewBuffer(Float32Stride)
	cb := q.CommandBuffer()
	enc := cb.ComputeEncoder()
	enc.SetComputePipelineState(addition(t, d, 0))
	enc.SetBuffer(small, 0)
	enc.SetBuffer(small, 1)
	enc.SetBuffer(small, 2)
	require.NoError(t, enc.DispatchThreads(16, 8))
	enc.EndEncoding()

	require.NoError(t, cb.Commit())
	err = cb.WaitUntilCompleted()
	require.Error(t, err)
	require.Contains(t, err.Error(), AdditionKernel)
}

func TestCommandBufferLifecycle(t *testing.T) {
	d := testDevice(t, 1, 1)
	q, err := d.NewCommandQueue()
	require.NoError(t, err)

	ran := 0
	cb := q.CommandBuffer()
	require.Error(t, cb.WaitUntilCompleted())

	cb.AddCommand(func() error { ran++; return nil })
	cb.AddCommand(func() error { return errors.New("boom") })
	cb.AddCommand(func() error { ran++; return nil })

	require.NoError(t, cb.Commit())
	require.Equal(t, ErrAlreadyCommitted, cb.Commit())
	require.EqualError(t, cb.WaitUntilCompleted(), "boom")
	require.Equal(t, 1, ran)

	q.Close()
	q.Close()
	require.Equal(t, ErrQueueClosed, q.CommandBuffer().Commit())
}
