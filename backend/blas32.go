package backend

import (
	"fmt"

	"github.com/evilsocket/sumbench/device"

	"gonum.org/v1/gonum/blas/blas32"
)

// matrixSum adds count matrices of rows x columns float32 elements.
type matrixSum struct {
	count   int
	rows    int
	columns int
}

func newMatrixSum(count, rows, columns int) (*matrixSum, error) {
	if count < 1 {
		return nil, fmt.Errorf("matrix sum needs at least one source, got %d", count)
	} else if rows < 0 || columns < 0 {
		return nil, fmt.Errorf("invalid matrix sum shape %dx%d", rows, columns)
	}
	return &matrixSum{count: count, rows: rows, columns: columns}, nil
}

func (m *matrixSum) check(name string, g blas32.General) error {
	if g.Rows != m.rows || g.Cols != m.columns {
		return fmt.Errorf("%s matrix is %dx%d, expected %dx%d", name, g.Rows, g.Cols, m.rows, m.columns)
	} else if g.Rows > 0 && (g.Stride < g.Cols || len(g.Data) < (g.Rows-1)*g.Stride+g.Cols) {
		return fmt.Errorf("%s matrix data is too short for stride %d", name, g.Stride)
	}
	return nil
}

func row(g blas32.General, r int) blas32.Vector {
	return blas32.Vector{
		Inc:  1,
		Data: g.Data[r*g.Stride : r*g.Stride+g.Cols],
	}
}

// Encode records result = sum(sources) on the command buffer.
func (m *matrixSum) Encode(cb *device.CommandBuffer, sources []blas32.General, result blas32.General) error {
	if len(sources) != m.count {
		return fmt.Errorf("matrix sum expects %d sources, got %d", m.count, len(sources))
	}
	for i, src := range sources {
		if err := m.check(fmt.Sprintf("source %d", i), src); err != nil {
			return err
		}
	}
	if err := m.check("result", result); err != nil {
		return err
	}

	cb.AddCommand(func() error {
		if m.columns == 0 {
			return nil
		}
		for r := 0; r < m.rows; r++ {
			y := row(result, r)
			blas32.Copy(m.columns, row(sources[0], r), y)
			for _, src := range sources[1:] {
				blas32.Axpy(m.columns, 1, row(src, r), y)
			}
		}
		return nil
	})
	return nil
}

func asMatrix(data []float32) blas32.General {
	return blas32.General{
		Rows:   1,
		Cols:   len(data),
		Stride: len(data),
		Data:   data,
	}
}

// upload copies every host slice into a device buffer and returns the
// buffers as 1xN matrices.
func upload(dev *device.Device, host ...[]float32) ([]blas32.General, error) {
	matrices := make([]blas32.General, 0, len(host))
	for _, data := range host {
		buf, err := dev.NewBufferWithData(data)
		if err != nil {
			return nil, err
		}
		matrices = append(matrices, asMatrix(buf.Contents()))
	}
	return matrices, nil
}

type primitive struct {
	device *device.Device
	queue  *device.Queue
}

func newPrimitive(dev *device.Device) (*primitive, error) {
	queue, err := dev.NewCommandQueue()
	if err != nil {
		return nil, err
	}
	return &primitive{
		device: dev,
		queue:  queue,
	}, nil
}

func (impl *primitive) Name() string {
	return "primitive"
}

func (impl *primitive) Space() uint64 {
	return impl.device.TotalMem
}

func (impl *primitive) Close() error {
	impl.queue.Close()
	return nil
}

// Sum uploads the inputs, treats them and the result as 1xN matrices and
// lets a blas32 matrix sum run on the device queue, waiting for it to complete.
func (impl *primitive) Sum(a, b []float32) ([]float32, error) {
	if err := checkSizes(a, b); err != nil {
		return nil, err
	}

	n := len(a)
	sum, err := newMatrixSum(2, 1, n)
	if err != nil {
		return nil, err
	}

	sources, err := upload(impl.device, a, b)
	if err != nil {
		return nil, err
	}
	bufC, err := impl.device.NewBuffer(device.Float32Stride * n)
	if err != nil {
		return nil, err
	}

	cb := impl.queue.CommandBuffer()
	if err := sum.Encode(cb, sources, asMatrix(bufC.Contents())); err != nil {
		return nil, err
	}

	if err := cb.Commit(); err != nil {
		return nil, err
	} else if err := cb.WaitUntilCompleted(); err != nil {
		return nil, fmt.Errorf("matrix sum failed: %w", err)
	}

	result := make([]float32, n)
	bufC.ReadInto(result)
	return result, nil
}
