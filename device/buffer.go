package device

import (
	"fmt"
	"unsafe"
)

// Float32Stride is the distance in bytes between two consecutive float32
// elements of a buffer. Every buffer length is a multiple of it.
const Float32Stride = int(unsafe.Sizeof(float32(0)))

// Buffer is a block of memory visible to both the host and the kernels.
type Buffer struct {
	data []float32
}

// NewBuffer allocates a zeroed buffer of length bytes.
func (d *Device) NewBuffer(length int) (*Buffer, error) {
	if length < 0 || length%Float32Stride != 0 {
		return nil, fmt.Errorf("%w: bad length %d", ErrOutOfMemory, length)
	} else if d.TotalMem > 0 && uint64(length) > d.TotalMem {
		return nil, fmt.Errorf("%w: %d bytes requested", ErrOutOfMemory, length)
	}
	return &Buffer{data: make([]float32, length/Float32Stride)}, nil
}

// NewBufferWithData allocates a buffer of Float32Stride * len(src) bytes
// and copies src into it.
func (d *Device) NewBufferWithData(src []float32) (*Buffer, error) {
	buf, err := d.NewBuffer(Float32Stride * len(src))
	if err != nil {
		return nil, err
	}
	copy(buf.data, src)
	return buf, nil
}

// Length returns the buffer size in bytes.
func (b *Buffer) Length() int {
	return len(b.data) * Float32Stride
}

// Count returns the number of float32 elements in the buffer.
func (b *Buffer) Count() int {
	return len(b.data)
}

// Contents gives direct access to the buffer memory.
func (b *Buffer) Contents() []float32 {
	return b.data
}

// ReadInto copies the buffer contents into dst and returns the number of
// elements copied.
func (b *Buffer) ReadInto(dst []float32) int {
	return copy(dst, b.data)
}
