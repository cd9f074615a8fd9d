package backend

import (
	"errors"
	"fmt"
	"io"

	"github.com/evilsocket/sumbench/device"
)

var (
	// ErrUnknownBackend is returned by New for names not in Names.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrSizeMismatch is returned by Sum when the inputs have different lengths.
	ErrSizeMismatch = errors.New("input arrays have different sizes")
)

// Names lists the available backends in the order they are benchmarked.
var Names = []string{"serial", "parallel", "kernel", "primitive"}

// Backend computes the elementwise sum of two arrays into a new one.
type Backend interface {
	Name() string
	Space() uint64

	Sum(a, b []float32) ([]float32, error)
}

// Options tune the backends that support it.
type Options struct {
	// Workers is the parallel backend pool size, zero means one per core.
	Workers int
	// GroupSize limits the kernel work-group size, zero means the device maximum.
	GroupSize int
}

// New creates the backend with the given name. Device backends acquire the
// process wide device and fail if it, or anything they need from it, is not
// available.
func New(name string, opts Options) (Backend, error) {
	switch name {
	case "serial":
		return serial{}, nil
	case "parallel":
		return newParallel(opts.Workers), nil
	case "kernel":
		dev, err := device.Default()
		if err != nil {
			return nil, err
		}
		k, err := newKernel(dev, opts.GroupSize)
		if err != nil {
			return nil, err
		}
		return k, nil
	case "primitive":
		dev, err := device.Default()
		if err != nil {
			return nil, err
		}
		p, err := newPrimitive(dev)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
}

// NewAll creates the backends in the given order, closing the ones already
// created if any of them fails.
func NewAll(names []string, opts Options) ([]Backend, error) {
	list := make([]Backend, 0, len(names))
	for _, name := range names {
		b, err := New(name, opts)
		if err != nil {
			Close(list)
			return nil, fmt.Errorf("cannot create %s backend: %w", name, err)
		}
		list = append(list, b)
	}
	return list, nil
}

// Close releases the resources held by the backends that have any.
func Close(list []Backend) {
	for _, b := range list {
		if c, ok := b.(io.Closer); ok {
			c.Close()
		}
	}
}

func checkSizes(a, b []float32) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d != %d", ErrSizeMismatch, len(a), len(b))
	}
	return nil
}
