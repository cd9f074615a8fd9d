/*
Package device implements an in-process compute accelerator.

A Device owns a library of named kernels, hands out shared memory buffers and
command queues, and executes compute pipelines dispatched as a one dimensional
grid of logical threads grouped into work-groups. Work-groups are spread over
the host cores; a command buffer completes only when every group is done.
*/
package device

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pbnjay/memory"
)

// DefaultMaxThreadsPerGroup is the work-group size limit reported by the
// default device.
const DefaultMaxThreadsPerGroup = 1024

// Device is a handle to a compute accelerator.
type Device struct {
	Name               string
	TotalMem           uint64
	NumCores           int
	MaxThreadsPerGroup int

	library *Library
}

var (
	defaultDevice *Device
	defaultErr    error
	initOnce      sync.Once
)

// Default returns the process wide device, creating it on first use.
// Every caller gets the same handle or the same error.
func Default() (*Device, error) {
	initOnce.Do(func() {
		defaultDevice, defaultErr = New("emulated", runtime.NumCPU(), DefaultMaxThreadsPerGroup, DefaultLibrary())
	})
	return defaultDevice, defaultErr
}

// New creates a device with the given number of execution cores, work-group
// limit and kernel library.
func New(name string, cores, maxThreadsPerGroup int, lib *Library) (*Device, error) {
	if cores <= 0 {
		return nil, fmt.Errorf("%w: %d cores", ErrNoDevice, cores)
	} else if maxThreadsPerGroup <= 0 {
		return nil, fmt.Errorf("%w: max %d threads per group", ErrNoDevice, maxThreadsPerGroup)
	} else if lib == nil {
		return nil, fmt.Errorf("%w: no kernel library", ErrNoDevice)
	}

	return &Device{
		Name:               name,
		TotalMem:           memory.TotalMemory(),
		NumCores:           cores,
		MaxThreadsPerGroup: maxThreadsPerGroup,
		library:            lib,
	}, nil
}

// DefaultLibrary returns the kernel library the device was created with.
func (d *Device) DefaultLibrary() *Library {
	return d.library
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%d cores, %d threads/group)", d.Name, d.NumCores, d.MaxThreadsPerGroup)
}
