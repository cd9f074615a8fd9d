package device

import "errors"

var (
	// ErrNoDevice is returned when no usable accelerator could be created.
	ErrNoDevice = errors.New("no compute device available")
	// ErrKernelNotFound is returned when a library has no kernel with the requested name.
	ErrKernelNotFound = errors.New("kernel not found")
	// ErrInvalidPipeline is returned when a compute pipeline can't be built.
	ErrInvalidPipeline = errors.New("invalid compute pipeline")
	// ErrInvalidGroupSize is returned when a dispatch exceeds the pipeline work-group limit.
	ErrInvalidGroupSize = errors.New("invalid work-group size")
	// ErrOutOfMemory is returned when a buffer can't be allocated.
	ErrOutOfMemory = errors.New("out of device memory")
	// ErrQueueClosed is returned when committing to a closed command queue.
	ErrQueueClosed = errors.New("command queue closed")
	// ErrAlreadyCommitted is returned when a command buffer is committed twice.
	ErrAlreadyCommitted = errors.New("command buffer already committed")
)
