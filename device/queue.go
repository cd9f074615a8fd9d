package device

import (
	"fmt"
	"sync"
)

const queueDepth = 64

// Queue executes committed command buffers one at a time, in commit order.
type Queue struct {
	sync.Mutex
	device *Device
	tasks  chan *CommandBuffer
	done   chan struct{}
	closed bool
}

// NewCommandQueue creates a queue and starts its worker.
func (d *Device) NewCommandQueue() (*Queue, error) {
	if d == nil {
		return nil, ErrNoDevice
	}

	q := &Queue{
		device: d,
		tasks:  make(chan *CommandBuffer, queueDepth),
		done:   make(chan struct{}),
	}

	go q.worker()

	return q, nil
}

func (q *Queue) worker() {
	for cb := range q.tasks {
		cb.execute()
	}
	close(q.done)
}

// CommandBuffer creates an empty command buffer bound to this queue.
func (q *Queue) CommandBuffer() *CommandBuffer {
	return &CommandBuffer{
		queue:     q,
		completed: make(chan struct{}),
	}
}

// Close waits for the pending command buffers and stops the worker.
func (q *Queue) Close() {
	q.Lock()
	if q.closed {
		q.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.Unlock()

	<-q.done
}

func (q *Queue) submit(cb *CommandBuffer) error {
	q.Lock()
	defer q.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.tasks <- cb
	return nil
}

// CommandBuffer collects commands and runs them on its queue once committed.
type CommandBuffer struct {
	queue     *Queue
	commands  []func() error
	committed bool
	completed chan struct{}
	err       error
}

// AddCommand appends an arbitrary command. Library primitives encode
// themselves this way.
func (cb *CommandBuffer) AddCommand(cmd func() error) {
	cb.commands = append(cb.commands, cmd)
}

// ComputeEncoder returns an encoder recording dispatches into this buffer.
func (cb *CommandBuffer) ComputeEncoder() *ComputeEncoder {
	return &ComputeEncoder{cb: cb}
}

// Commit hands the buffer to its queue. It does not wait for completion.
func (cb *CommandBuffer) Commit() error {
	if cb.committed {
		return ErrAlreadyCommitted
	}
	cb.committed = true
	return cb.queue.submit(cb)
}

// WaitUntilCompleted blocks until the buffer has been executed and returns
// the first error raised by its commands.
func (cb *CommandBuffer) WaitUntilCompleted() error {
	if !cb.committed {
		return fmt.Errorf("command buffer was never committed")
	}
	<-cb.completed
	return cb.err
}

func (cb *CommandBuffer) execute() {
	defer close(cb.completed)
	for _, cmd := range cb.commands {
		if cb.err = cmd(); cb.err != nil {
			return
		}
	}
}

// ComputeEncoder records compute dispatches.
type ComputeEncoder struct {
	cb       *CommandBuffer
	pipeline *Pipeline
	buffers  []*Buffer
	ended    bool
}

// SetComputePipelineState selects the pipeline used by the next dispatches.
func (e *ComputeEncoder) SetComputePipelineState(p *Pipeline) {
	e.pipeline = p
}

// SetBuffer binds buf to the kernel argument at index.
func (e *ComputeEncoder) SetBuffer(buf *Buffer, index int) {
	for len(e.buffers) <= index {
		e.buffers = append(e.buffers, nil)
	}
	e.buffers[index] = buf
}

// DispatchThreads records a dispatch of grid threads in work-groups of
// group threads.
func (e *ComputeEncoder) DispatchThreads(grid, group int) error {
	if e.ended {
		return fmt.Errorf("encoding already ended")
	} else if e.pipeline == nil {
		return fmt.Errorf("%w: no pipeline set", ErrInvalidPipeline)
	} else if grid < 0 {
		return fmt.Errorf("invalid grid size %d", grid)
	} else if group <= 0 || group > e.pipeline.MaxTotalThreadsPerGroup() {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidGroupSize, group, e.pipeline.MaxTotalThreadsPerGroup())
	}

	for i, buf := range e.buffers {
		if buf == nil {
			return fmt.Errorf("buffer at index %d is not set", i)
		}
	}

	pipeline := e.pipeline
	args := make([]*Buffer, len(e.buffers))
	copy(args, e.buffers)

	e.cb.AddCommand(func() error {
		return pipeline.dispatch(args, grid, group)
	})
	return nil
}

// EndEncoding closes the encoder.
func (e *ComputeEncoder) EndEncoding() {
	e.ended = true
}
