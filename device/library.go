package device

import (
	"fmt"
	"sort"
	"sync"
)

// AdditionKernel is the name of the elementwise addition kernel shipped in
// the default library. It reads buffers 0 and 1 and writes buffer 2.
const AdditionKernel = "addition_compute_function"

// ThreadID identifies one logical kernel thread inside a dispatch.
type ThreadID struct {
	GroupIdx  int // index of the work-group within the grid
	ThreadIdx int // index of the thread within its work-group
	GroupDim  int // threads per work-group
	GridDim   int // total threads in the grid
}

// Global returns the position of the thread within the whole grid.
func (tid ThreadID) Global() int {
	return tid.GroupIdx*tid.GroupDim + tid.ThreadIdx
}

// Kernel is the body of a compute function, invoked once per logical thread.
// Kernels run concurrently and must only write the indexes they own.
type Kernel func(tid ThreadID, args []*Buffer)

// Function is a named kernel looked up from a Library.
type Function struct {
	Name   string
	Kernel Kernel
}

// Library is a set of kernels addressable by name.
type Library struct {
	sync.RWMutex
	kernels map[string]Kernel
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{
		kernels: make(map[string]Kernel),
	}
}

// DefaultLibrary returns a library holding the built-in kernels.
func DefaultLibrary() *Library {
	lib := NewLibrary()
	lib.Register(AdditionKernel, additionCompute)
	return lib
}

// Register adds or replaces a kernel.
func (l *Library) Register(name string, k Kernel) {
	l.Lock()
	defer l.Unlock()
	l.kernels[name] = k
}

// Names returns the sorted list of kernel names.
func (l *Library) Names() []string {
	l.RLock()
	defer l.RUnlock()

	names := make([]string, 0, len(l.kernels))
	for name := range l.kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MakeFunction looks up a kernel by name.
func (l *Library) MakeFunction(name string) (*Function, error) {
	l.RLock()
	defer l.RUnlock()

	k, found := l.kernels[name]
	if !found || k == nil {
		return nil, fmt.Errorf("%w: %s", ErrKernelNotFound, name)
	}
	return &Function{Name: name, Kernel: k}, nil
}

func additionCompute(tid ThreadID, args []*Buffer) {
	i := tid.Global()
	args[2].data[i] = args[0].data[i] + args[1].data[i]
}
