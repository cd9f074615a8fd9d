package workload

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/pbnjay/memory"
)

// MaxValue is the largest value Random can generate.
const MaxValue = 9

// chunks smaller than this are generated by a single goroutine
const minChunk = 4096

// Pair holds the two read-only input arrays shared by every backend.
type Pair struct {
	A []float32
	B []float32
}

// NewPair validates and wraps two inputs of the same length.
func NewPair(a, b []float32) (*Pair, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("arrays have different sizes: %d != %d", len(a), len(b))
	}
	return &Pair{A: a, B: b}, nil
}

// RandomPair generates two random arrays of n elements.
func RandomPair(n int) *Pair {
	return &Pair{
		A: Random(n),
		B: Random(n),
	}
}

// Size returns the number of elements of each array.
func (p *Pair) Size() int {
	return len(p.A)
}

// Bytes returns the memory needed by the two inputs plus one result.
func (p *Pair) Bytes() uint64 {
	return 3 * uint64(p.Size()) * uint64(unsafe.Sizeof(float32(0)))
}

// Fits returns true if the pair and a result array fit in the system memory.
// It is optimistic when the total memory can't be determined.
func (p *Pair) Fits() bool {
	total := memory.TotalMemory()
	return total == 0 || p.Bytes() <= total
}

// Values returns its arguments as a slice, handy for fixed workloads.
func Values(vals ...float32) []float32 {
	if vals == nil {
		return []float32{}
	}
	return vals
}

// Random returns n floats uniformly drawn from the integers in [0, MaxValue].
// The slice is filled in parallel, each goroutine owning a disjoint range
// and its own random source.
func Random(n int) []float32 {
	data := make([]float32, n)
	if n == 0 {
		return data
	}

	workers := runtime.NumCPU()
	if limit := (n + minChunk - 1) / minChunk; limit < workers {
		workers = limit
	}
	chunk := (n + workers - 1) / workers
	seed := time.Now().UnixNano()

	wg := sync.WaitGroup{}
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(part []float32, seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := range part {
				part[i] = float32(r.Intn(MaxValue + 1))
			}
		}(data[start:end], seed+int64(start))
	}
	wg.Wait()

	return data
}
