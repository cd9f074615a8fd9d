package harness

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/evilsocket/sumbench/backend"
	"github.com/evilsocket/sumbench/workload"

	"github.com/dustin/go-humanize"
	"github.com/evilsocket/islazy/log"
	"gonum.org/v1/gonum/blas/blas32"
)

// ErrNoSpace is returned when a backend can't hold the workload.
var ErrNoSpace = errors.New("not enough backend memory")

// DefaultSamples is the number of result lines printed per backend.
const DefaultSamples = 3

// Sample is one printed element of a backend run.
type Sample struct {
	Index  int
	A      float32
	B      float32
	Result float32
}

// Result describes a single backend run.
type Result struct {
	Backend  string
	Elapsed  time.Duration
	Samples  []Sample
	Verified bool
	MaxError float64
}

// Harness runs each backend on the same inputs, one after the other.
type Harness struct {
	Out      io.Writer
	Backends []backend.Backend
	Samples  int
	Verify   bool

	mu      sync.Mutex
	results []Result
}

// New creates a harness printing DefaultSamples lines per backend to stdout.
func New(backends []backend.Backend) *Harness {
	return &Harness{
		Out:      os.Stdout,
		Backends: backends,
		Samples:  DefaultSamples,
	}
}

// Run benchmarks every backend against pair in order. It stops at the first
// backend returning an error.
func (h *Harness) Run(pair *workload.Pair) ([]Result, error) {
	h.mu.Lock()
	h.results = make([]Result, 0, len(h.Backends))
	h.mu.Unlock()

	for _, b := range h.Backends {
		res, err := h.RunOne(b, pair)
		if err != nil {
			return h.Results(), err
		}

		h.mu.Lock()
		h.results = append(h.results, res)
		h.mu.Unlock()
	}
	return h.Results(), nil
}

// Results returns the runs completed so far by Run. It can be called while
// Run is still going.
func (h *Harness) Results() []Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	results := make([]Result, len(h.results))
	copy(results, h.results)
	return results
}

// RunOne times a single backend and prints its block.
func (h *Harness) RunOne(b backend.Backend, pair *workload.Pair) (Result, error) {
	log.Debug("running %s backend on %d elements ...", b.Name(), pair.Size())

	// zero means the backend can't tell
	if space := b.Space(); space > 0 && pair.Bytes() > space {
		return Result{}, fmt.Errorf("%s backend: %w (%s needed, %s available)",
			b.Name(), ErrNoSpace, humanize.Bytes(pair.Bytes()), humanize.Bytes(space))
	}

	start := time.Now()
	sum, err := b.Sum(pair.A, pair.B)
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, fmt.Errorf("%s backend failed: %w", b.Name(), err)
	}

	res := Result{
		Backend: b.Name(),
		Elapsed: elapsed,
		Samples: samples(pair, sum, h.Samples),
	}

	if h.Verify {
		res.Verified = true
		res.MaxError = maxError(pair, sum)
		if res.MaxError != 0 {
			log.Warning("%s backend differs from a+b by up to %f", b.Name(), res.MaxError)
		}
	}

	h.print(res)

	return res, nil
}

func (h *Harness) print(res Result) {
	fmt.Fprintf(h.Out, "%s\n", res.Backend)
	for _, s := range res.Samples {
		fmt.Fprintf(h.Out, "%.1f + %.1f = %.1f\n", s.A, s.B, s.Result)
	}
	fmt.Fprintf(h.Out, "Time elapsed %.05f seconds\n", res.Elapsed.Seconds())
	fmt.Fprintln(h.Out)
}

func samples(pair *workload.Pair, sum []float32, limit int) []Sample {
	n := len(sum)
	if limit < n {
		n = limit
	}
	if n < 0 {
		n = 0
	}

	list := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, Sample{
			Index:  i,
			A:      pair.A[i],
			B:      pair.B[i],
			Result: sum[i],
		})
	}
	return list
}

// maxError returns the largest absolute difference between sum and a+b.
func maxError(pair *workload.Pair, sum []float32) float64 {
	n := pair.Size()
	if len(sum) != n {
		return math.Inf(1)
	} else if n == 0 {
		return 0
	}

	diff := make([]float32, n)
	d := blas32.Vector{Inc: 1, Data: diff}
	blas32.Copy(n, blas32.Vector{Inc: 1, Data: sum}, d)
	blas32.Axpy(n, -1, blas32.Vector{Inc: 1, Data: pair.A}, d)
	blas32.Axpy(n, -1, blas32.Vector{Inc: 1, Data: pair.B}, d)

	return math.Abs(float64(diff[blas32.Iamax(n, d)]))
}
