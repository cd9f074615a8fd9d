package backend

import (
	"github.com/pbnjay/memory"
)

type serial struct {
}

func (impl serial) Name() string {
	return "serial"
}

func (impl serial) Space() uint64 {
	return memory.TotalMemory()
}

func (impl serial) Sum(a, b []float32) ([]float32, error) {
	if err := checkSizes(a, b); err != nil {
		return nil, err
	}

	result := make([]float32, len(a))
	for i, va := range a {
		result[i] = va + b[i]
	}
	return result, nil
}
