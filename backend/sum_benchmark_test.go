package backend

import (
	"math/rand"
	"testing"
	"time"
)

func sumWithSize(b *testing.B, name string, size int) {
	impl, err := New(name, Options{})
	if err != nil {
		b.Fatal(err)
	}
	defer Close([]Backend{impl})

	adata := make([]float32, size)
	bdata := make([]float32, size)

	s := rand.NewSource(time.Now().Unix())
	r := rand.New(s)

	for i := 0; i < size; i++ {
		adata[i] = float32(r.Intn(10))
		bdata[i] = float32(r.Intn(10))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := impl.Sum(adata, bdata); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBackendSerialSum1024(b *testing.B) {
	sumWithSize(b, "serial", 1024)
}

func BenchmarkBackendSerialSum1M(b *testing.B) {
	sumWithSize(b, "serial", 1<<20)
}

func BenchmarkBackendParallelSum1024(b *testing.B) {
	sumWithSize(b, "parallel", 1024)
}

func BenchmarkBackendParallelSum1M(b *testing.B) {
	sumWithSize(b, "parallel", 1<<20)
}

func BenchmarkBackendKernelSum1024(b *testing.B) {
	sumWithSize(b, "kernel", 1024)
}

func BenchmarkBackendKernelSum1M(b *testing.B) {
	sumWithSize(b, "kernel", 1<<20)
}

func BenchmarkBackendPrimitiveSum1024(b *testing.B) {
	sumWithSize(b, "primitive", 1024)
}

func BenchmarkBackendPrimitiveSum1M(b *testing.B) {
	sumWithSize(b, "primitive", 1<<20)
}
