/*
Package backend provides an abstraction layer to the available elementwise sum backends, currently implemented:

	- serial (single goroutine loop, the baseline)
	- parallel (disjoint ranges over one goroutine per core)
	- kernel (addition kernel dispatched on the compute device)
	- primitive (gonum blas32 matrix sum encoded on the compute device)
*/
package backend
