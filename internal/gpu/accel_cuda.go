//go:build gpu

package gpu

/*
#cgo LDFLAGS: -L${SRCDIR} -lkernel -L/usr/local/cuda/lib64 -lcudart
#include "bindings.h"
*/
import "C"

// Available reports whether this build was compiled with GPU support.
const Available = true

// BatchZScores offloads the population mean/stddev/z-score pass to the CUDA
// kernel. Only compiled with -tags gpu; the default build uses accel_cpu.go
// instead.
func BatchZScores(paid []float64) []float64 {
	n := len(paid)
	if n == 0 {
		return nil
	}

	cValues := make([]C.double, n)
	for i, v := range paid {
		cValues[i] = C.double(v)
	}

	cOut := make([]C.double, n)
	C.BatchZScoreCUDA((*C.double)(&cValues[0]), C.int(n), (*C.double)(&cOut[0]))

	out := make([]float64, n)
	for i, v := range cOut {
		out[i] = float64(v)
	}
	return out
}
