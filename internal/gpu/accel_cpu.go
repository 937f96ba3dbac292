//go:build !gpu

// Package gpu provides an optional hardware-accelerated path for the
// batch z-score pass S2 and S7 both need over large provider populations.
// This file is the default build: pure Go and always available. The gpu
// build tag, not the --no-gpu flag, decides which file is compiled; the
// flag is accepted and only logged (spec.md §6).
//
// Grounded on the teacher's internal/cuda build-tag pair: same
// !gpu/gpu split, generalized from an anonymity-set power-set kernel to a
// batch z-score kernel.
package gpu

import (
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/stats"
)

// Available reports whether this build was compiled with GPU support.
const Available = false

// BatchZScores computes (value-mean)/stddev for every value in paid
// against the population statistics of paid itself. The CPU build simply
// calls internal/stats in a loop; the gpu build offloads the same
// computation to a CUDA kernel for very large populations.
func BatchZScores(paid []float64) []float64 {
	if len(paid) == 0 {
		return nil
	}
	mean := stats.Mean(paid)
	sigma := stats.PopStdDev(paid, mean)
	out := make([]float64, len(paid))
	for i, v := range paid {
		out[i] = stats.ZScore(v, mean, sigma)
	}
	return out
}
