package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/gpu"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/stats"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// outlierLimit caps S2 output at the top 200 by paid (spec.md §4.2, a
// tunable pragmatic cap per spec.md §9, not a correctness invariant).
const outlierLimit = 200

const zScoreThreshold = 3.0

// DetectStatisticalOutlier implements S2: population mean/std-dev of
// total_paid across every provider, flagging providers more than 3 standard
// deviations above the mean. A degenerate population (σ=0) must emit
// nothing rather than divide by zero (spec.md §8).
func DetectStatisticalOutlier(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	npis := sortedKeys(agg.ProviderTotals)
	if len(npis) == 0 {
		return nil, nil
	}
	paidValues := make([]float64, len(npis))
	for i, npi := range npis {
		paidValues[i] = agg.ProviderTotals[npi].TotalPaid
	}

	mean := stats.Mean(paidValues)
	sigma := stats.PopStdDev(paidValues, mean)
	if sigma == 0 {
		return nil, nil
	}

	sorted := append([]float64(nil), paidValues...)
	sort.Float64s(sorted)
	median := stats.Median(sorted)
	iqr := stats.IQR(sorted)

	// BatchZScores is the hardware-accelerable pass: the population is
	// small here but S2 and S7 share the same kernel so default and -tags gpu
	// builds behave identically across both.
	zScores := gpu.BatchZScores(paidValues)

	type candidate struct {
		npi  string
		paid float64
		sig  models.Signal
	}
	var candidates []candidate

	for i, npi := range npis {
		paid := paidValues[i]
		z := zScores[i]
		if z <= zScoreThreshold {
			continue
		}
		overpayment := paid - (mean + zScoreThreshold*sigma)
		if overpayment < 0 {
			overpayment = 0
		}
		candidates = append(candidates, candidate{
			npi:  npi,
			paid: paid,
			sig: models.Signal{
				NPI:        npi,
				SignalType: SignalStatisticalOutlier,
				Severity:   models.SeverityHigh,
				Evidence: map[string]any{
					"paid":      paid,
					"mean":      mean,
					"median":    median,
					"stdDev":    sigma,
					"iqr":       iqr,
					"zScore":    z,
					"threshold": zScoreThreshold,
				},
				EstimatedOverpaymentUSD: roundCents(overpayment),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].paid != candidates[j].paid {
			return candidates[i].paid > candidates[j].paid
		}
		return candidates[i].npi < candidates[j].npi
	})
	if len(candidates) > outlierLimit {
		candidates = candidates[:outlierLimit]
	}

	out := make([]models.Signal, len(candidates))
	for i, c := range candidates {
		out[i] = c.sig
	}
	return out, nil
}
