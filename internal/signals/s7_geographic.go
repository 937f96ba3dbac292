package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/gpu"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/stats"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	geographicMinProvidersPerState = 20
	geographicZScoreThreshold      = 4.0
	geographicHighFloor            = 500000.0
	geographicLimit                = 150
)

// DetectGeographicAnomaly implements S7: a provider whose billing is an
// extreme outlier relative to its own state's population, not the national
// one — catches fraud that blends into a high-volume national average but
// stands out locally (spec.md §4.2 S7).
func DetectGeographicAnomaly(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg
	if !agg.HasRegistry {
		env.Log.Debug().Msg("geographic_anomaly: no registry data, skipping")
		return nil, nil
	}

	paidByState := make(map[string][]float64)
	npisByState := make(map[string][]string)
	for _, npi := range sortedKeys(agg.ProviderTotals) {
		reg, ok := agg.RegistryByNPI[npi]
		if !ok || reg.State == "" {
			continue
		}
		paidByState[reg.State] = append(paidByState[reg.State], agg.ProviderTotals[npi].TotalPaid)
		npisByState[reg.State] = append(npisByState[reg.State], npi)
	}

	type candidate struct {
		paid float64
		sig  models.Signal
	}
	var candidates []candidate

	for _, state := range sortedKeys(paidByState) {
		paidValues := paidByState[state]
		if len(paidValues) < geographicMinProvidersPerState {
			continue
		}
		mean := stats.Mean(paidValues)
		sigma := stats.PopStdDev(paidValues, mean)
		if sigma == 0 {
			continue
		}

		// per-state batch, same kernel S2 uses over the national population.
		zScores := gpu.BatchZScores(paidValues)

		for i, npi := range npisByState[state] {
			paid := paidValues[i]
			z := zScores[i]
			if z <= geographicZScoreThreshold {
				continue
			}
			overpayment := paid - (mean + geographicZScoreThreshold*sigma)
			if overpayment < 0 {
				overpayment = 0
			}
			severity := models.SeverityMedium
			if overpayment >= geographicHighFloor {
				severity = models.SeverityHigh
			}
			candidates = append(candidates, candidate{
				paid: paid,
				sig: models.Signal{
					NPI:        npi,
					SignalType: SignalGeographicAnomaly,
					Severity:   severity,
					Evidence: map[string]any{
						"state":      state,
						"paid":       paid,
						"stateMean":  mean,
						"stateStdev": sigma,
						"zScore":     z,
						"threshold":  geographicZScoreThreshold,
					},
					EstimatedOverpaymentUSD: roundCents(overpayment),
				},
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].paid != candidates[j].paid {
			return candidates[i].paid > candidates[j].paid
		}
		return candidates[i].sig.NPI < candidates[j].sig.NPI
	})
	if len(candidates) > geographicLimit {
		candidates = candidates[:geographicLimit]
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	out := make([]models.Signal, len(candidates))
	for i, c := range candidates {
		out[i] = c.sig
	}
	return out, nil
}
