package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const monocultureShareFloor = 0.95

// DetectBillingMonoculture implements S13: a single HCPCS code accounting
// for nearly all of a provider's billing. Distinct from S9's concentration
// test — this one never looks at distinct-code count, only whether a single
// code dominates regardless of how many others exist alongside it (spec.md
// §4.2a S13).
func DetectBillingMonoculture(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	type candidate struct {
		paid float64
		sig  models.Signal
	}
	var candidates []candidate

	for _, npi := range sortedKeys(agg.ProviderCodeTotals) {
		codes := agg.ProviderCodeTotals[npi]
		totals := agg.ProviderTotals[npi]
		if totals == nil || totals.TotalPaid <= 0 {
			continue
		}
		var maxCode *models.ProviderCodeTotal
		for _, c := range codes {
			if maxCode == nil || c.Paid > maxCode.Paid {
				maxCode = c
			}
		}
		if maxCode == nil {
			continue
		}
		share := maxCode.Paid / totals.TotalPaid
		if share < monocultureShareFloor {
			continue
		}

		candidates = append(candidates, candidate{
			paid: totals.TotalPaid,
			sig: models.Signal{
				NPI:        npi,
				SignalType: SignalBillingMonoculture,
				Severity:   models.SeverityMedium,
				Evidence: map[string]any{
					"totalPaid":     totals.TotalPaid,
					"dominantCode":  maxCode.HCPCS,
					"dominantPaid":  maxCode.Paid,
					"dominantShare": share,
				},
				EstimatedOverpaymentUSD: roundCents(0.35 * totals.TotalPaid),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].paid != candidates[j].paid {
			return candidates[i].paid > candidates[j].paid
		}
		return candidates[i].sig.NPI < candidates[j].sig.NPI
	})

	if len(candidates) == 0 {
		return nil, nil
	}
	out := make([]models.Signal, len(candidates))
	for i, c := range candidates {
		out[i] = c.sig
	}
	return out, nil
}
