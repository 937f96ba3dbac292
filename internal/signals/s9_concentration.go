package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	concentrationPaidFloor   = 50000.0
	concentrationMaxCodes    = 3
	concentrationShareFloor  = 0.90
	concentrationLimit       = 150
)

// DetectProcedureConcentration implements S9: a provider whose billing is
// almost entirely one or two procedure codes — a pattern consistent with
// upcoding or templated claim generation rather than varied patient care
// (spec.md §4.2 S9).
func DetectProcedureConcentration(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	type candidate struct {
		paid float64
		sig  models.Signal
	}
	var candidates []candidate

	for _, npi := range sortedKeys(agg.ProviderCodeTotals) {
		codes := agg.ProviderCodeTotals[npi]
		if len(codes) > concentrationMaxCodes {
			continue
		}
		var totalPaid float64
		var maxCode *models.ProviderCodeTotal
		for _, c := range codes {
			totalPaid += c.Paid
			if maxCode == nil || c.Paid > maxCode.Paid {
				maxCode = c
			}
		}
		if totalPaid <= concentrationPaidFloor || maxCode == nil {
			continue
		}
		share := maxCode.Paid / totalPaid
		if share <= concentrationShareFloor {
			continue
		}

		candidates = append(candidates, candidate{
			paid: totalPaid,
			sig: models.Signal{
				NPI:        npi,
				SignalType: SignalProcedureConcentration,
				Severity:   models.SeverityMedium,
				Evidence: map[string]any{
					"totalPaid":     totalPaid,
					"distinctCodes": len(codes),
					"dominantCode":  maxCode.HCPCS,
					"dominantPaid":  maxCode.Paid,
					"dominantShare": share,
				},
				EstimatedOverpaymentUSD: roundCents(0.4 * totalPaid),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].paid != candidates[j].paid {
			return candidates[i].paid > candidates[j].paid
		}
		return candidates[i].sig.NPI < candidates[j].sig.NPI
	})
	if len(candidates) > concentrationLimit {
		candidates = candidates[:concentrationLimit]
	}

	out := make([]models.Signal, len(candidates))
	for i, c := range candidates {
		out[i] = c.sig
	}
	return out, nil
}
