package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const phantomHubMinBillingNPIs = 5

// DetectPhantomServicingHub implements S12: one servicing NPI appearing
// across an improbably wide spread of billing entities, consistent with a
// rented or fabricated rendering provider identity (spec.md §4.2a S12).
func DetectPhantomServicingHub(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	type candidate struct {
		paid float64
		sig  models.Signal
	}
	var candidates []candidate

	for _, servicingNPI := range sortedKeys(agg.ServicingHubTotals) {
		billingMap := agg.ServicingHubTotals[servicingNPI]
		if len(billingMap) < phantomHubMinBillingNPIs {
			continue
		}
		var combinedPaid float64
		var combinedClaims int64
		billingNPIs := make([]string, 0, len(billingMap))
		for billingNPI, hub := range billingMap {
			combinedPaid += hub.Paid
			combinedClaims += hub.Claims
			billingNPIs = append(billingNPIs, billingNPI)
		}
		sort.Strings(billingNPIs)
		if len(billingNPIs) > 10 {
			billingNPIs = billingNPIs[:10]
		}

		candidates = append(candidates, candidate{
			paid: combinedPaid,
			sig: models.Signal{
				NPI:        servicingNPI,
				SignalType: SignalPhantomServicingHub,
				Severity:   models.SeverityHigh,
				Evidence: map[string]any{
					"distinctBillingNPIs": len(billingMap),
					"sampleBillingNPIs":   billingNPIs,
					"combinedPaid":        combinedPaid,
					"combinedClaims":      combinedClaims,
				},
				EstimatedOverpaymentUSD: roundCents(0.6 * combinedPaid),
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
