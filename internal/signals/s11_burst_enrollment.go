package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/cluster"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	burstEnrollmentMinMembers = 4
	burstEnrollmentHighFloor  = 500000.0
)

// DetectBurstEnrollmentNetwork implements S11: a cluster of organizations
// sharing taxonomy, state, and enumeration quarter — a pattern consistent
// with a single operator enrolling a batch of shell entities at once
// (spec.md §4.2a S11).
func DetectBurstEnrollmentNetwork(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg
	if !agg.HasRegistry {
		env.Log.Debug().Msg("burst_enrollment_network: no registry data, skipping")
		return nil, nil
	}

	var keys, npis []string
	for _, npi := range sortedKeys(agg.RegistryByNPI) {
		reg := agg.RegistryByNPI[npi]
		if !reg.IsOrganization() || reg.TaxonomyCode == "" || reg.State == "" {
			continue
		}
		quarter := reg.EnumerationQuarter()
		if quarter == "" {
			continue
		}
		keys = append(keys, reg.TaxonomyCode+"|"+reg.State+"|"+quarter)
		npis = append(npis, npi)
	}

	groups := cluster.GroupByKey(keys, npis)

	type candidate struct {
		paid float64
		sig  models.Signal
	}
	var candidates []candidate

	for _, key := range sortedKeys(groups) {
		members := groups[key]
		if len(members) < burstEnrollmentMinMembers {
			continue
		}
		var combinedPaid float64
		for _, npi := range members {
			if t, ok := agg.ProviderTotals[npi]; ok {
				combinedPaid += t.TotalPaid
			}
		}
		if combinedPaid <= 0 {
			continue
		}
		severity := models.SeverityMedium
		if combinedPaid >= burstEnrollmentHighFloor {
			severity = models.SeverityHigh
		}

		candidates = append(candidates, candidate{
			paid: combinedPaid,
			sig: models.Signal{
				NPI:        members[0],
				SignalType: SignalBurstEnrollmentNetwork,
				Severity:   severity,
				Evidence: map[string]any{
					"groupKey":     key,
					"memberCount":  len(members),
					"sampleNPIs":   members[:min(len(members), 10)],
					"combinedPaid": combinedPaid,
				},
				EstimatedOverpaymentUSD: roundCents(0.25 * combinedPaid),
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
