package signals

import (
	"context"
	"sort"
	"strings"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/cluster"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	sharedOfficialMinMembers  = 5
	sharedOfficialPaidFloor   = 10000.0
	sharedOfficialHighFloor   = 500000.0
	sharedOfficialOfficialCap = 100
	sharedOfficialNetworkCap  = 50
	sharedOfficialSampleCap   = 10
)

const (
	officialKeyPrefix = "official:"
	locationKeyPrefix = "location:"
)

// DetectSharedOfficialNetwork implements S6: many distinct provider numbers
// controlled by the same shell operator — a classic shell-provider network
// (spec.md §4.2 S6). Two organizations sharing a key, plus two organizations
// sharing a different key, can still belong to the same operator's network
// if a third organization bridges them (e.g. org A and B share an
// authorized official, B and C share a practice location but not the
// official) — the membership test is genuinely transitive, not a flat
// equivalence on one attribute, so this uses cluster.Engine's weighted
// union-find rather than cluster.GroupByKey.
func DetectSharedOfficialNetwork(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg
	if !agg.HasRegistry {
		env.Log.Debug().Msg("shared_official_network: no registry data, skipping")
		return nil, nil
	}

	engine := cluster.New()
	officialName := make(map[string]string)

	for _, npi := range sortedKeys(agg.RegistryByNPI) {
		reg := agg.RegistryByNPI[npi]
		if !reg.IsOrganization() {
			continue
		}
		if key, ok := reg.NormalizedOfficialKey(); ok {
			officialKey := officialKeyPrefix + key
			engine.Union(npi, officialKey)
			if _, seen := officialName[officialKey]; !seen {
				officialName[officialKey] = strings.TrimSpace(reg.AuthOfficialFirstName + " " + reg.AuthOfficialLastName)
			}
		}
		if reg.TaxonomyCode != "" && reg.PostalCode != "" {
			engine.Union(npi, locationKeyPrefix+reg.TaxonomyCode+"|"+reg.PostalCode)
		}
	}

	groups := engine.Groups(2)

	type officialGroup struct {
		root        string
		members     []string
		officialTag string
	}
	var eligible []officialGroup
	for _, root := range sortedKeys(groups) {
		var npis []string
		var tag string
		for _, m := range groups[root] {
			switch {
			case strings.HasPrefix(m, officialKeyPrefix):
				if tag == "" {
					tag = m
				}
			case strings.HasPrefix(m, locationKeyPrefix):
				// location nodes never name the network; skip.
			default:
				npis = append(npis, m)
			}
		}
		if len(npis) >= sharedOfficialMinMembers {
			sort.Strings(npis)
			eligible = append(eligible, officialGroup{root: root, members: npis, officialTag: tag})
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if len(eligible[i].members) != len(eligible[j].members) {
			return len(eligible[i].members) > len(eligible[j].members)
		}
		return eligible[i].root < eligible[j].root
	})
	if len(eligible) > sharedOfficialOfficialCap {
		eligible = eligible[:sharedOfficialOfficialCap]
	}

	type candidate struct {
		combinedPaid float64
		sig          models.Signal
	}
	var candidates []candidate

	for _, g := range eligible {
		var combinedPaid float64
		var activeBilling int
		statesSeen := make(map[string]bool)
		var states []string
		for _, npi := range g.members {
			totals, ok := agg.ProviderTotals[npi]
			if !ok || totals.TotalPaid <= 0 {
				continue
			}
			combinedPaid += totals.TotalPaid
			activeBilling++
			if reg, ok := agg.RegistryByNPI[npi]; ok && reg.State != "" && !statesSeen[reg.State] {
				statesSeen[reg.State] = true
				states = append(states, reg.State)
			}
		}
		if combinedPaid < sharedOfficialPaidFloor {
			continue
		}
		sort.Strings(states)
		if len(states) > sharedOfficialSampleCap {
			states = states[:sharedOfficialSampleCap]
		}
		sampleNPIs := append([]string(nil), g.members...)
		if len(sampleNPIs) > sharedOfficialSampleCap {
			sampleNPIs = sampleNPIs[:sharedOfficialSampleCap]
		}

		severity := models.SeverityMedium
		if combinedPaid >= sharedOfficialHighFloor {
			severity = models.SeverityHigh
		}

		dominant := g.members[0]
		candidates = append(candidates, candidate{
			combinedPaid: combinedPaid,
			sig: models.Signal{
				NPI:        dominant,
				SignalType: SignalSharedOfficialNetwork,
				Severity:   severity,
				Evidence: map[string]any{
					"officialName":      officialName[g.officialTag],
					"totalControlled":   len(g.members),
					"activeBillingNPIs": activeBilling,
					"sampleNPIs":        sampleNPIs,
					"states":            states,
					"combinedPaid":      combinedPaid,
				},
				EstimatedOverpaymentUSD: roundCents(0.3 * combinedPaid),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].combinedPaid != candidates[j].combinedPaid {
			return candidates[i].combinedPaid > candidates[j].combinedPaid
		}
		return candidates[i].sig.NPI < candidates[j].sig.NPI
	})
	if len(candidates) > sharedOfficialNetworkCap {
		candidates = candidates[:sharedOfficialNetworkCap]
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
