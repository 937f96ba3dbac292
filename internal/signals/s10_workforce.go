package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/stats"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	workforceHoursPerMonth    = 176.0
	workforceClaimsPerHour    = 6.0
	workforceOverpaymentShare = 0.5
)

// DetectWorkforceImpossibility implements S10: an organization billing more
// claims in a month than its distinct servicing workforce could plausibly
// perform at a standard working month (spec.md §4.2a S10).
func DetectWorkforceImpossibility(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg
	if !agg.HasRegistry {
		env.Log.Debug().Msg("workforce_impossibility: no registry data, skipping")
		return nil, nil
	}

	var out []models.Signal
	for _, npi := range sortedKeys(agg.OrgWorkerMonthly) {
		var flaggedPaid float64
		var maxRate float64
		var flaggedMonths int
		for _, om := range agg.OrgWorkerMonthly[npi] {
			if om.DistinctServicingNPI <= 0 {
				continue
			}
			capacity := float64(om.DistinctServicingNPI) * workforceHoursPerMonth
			rate := stats.SafeDivide(float64(om.TotalClaims), capacity)
			if rate <= workforceClaimsPerHour {
				continue
			}
			flaggedMonths++
			if rate > maxRate {
				maxRate = rate
			}
			if months, ok := agg.ProviderMonthly[npi]; ok {
				for _, pm := range months {
					if pm.Month.Equal(om.Month) {
						flaggedPaid += pm.Paid
						break
					}
				}
			}
		}
		if flaggedMonths == 0 {
			continue
		}
		out = append(out, models.Signal{
			NPI:        npi,
			SignalType: SignalWorkforceImpossibility,
			Severity:   models.SeverityHigh,
			Evidence: map[string]any{
				"flaggedMonths":    flaggedMonths,
				"maxClaimsPerHour": maxRate,
			},
			EstimatedOverpaymentUSD: roundCents(workforceOverpaymentShare * flaggedPaid),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].NPI < out[j].NPI })
	return out, nil
}
