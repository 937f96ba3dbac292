package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	rapidEscalationFloor      = 100.0
	rapidEscalationMultiplier = 6.0
	rapidEscalationLimit      = 150
)

// DetectRapidEscalation implements S3: a provider whose first billing month
// is small and whose billing then spikes within the following six months —
// the classic bust-out ramp (spec.md §4.2 S3). Restricted to providers whose
// first billing month falls on or after env.WindowStart, when configured —
// an established provider's distant, low-paid opening month is not a
// bust-out signal.
func DetectRapidEscalation(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	type candidate struct {
		npi  string
		peak float64
		sig  models.Signal
	}
	var candidates []candidate

	for _, npi := range sortedKeys(agg.ProviderMonthly) {
		if !env.WindowStart.IsZero() {
			if first, ok := agg.FirstBillingMonth[npi]; !ok || first.Before(env.WindowStart) {
				continue
			}
		}

		months := agg.ProviderMonthly[npi]
		if len(months) < 2 {
			continue
		}
		firstMonth := months[0]
		if firstMonth.Paid <= rapidEscalationFloor {
			continue
		}

		window := months[1:]
		if len(window) > 6 {
			window = window[:6]
		}
		var peak *models.ProviderMonth
		for _, m := range window {
			if peak == nil || m.Paid > peak.Paid {
				peak = m
			}
		}
		if peak == nil || peak.Paid < rapidEscalationMultiplier*firstMonth.Paid {
			continue
		}

		overpayment := 0.8 * peak.Paid
		pctIncrease := 0.0
		if firstMonth.Paid > 0 {
			pctIncrease = (peak.Paid - firstMonth.Paid) / firstMonth.Paid * 100
		}

		last := months[len(months)-1]
		candidates = append(candidates, candidate{
			npi:  npi,
			peak: peak.Paid,
			sig: models.Signal{
				NPI:        npi,
				SignalType: SignalRapidEscalation,
				Severity:   models.SeverityHigh,
				Evidence: map[string]any{
					"firstMonth":       firstMonth.Month.Format("2006-01"),
					"lastMonth":        last.Month.Format("2006-01"),
					"firstMonthPaid":   firstMonth.Paid,
					"firstMonthClaims": firstMonth.Claims,
					"peakMonth":        peak.Month.Format("2006-01"),
					"peakPaid":         peak.Paid,
					"peakClaims":       peak.Claims,
					"percentIncrease":  pctIncrease,
				},
				EstimatedOverpaymentUSD: roundCents(overpayment),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].peak != candidates[j].peak {
			return candidates[i].peak > candidates[j].peak
		}
		return candidates[i].npi < candidates[j].npi
	})
	if len(candidates) > rapidEscalationLimit {
		candidates = candidates[:rapidEscalationLimit]
	}

	out := make([]models.Signal, len(candidates))
	for i, c := range candidates {
		out[i] = c.sig
	}
	return out, nil
}
