package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	bustOutPeakWindowEnd = 6 // months 2..7, i.e. indices 1..6
	bustOutDropWindow    = 3
	bustOutDropThreshold = 0.20 // paid must fall to at most 20% of peak
)

// DetectBustOutCollapse implements S14: a provider that ramps billing to a
// peak, then collapses it within three months — the ramp-then-disappear
// pattern S3 alone doesn't distinguish from sustained high billing (spec.md
// §4.2a S14).
func DetectBustOutCollapse(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	type candidate struct {
		peak float64
		sig  models.Signal
	}
	var candidates []candidate

	for _, npi := range sortedKeys(agg.ProviderMonthly) {
		months := agg.ProviderMonthly[npi]
		if len(months) < 3 {
			continue
		}

		window := months[1:]
		if len(window) > bustOutPeakWindowEnd {
			window = window[:bustOutPeakWindowEnd]
		}
		peakIdx := -1
		var peak *models.ProviderMonth
		for i, m := range window {
			if peak == nil || m.Paid > peak.Paid {
				peak = m
				peakIdx = i
			}
		}
		if peak == nil || peak.Paid <= 0 {
			continue
		}

		absolutePeakIdx := peakIdx + 1 // offset back into months
		dropEnd := absolutePeakIdx + bustOutDropWindow
		if dropEnd >= len(months) {
			dropEnd = len(months) - 1
		}
		collapsed := false
		var collapseMonth *models.ProviderMonth
		for i := absolutePeakIdx + 1; i <= dropEnd; i++ {
			if months[i].Paid <= bustOutDropThreshold*peak.Paid {
				collapsed = true
				collapseMonth = months[i]
				break
			}
		}
		if !collapsed {
			continue
		}

		candidates = append(candidates, candidate{
			peak: peak.Paid,
			sig: models.Signal{
				NPI:        npi,
				SignalType: SignalBustOutCollapse,
				Severity:   models.SeverityHigh,
				Evidence: map[string]any{
					"peakMonth":     peak.Month.Format("2006-01"),
					"peakPaid":      peak.Paid,
					"collapseMonth": collapseMonth.Month.Format("2006-01"),
					"collapsePaid":  collapseMonth.Paid,
				},
				EstimatedOverpaymentUSD: roundCents(0.5 * peak.Paid),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].peak != candidates[j].peak {
			return candidates[i].peak > candidates[j].peak
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
