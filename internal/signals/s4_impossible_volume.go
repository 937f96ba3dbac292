package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/stats"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	impossibleVolumeRatioFloor = 500.0
	impossibleVolumePaidFloor  = 1000.0
	impossibleVolumeLimit      = 300
	impossibleVolumeShown      = 6
)

type flaggedMonth struct {
	npi   string
	month *models.ProviderMonth
	ratio float64
}

// DetectImpossibleVolume implements S4: a provider-month billing more
// claims per beneficiary than is physically deliverable (spec.md §4.2 S4).
func DetectImpossibleVolume(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	var flagged []flaggedMonth
	for _, npi := range sortedKeys(agg.ProviderMonthly) {
		for _, m := range agg.ProviderMonthly[npi] {
			if m.Beneficiaries <= 0 || m.Paid <= impossibleVolumePaidFloor {
				continue
			}
			ratio := stats.SafeDivide(float64(m.Claims), float64(m.Beneficiaries))
			if ratio <= impossibleVolumeRatioFloor {
				continue
			}
			flagged = append(flagged, flaggedMonth{npi: npi, month: m, ratio: ratio})
		}
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		if flagged[i].ratio != flagged[j].ratio {
			return flagged[i].ratio > flagged[j].ratio
		}
		return flagged[i].npi < flagged[j].npi
	})
	if len(flagged) > impossibleVolumeLimit {
		flagged = flagged[:impossibleVolumeLimit]
	}

	byNPI := make(map[string][]flaggedMonth)
	for _, f := range flagged {
		byNPI[f.npi] = append(byNPI[f.npi], f)
	}

	var out []models.Signal
	for _, npi := range sortedKeys(byNPI) {
		months := byNPI[npi]
		sort.SliceStable(months, func(i, j int) bool { return months[i].month.Month.Before(months[j].month.Month) })

		maxRatio := 0.0
		var sumPaid float64
		shown := make([]map[string]any, 0, impossibleVolumeShown)
		for i, f := range months {
			if f.ratio > maxRatio {
				maxRatio = f.ratio
			}
			sumPaid += f.month.Paid
			if i < impossibleVolumeShown {
				shown = append(shown, map[string]any{
					"month":         f.month.Month.Format("2006-01"),
					"claims":        f.month.Claims,
					"beneficiaries": f.month.Beneficiaries,
					"paid":          f.month.Paid,
					"ratio":         f.ratio,
				})
			}
		}

		out = append(out, models.Signal{
			NPI:        npi,
			SignalType: SignalImpossibleVolume,
			Severity:   models.SeverityHigh,
			Evidence: map[string]any{
				"maxRatio":      maxRatio,
				"flaggedMonths": len(months),
				"months":        shown,
			},
			EstimatedOverpaymentUSD: roundCents(0.9 * sumPaid),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].NPI < out[j].NPI })
	return out, nil
}
