package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	temporalTrailingWindow = 3
	temporalRatioThreshold = 5.0
	temporalTrailingFloor  = 100.0
	temporalPaidFloor      = 10000.0
	temporalSpikeLimit     = 200
)

type temporalSpike struct {
	npi   string
	month *models.ProviderMonth
	ratio float64
}

// DetectTemporalAnomaly implements S8: a month that spikes far above a
// provider's own trailing three-month average, requiring the trailing
// window to be fully populated so a provider's first months never qualify
// as a baseline of one (spec.md §4.2 S8).
func DetectTemporalAnomaly(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	var spikes []temporalSpike
	for _, npi := range sortedKeys(agg.ProviderMonthly) {
		months := agg.ProviderMonthly[npi]
		if len(months) <= temporalTrailingWindow {
			continue
		}
		for i := temporalTrailingWindow; i < len(months); i++ {
			var trailingSum float64
			for j := i - temporalTrailingWindow; j < i; j++ {
				trailingSum += months[j].Paid
			}
			trailingAvg := trailingSum / float64(temporalTrailingWindow)
			if trailingAvg <= temporalTrailingFloor {
				continue
			}
			current := months[i]
			if current.Paid <= temporalPaidFloor {
				continue
			}
			ratio := current.Paid / trailingAvg
			if ratio <= temporalRatioThreshold {
				continue
			}
			spikes = append(spikes, temporalSpike{npi: npi, month: current, ratio: ratio})
		}
	}

	sort.SliceStable(spikes, func(i, j int) bool {
		if spikes[i].ratio != spikes[j].ratio {
			return spikes[i].ratio > spikes[j].ratio
		}
		return spikes[i].npi < spikes[j].npi
	})
	if len(spikes) > temporalSpikeLimit {
		spikes = spikes[:temporalSpikeLimit]
	}

	byNPI := make(map[string][]temporalSpike)
	for _, s := range spikes {
		byNPI[s.npi] = append(byNPI[s.npi], s)
	}

	var out []models.Signal
	for _, npi := range sortedKeys(byNPI) {
		npiSpikes := byNPI[npi]
		maxRatio := 0.0
		var sumSpikePaid float64
		for _, s := range npiSpikes {
			if s.ratio > maxRatio {
				maxRatio = s.ratio
			}
			sumSpikePaid += s.month.Paid
		}
		out = append(out, models.Signal{
			NPI:        npi,
			SignalType: SignalTemporalAnomaly,
			Severity:   models.SeverityHigh,
			Evidence: map[string]any{
				"spikeCount": len(npiSpikes),
				"maxRatio":   maxRatio,
			},
			EstimatedOverpaymentUSD: roundCents(0.7 * sumSpikePaid),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].NPI < out[j].NPI })
	return out, nil
}
