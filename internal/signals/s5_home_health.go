package signals

import (
	"context"
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/stats"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	homeHealthRatioFloor = 50.0
	homeHealthPaidFloor  = 5000.0
	homeHealthNorm       = 10.0
	homeHealthLimit      = 200
)

type hhTotals struct {
	npi           string
	paid          float64
	claims        int64
	beneficiaries int64
}

// DetectHomeHealthAbuse implements S5: home-health billing far in excess of
// a plausible per-beneficiary visit norm (spec.md §4.2 S5).
func DetectHomeHealthAbuse(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	byNPI := make(map[string]*hhTotals)
	for _, rec := range agg.SpendingHH {
		t, ok := byNPI[rec.BillingNPI]
		if !ok {
			t = &hhTotals{npi: rec.BillingNPI}
			byNPI[rec.BillingNPI] = t
		}
		t.paid += rec.Paid
		t.claims += rec.Claims
		t.beneficiaries += rec.Beneficiaries
	}

	type candidate struct {
		paid float64
		sig  models.Signal
	}
	var candidates []candidate

	keys := make([]string, 0, len(byNPI))
	for k := range byNPI {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, npi := range keys {
		t := byNPI[npi]
		if t.beneficiaries <= 0 || t.paid <= homeHealthPaidFloor {
			continue
		}
		ratio := stats.SafeDivide(float64(t.claims), float64(t.beneficiaries))
		if ratio <= homeHealthRatioFloor {
			continue
		}
		excess := float64(t.claims) - homeHealthNorm*float64(t.beneficiaries)
		if excess < 0 {
			excess = 0
		}
		overpayment := t.paid * stats.SafeDivide(excess, float64(t.claims))

		candidates = append(candidates, candidate{
			paid: t.paid,
			sig: models.Signal{
				NPI:        npi,
				SignalType: SignalHomeHealthAbuse,
				Severity:   models.SeverityHigh,
				Evidence: map[string]any{
					"paid":          t.paid,
					"claims":        t.claims,
					"beneficiaries": t.beneficiaries,
					"ratio":         ratio,
				},
				EstimatedOverpaymentUSD: roundCents(overpayment),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].paid != candidates[j].paid {
			return candidates[i].paid > candidates[j].paid
		}
		return candidates[i].sig.NPI < candidates[j].sig.NPI
	})
	if len(candidates) > homeHealthLimit {
		candidates = candidates[:homeHealthLimit]
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
