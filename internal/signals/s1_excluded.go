package signals

import (
	"context"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// DetectExcludedProviderBilling implements S1: join active OIG exclusions
// with spending by provider number. An excluded party still billing the
// program is the least ambiguous signal in the catalog, hence severity
// critical and a 100% overpayment estimate (spec.md §4.2 S1).
func DetectExcludedProviderBilling(ctx context.Context, env *Env) ([]models.Signal, error) {
	agg := env.Agg

	var out []models.Signal
	for _, npi := range sortedKeys(agg.ProviderTotals) {
		excl, ok := agg.ExclusionsByNPI[npi]
		if !ok {
			continue
		}
		totals := agg.ProviderTotals[npi]
		if totals.TotalPaid <= 0 {
			continue
		}

		months := agg.ProviderMonthly[npi]
		first, hasFirst := agg.FirstBillingMonth[npi]
		last, hasLast := agg.LastBillingMonth[npi]

		evidence := map[string]any{
			"exclusionType": excl.ExclType,
			"exclusionDate": excl.ExclDate,
			"state":         excl.State,
			"billingMonths": len(months),
		}
		if hasFirst && hasLast {
			evidence["claimMonthSpan"] = first.Format("2006-01") + " to " + last.Format("2006-01")
		}

		out = append(out, models.Signal{
			NPI:                     npi,
			SignalType:              SignalExcludedProviderBilling,
			Severity:                models.SeverityCritical,
			Evidence:                evidence,
			EstimatedOverpaymentUSD: roundCents(totals.TotalPaid),
		})
	}
	return out, nil
}
