// Package merge implements the severity resolver: it folds every detector's
// candidate signals into one record per NPI and applies the escalation
// rules that turn a detector's severity prior into the final reported
// severity (spec.md §4.3).
//
// Grounded on the teacher's internal/heuristics/risk_roles.go, which maps a
// discrete classification to a severity string through the same
// critical > high > medium > low ordering this package escalates within;
// the role-lookup table becomes a rule-based escalation over signal count
// and combined overpayment instead of a static map.
package merge

import (
	"sort"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const (
	multiSignalEscalationCount  = 2
	overpaymentEscalationFloor  = 500000.0
)

// Merge folds perSignalResults (one slice per detector, in catalog order)
// into a map of NPI to ProviderRecord, then applies severity escalation
// (spec.md §4.3 rules 1-3) and combined overpayment (rule 4).
func Merge(perSignalResults [][]models.Signal) map[string]*models.ProviderRecord {
	records := make(map[string]*models.ProviderRecord)

	for _, signals := range perSignalResults {
		for _, sig := range signals {
			rec, ok := records[sig.NPI]
			if !ok {
				rec = &models.ProviderRecord{
					NPI:        sig.NPI,
					Name:       "NPI " + sig.NPI,
					EntityType: models.PlaceholderEntityType,
				}
				records[sig.NPI] = rec
			}
			rec.Signals = append(rec.Signals, sig)
		}
	}

	for _, rec := range records {
		escalate(rec)
	}
	return records
}

// escalate applies spec.md §4.3 rule 3 in place: every medium severity on a
// provider with two or more signals, or whose combined overpayment exceeds
// the floor, is upgraded to high. Critical is never touched in either
// direction.
func escalate(rec *models.ProviderRecord) {
	var combined float64
	for _, s := range rec.Signals {
		combined += s.EstimatedOverpaymentUSD
	}
	rec.CombinedOverpaymentUSD = roundCents(combined)

	multiSignal := len(rec.Signals) >= multiSignalEscalationCount
	overFloor := combined > overpaymentEscalationFloor

	for i := range rec.Signals {
		if rec.Signals[i].Severity == models.SeverityMedium && (multiSignal || overFloor) {
			rec.Signals[i].Severity = models.SeverityHigh
		}
	}

	sort.SliceStable(rec.Signals, func(i, j int) bool {
		return rec.Signals[i].Severity.Rank() < rec.Signals[j].Severity.Rank()
	})
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
