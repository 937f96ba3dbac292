// Package report assembles the final Report document: sorting flagged
// providers, totaling overpayments, and naming which detectors ran
// (spec.md §4.6).
package report

import (
	"sort"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// ToolVersion is the static version string stamped into every report.
const ToolVersion = "1.0.0"

// Build assembles the top-level Report from the merged, enriched, and
// annotated provider records. records is consumed by value into
// rpt.FlaggedProviders, sorted by (combined overpayment DESC, npi ASC)
// exactly as spec.md §4.6 requires.
func Build(records map[string]*models.ProviderRecord, dataSourcesUsed []string, methodology string, totalScanned int64, detectorsRun, detectorsSkipped []string, generatedAt time.Time) models.Report {
	flagged := make([]models.ProviderRecord, 0, len(records))
	var totalOverpayment float64
	for _, rec := range records {
		flagged = append(flagged, *rec)
		totalOverpayment += rec.CombinedOverpaymentUSD
	}

	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].CombinedOverpaymentUSD != flagged[j].CombinedOverpaymentUSD {
			return flagged[i].CombinedOverpaymentUSD > flagged[j].CombinedOverpaymentUSD
		}
		return flagged[i].NPI < flagged[j].NPI
	})

	return models.Report{
		GeneratedAt:                  generatedAt.UTC(),
		ToolVersion:                  ToolVersion,
		DataSourcesUsed:              dataSourcesUsed,
		MethodologySummary:           methodology,
		TotalProvidersScanned:        totalScanned,
		TotalProvidersFlagged:        len(flagged),
		TotalEstimatedOverpaymentUSD: roundCents(totalOverpayment),
		DetectorsRun:                 detectorsRun,
		DetectorsSkipped:             detectorsSkipped,
		FlaggedProviders:             flagged,
	}
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
