package signals

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/dataset"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// buildEnv materializes an Env from raw spending/exclusion/registry rows the
// way main.go does from a CSVLoader, so every detector test exercises the
// real aggregation pass instead of hand-built Aggregates.
func buildEnv(spending []models.SpendingRecord, exclusions []models.ExclusionEntry, registry []models.RegistryEntry) *Env {
	ts := &dataset.StaticTableSet{
		SpendingRows:  spending,
		ExclusionRows: exclusions,
		RegistryRows:  registry,
	}
	return &Env{Agg: dataset.Build(ts), Log: zerolog.Nop()}
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
