// Package signals is the signal-detection engine's analytical core: one
// pure function per fraud signal, each returning a deterministic, ordered
// slice of models.Signal over the shared dataset.Aggregates (spec.md §4.1,
// §4.2). Grounded on the teacher's internal/heuristics package — one file
// per independent analysis, no detector ever reaches into another's
// internals.
package signals

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/dataset"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// Env is the read-only environment every detector runs against: the
// materialized aggregates plus a logger for degradation notices. Detectors
// never mutate Env — the orchestrator rebuilds it once per run and shares
// it across sequential or bounded-parallel detector execution (spec.md §5:
// "no shared mutable state between detectors").
type Env struct {
	Agg *dataset.Aggregates
	Log zerolog.Logger

	// WindowStart is the configured start date S3 restricts its population
	// to (spec.md §4.2 S3: "providers whose first billing month is on/after
	// a configured start date"). Zero value means no restriction.
	WindowStart time.Time
}

// Func is the shape every detector implements: pure given Env, cancellable
// via ctx, returning candidate signals or an error that the orchestrator
// treats as a per-detector failure (spec.md §7) — never a fatal one.
type Func func(ctx context.Context, env *Env) ([]models.Signal, error)

// Detector names and indexes one catalog entry.
type Detector struct {
	ID   int
	Name string // signal_type value attached to every emitted Signal
	Run  Func
}

// Catalog returns every implemented detector in a fixed, stable order. The
// orchestrator filters this by the --signals flag; order here only affects
// tie-breaks recorded as "input order" (spec.md §4.5 dominant-signal pick).
func Catalog() []Detector {
	return []Detector{
		{ID: 1, Name: SignalExcludedProviderBilling, Run: DetectExcludedProviderBilling},
		{ID: 2, Name: SignalStatisticalOutlier, Run: DetectStatisticalOutlier},
		{ID: 3, Name: SignalRapidEscalation, Run: DetectRapidEscalation},
		{ID: 4, Name: SignalImpossibleVolume, Run: DetectImpossibleVolume},
		{ID: 5, Name: SignalHomeHealthAbuse, Run: DetectHomeHealthAbuse},
		{ID: 6, Name: SignalSharedOfficialNetwork, Run: DetectSharedOfficialNetwork},
		{ID: 7, Name: SignalGeographicAnomaly, Run: DetectGeographicAnomaly},
		{ID: 8, Name: SignalTemporalAnomaly, Run: DetectTemporalAnomaly},
		{ID: 9, Name: SignalProcedureConcentration, Run: DetectProcedureConcentration},
		{ID: 10, Name: SignalWorkforceImpossibility, Run: DetectWorkforceImpossibility},
		{ID: 11, Name: SignalBurstEnrollmentNetwork, Run: DetectBurstEnrollmentNetwork},
		{ID: 12, Name: SignalPhantomServicingHub, Run: DetectPhantomServicingHub},
		{ID: 13, Name: SignalBillingMonoculture, Run: DetectBillingMonoculture},
		{ID: 14, Name: SignalBustOutCollapse, Run: DetectBustOutCollapse},
	}
}
