// Package dataset is the "query-capable columnar execution context" spec.md
// §1 treats as an external collaborator: it exposes the three normalized
// input tables and materializes the reusable per-run aggregates every
// signal detector reads. Ingestion — turning raw CMS/OIG/NPPES files into
// these normalized rows — is explicitly out of scope; CSVLoader is the one
// reference adapter kept here for end-to-end runnability, not a production
// ingestion pipeline.
package dataset

import "github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"

// TableSet exposes the three normalized input tables (spec.md §3). A
// production deployment backs this with whatever loaded the Parquet/CSV
// snapshot; tests back it with literal in-memory fixtures.
type TableSet interface {
	Spending() []models.SpendingRecord
	Exclusions() []models.ExclusionEntry
	Registry() []models.RegistryEntry   // nil/empty is valid: registry is optional
	Census() []models.CensusZCTA        // nil/empty is valid: census is optional
}

// StaticTableSet is the simplest TableSet: three in-memory slices. Used by
// CSVLoader's output and directly by tests.
type StaticTableSet struct {
	SpendingRows   []models.SpendingRecord
	ExclusionRows  []models.ExclusionEntry
	RegistryRows   []models.RegistryEntry
	CensusRows     []models.CensusZCTA
}

func (s *StaticTableSet) Spending() []models.SpendingRecord    { return s.SpendingRows }
func (s *StaticTableSet) Exclusions() []models.ExclusionEntry  { return s.ExclusionRows }
func (s *StaticTableSet) Registry() []models.RegistryEntry     { return s.RegistryRows }
func (s *StaticTableSet) Census() []models.CensusZCTA          { return s.CensusRows }
