package enrich

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/dataset"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func TestEnrichFillsFromRegistry(t *testing.T) {
	agg := &dataset.Aggregates{
		ProviderTotals: map[string]*models.ProviderTotals{
			"1": {NPI: "1", TotalPaid: 5000, TotalClaims: 20, TotalBeneficiaries: 5},
		},
		RegistryByNPI: map[string]models.RegistryEntry{
			"1": {NPI: "1", EntityTypeCode: "2", OrgName: "Acme Clinic", State: "TX", TaxonomyCode: "207Q00000X"},
		},
	}
	client := &Client{Agg: agg, Log: zerolog.Nop()}
	rec := &models.ProviderRecord{NPI: "1", Name: "NPI 1", EntityType: models.PlaceholderEntityType}

	client.Enrich(context.Background(), rec)

	if rec.Name != "Acme Clinic" {
		t.Errorf("Name = %v, want Acme Clinic", rec.Name)
	}
	if rec.EntityType != "organization" {
		t.Errorf("EntityType = %v, want organization", rec.EntityType)
	}
	if rec.State != "TX" {
		t.Errorf("State = %v, want TX", rec.State)
	}
	if rec.TotalPaid != 5000 {
		t.Errorf("TotalPaid = %v, want 5000", rec.TotalPaid)
	}
}

func TestEnrichNeverOverwritesKnownName(t *testing.T) {
	agg := &dataset.Aggregates{
		ProviderTotals: map[string]*models.ProviderTotals{},
		RegistryByNPI: map[string]models.RegistryEntry{
			"1": {NPI: "1", OrgName: "Registry Name"},
		},
	}
	client := &Client{Agg: agg, Log: zerolog.Nop()}
	rec := &models.ProviderRecord{NPI: "1", Name: "Already Known Name"}

	client.Enrich(context.Background(), rec)

	if rec.Name != "Already Known Name" {
		t.Errorf("Enrich must never overwrite a non-placeholder name, got %v", rec.Name)
	}
}

func TestEnrichDegradesGracefullyWithoutRegistryOrHTTP(t *testing.T) {
	agg := &dataset.Aggregates{
		ProviderTotals:  map[string]*models.ProviderTotals{},
		RegistryByNPI:   map[string]models.RegistryEntry{},
		ExclusionsByNPI: map[string]models.ExclusionEntry{},
	}
	client := &Client{Agg: agg, Log: zerolog.Nop()}
	rec := &models.ProviderRecord{NPI: "1", Name: "NPI 1"}

	client.Enrich(context.Background(), rec)

	if rec.Name != "NPI 1" {
		t.Errorf("an unresolvable NPI must keep its placeholder name, got %v", rec.Name)
	}
}
