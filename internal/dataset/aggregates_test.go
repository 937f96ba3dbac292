package dataset

import (
	"testing"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func TestBuildAggregatesProviderTotals(t *testing.T) {
	ts := &StaticTableSet{
		SpendingRows: []models.SpendingRecord{
			{BillingNPI: "1", ServicingNPI: "1", HCPCS: "99213", ClaimMonth: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Claims: 10, Beneficiaries: 5, Paid: 1000},
			{BillingNPI: "1", ServicingNPI: "1", HCPCS: "99213", ClaimMonth: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Claims: 20, Beneficiaries: 8, Paid: 2000},
			{BillingNPI: "2", ServicingNPI: "2", HCPCS: "99214", ClaimMonth: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Claims: 5, Beneficiaries: 4, Paid: 500},
		},
	}
	agg := Build(ts)

	if agg.DistinctBillingNPIs != 2 {
		t.Errorf("DistinctBillingNPIs = %v, want 2", agg.DistinctBillingNPIs)
	}
	pt := agg.ProviderTotals["1"]
	if pt.TotalPaid != 3000 || pt.TotalClaims != 30 || pt.TotalBeneficiaries != 13 {
		t.Errorf("provider 1 totals = %+v, want paid=3000 claims=30 benes=13", pt)
	}

	months := agg.ProviderMonthly["1"]
	if len(months) != 2 {
		t.Fatalf("expected 2 months for provider 1, got %d", len(months))
	}
	if !months[0].Month.Before(months[1].Month) {
		t.Error("ProviderMonthly must be sorted ascending by month")
	}
}

func TestBuildAggregatesExclusionsFilterInactive(t *testing.T) {
	ts := &StaticTableSet{
		ExclusionRows: []models.ExclusionEntry{
			{NPI: "1", ReinDate: ""},             // active
			{NPI: "2", ReinDate: "20200101"},      // reinstated, inactive
			{NPI: "0000000000", ReinDate: ""},     // unlinkable
		},
	}
	agg := Build(ts)
	if _, ok := agg.ExclusionsByNPI["1"]; !ok {
		t.Error("active exclusion for NPI 1 should be present")
	}
	if _, ok := agg.ExclusionsByNPI["2"]; ok {
		t.Error("reinstated exclusion for NPI 2 should be filtered out")
	}
	if _, ok := agg.ExclusionsByNPI["0000000000"]; ok {
		t.Error("an all-zero NPI should never be linkable")
	}
}

func TestBuildAggregatesNoRegistryDegradesGracefully(t *testing.T) {
	ts := &StaticTableSet{
		SpendingRows: []models.SpendingRecord{
			{BillingNPI: "1", HCPCS: "99213", ClaimMonth: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Claims: 1, Beneficiaries: 1, Paid: 100},
		},
	}
	agg := Build(ts)
	if agg.HasRegistry {
		t.Error("HasRegistry should be false with no registry rows")
	}
	if agg.OrgWorkerMonthly != nil {
		t.Error("OrgWorkerMonthly should stay unpopulated without a registry")
	}
}
