package signals

import (
	"context"
	"testing"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func TestDetectExcludedProviderBilling(t *testing.T) {
	spending := []models.SpendingRecord{
		{BillingNPI: "1000000001", ServicingNPI: "1000000001", HCPCS: "99213", ClaimMonth: month(2024, time.January), Beneficiaries: 10, Claims: 20, Paid: 5000},
		{BillingNPI: "1000000002", ServicingNPI: "1000000002", HCPCS: "99213", ClaimMonth: month(2024, time.January), Beneficiaries: 10, Claims: 20, Paid: 5000},
	}
	exclusions := []models.ExclusionEntry{
		{NPI: "1000000001", ExclType: "1128a1", ExclDate: "20230101", ReinDate: ""},
		{NPI: "1000000002", ExclType: "1128a1", ExclDate: "20230101", ReinDate: "20231231"}, // reinstated, not active
	}

	env := buildEnv(spending, exclusions, nil)
	out, err := DetectExcludedProviderBilling(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly 1 flagged provider, got %d", len(out))
	}
	sig := out[0]
	if sig.NPI != "1000000001" {
		t.Errorf("NPI = %v, want 1000000001", sig.NPI)
	}
	if sig.Severity != models.SeverityCritical {
		t.Errorf("Severity = %v, want critical", sig.Severity)
	}
	if sig.EstimatedOverpaymentUSD != 5000 {
		t.Errorf("overpayment = %v, want 5000 (100%% of paid)", sig.EstimatedOverpaymentUSD)
	}
}

func TestDetectExcludedProviderBillingNoExclusions(t *testing.T) {
	spending := []models.SpendingRecord{
		{BillingNPI: "1000000003", HCPCS: "99213", ClaimMonth: month(2024, time.January), Claims: 5, Paid: 500},
	}
	env := buildEnv(spending, nil, nil)
	out, err := DetectExcludedProviderBilling(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no signals, got %d", len(out))
	}
}
