package signals

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func hubRows(servicingNPI string, billingCount int) []models.SpendingRecord {
	var spending []models.SpendingRecord
	for i := 0; i < billingCount; i++ {
		billingNPI := fmt.Sprintf("50000%05d", i)
		spending = append(spending, models.SpendingRecord{
			BillingNPI: billingNPI, ServicingNPI: servicingNPI, HCPCS: "99213",
			ClaimMonth: month(2024, time.January), Claims: 10, Beneficiaries: 5, Paid: 1000,
		})
	}
	return spending
}

func TestDetectPhantomServicingHubFlagsFiveBillingNPIs(t *testing.T) {
	spending := hubRows("9", 5)
	env := buildEnv(spending, nil, nil)
	out, err := DetectPhantomServicingHub(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].NPI != "9" {
		t.Fatalf("expected servicing NPI 9 flagged, got %+v", out)
	}
	if out[0].Severity != models.SeverityHigh {
		t.Errorf("Severity = %v, want high", out[0].Severity)
	}
}

func TestDetectPhantomServicingHubBelowMinBillingNPIsSkipped(t *testing.T) {
	spending := hubRows("9", 4)
	env := buildEnv(spending, nil, nil)
	out, err := DetectPhantomServicingHub(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("4 billing NPIs is below the 5-NPI floor, expected no signal, got %+v", out)
	}
}
