package signals

import (
	"context"
	"testing"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func hhRow(npi string, y int, m time.Month, paid float64, claims, benes int64) models.SpendingRecord {
	return models.SpendingRecord{BillingNPI: npi, ServicingNPI: npi, HCPCS: "G0151", ClaimMonth: month(y, m), Beneficiaries: benes, Claims: claims, Paid: paid}
}

func TestDetectHomeHealthAbuseFlagsExcessRatio(t *testing.T) {
	spending := []models.SpendingRecord{hhRow("1", 2024, time.January, 6000, 600, 10)}
	env := buildEnv(spending, nil, nil)
	out, err := DetectHomeHealthAbuse(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].NPI != "1" {
		t.Fatalf("expected provider 1 flagged, got %+v", out)
	}
	if out[0].Severity != models.SeverityHigh {
		t.Errorf("Severity = %v, want high", out[0].Severity)
	}
}

func TestDetectHomeHealthAbuseAtRatioFloorSkipped(t *testing.T) {
	// claims/beneficiaries == 50 exactly, the gate requires strictly > 50.
	spending := []models.SpendingRecord{hhRow("1", 2024, time.January, 6000, 500, 10)}
	env := buildEnv(spending, nil, nil)
	out, err := DetectHomeHealthAbuse(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected no signal at the ratio floor, got %+v", out)
	}
}

func TestDetectHomeHealthAbuseAtPaidFloorSkipped(t *testing.T) {
	// paid == 5000 exactly, the gate requires strictly > 5000.
	spending := []models.SpendingRecord{hhRow("1", 2024, time.January, 5000, 600, 10)}
	env := buildEnv(spending, nil, nil)
	out, err := DetectHomeHealthAbuse(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected no signal at the paid floor, got %+v", out)
	}
}
