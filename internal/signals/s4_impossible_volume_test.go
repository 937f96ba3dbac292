package signals

import (
	"context"
	"testing"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func TestDetectImpossibleVolumeFlagsRatio(t *testing.T) {
	npi := "1000000001"
	// 600 claims / 1 beneficiary = 600 > 500 floor, paid 2000 > 1000 floor.
	spending := []models.SpendingRecord{spendingRow(npi, 2024, time.January, 2000, 600, 1)}
	env := buildEnv(spending, nil, nil)
	out, err := DetectImpossibleVolume(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(out))
	}
	if out[0].EstimatedOverpaymentUSD != 1800 { // 0.9 * 2000
		t.Errorf("overpayment = %v, want 1800", out[0].EstimatedOverpaymentUSD)
	}
}

func TestDetectImpossibleVolumeBelowPaidFloorSkipped(t *testing.T) {
	npi := "1000000002"
	// High ratio but paid sits exactly at the floor.
	spending := []models.SpendingRecord{spendingRow(npi, 2024, time.January, 1000, 600, 1)}
	env := buildEnv(spending, nil, nil)
	out, err := DetectImpossibleVolume(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no signal at the paid floor boundary, got %d", len(out))
	}
}

func TestDetectImpossibleVolumeZeroBeneficiariesSkipped(t *testing.T) {
	npi := "1000000003"
	spending := []models.SpendingRecord{spendingRow(npi, 2024, time.January, 5000, 300, 0)}
	env := buildEnv(spending, nil, nil)
	out, err := DetectImpossibleVolume(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("zero-beneficiary months must never divide by zero into a signal, got %d", len(out))
	}
}
