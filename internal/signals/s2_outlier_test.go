package signals

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func spendingRow(npi string, y int, m time.Month, paid float64, claims, benes int64) models.SpendingRecord {
	return models.SpendingRecord{BillingNPI: npi, ServicingNPI: npi, HCPCS: "99213", ClaimMonth: month(y, m), Beneficiaries: benes, Claims: claims, Paid: paid}
}

func TestDetectStatisticalOutlierFlagsTail(t *testing.T) {
	var spending []models.SpendingRecord
	for i := 0; i < 19; i++ {
		npi := fmt.Sprintf("10000%05d", i)
		spending = append(spending, spendingRow(npi, 2024, time.January, 1000, 10, 5))
	}
	spending = append(spending, spendingRow("9999999999", 2024, time.January, 100000, 10, 5))

	env := buildEnv(spending, nil, nil)
	out, err := DetectStatisticalOutlier(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly 1 outlier, got %d", len(out))
	}
	if out[0].NPI != "9999999999" {
		t.Errorf("NPI = %v, want 9999999999", out[0].NPI)
	}
	if out[0].Severity != models.SeverityHigh {
		t.Errorf("Severity = %v, want high", out[0].Severity)
	}
}

func TestDetectStatisticalOutlierDegeneratePopulation(t *testing.T) {
	var spending []models.SpendingRecord
	for i := 0; i < 5; i++ {
		npi := fmt.Sprintf("10000%05d", i)
		spending = append(spending, spendingRow(npi, 2024, time.January, 1000, 10, 5))
	}
	env := buildEnv(spending, nil, nil)
	out, err := DetectStatisticalOutlier(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil signals for a zero-variance population, got %d", len(out))
	}
}
