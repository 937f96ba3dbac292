package signals

import (
	"context"
	"testing"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func orgWithWorkers(orgNPI string, workers int, claims int64) ([]models.RegistryEntry, []models.SpendingRecord) {
	registry := []models.RegistryEntry{{NPI: orgNPI, EntityTypeCode: "2", OrgName: "Org Clinic"}}
	var spending []models.SpendingRecord
	perWorker := claims / int64(workers)
	for i := 0; i < workers; i++ {
		servNPI := orgNPI + "s"
		if i > 0 {
			servNPI = orgNPI + string(rune('a'+i))
		}
		spending = append(spending, models.SpendingRecord{
			BillingNPI: orgNPI, ServicingNPI: servNPI, HCPCS: "99213",
			ClaimMonth: month(2024, time.January), Claims: perWorker, Beneficiaries: 5, Paid: 1000,
		})
	}
	return registry, spending
}

func TestDetectWorkforceImpossibilityFlagsOverCapacity(t *testing.T) {
	// 1 worker at 176 hours/month allows 1056 claims at the 6/hr ceiling; 2000 claims exceeds it.
	registry, spending := orgWithWorkers("1", 1, 2000)
	env := buildEnv(spending, nil, registry)
	out, err := DetectWorkforceImpossibility(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].NPI != "1" {
		t.Fatalf("expected org 1 flagged, got %+v", out)
	}
	if out[0].Severity != models.SeverityHigh {
		t.Errorf("Severity = %v, want high", out[0].Severity)
	}
}

func TestDetectWorkforceImpossibilityBelowRateSkipped(t *testing.T) {
	// 1000 claims / 176 hours ~= 5.68/hr, under the 6/hr ceiling.
	registry, spending := orgWithWorkers("1", 1, 1000)
	env := buildEnv(spending, nil, registry)
	out, err := DetectWorkforceImpossibility(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected no signal under the claims-per-hour ceiling, got %+v", out)
	}
}

func TestDetectWorkforceImpossibilityNoRegistryDegradesGracefully(t *testing.T) {
	_, spending := orgWithWorkers("1", 1, 2000)
	env := buildEnv(spending, nil, nil)
	out, err := DetectWorkforceImpossibility(context.Background(), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("without registry data the detector must skip entirely, got %+v", out)
	}
}
