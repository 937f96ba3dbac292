package annotate

import (
	"strings"
	"testing"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/signals"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func TestAnnotatePicksDominantSignal(t *testing.T) {
	rec := &models.ProviderRecord{
		NPI:                    "1234567890",
		Name:                   "Acme Clinic LLC",
		State:                  "TX",
		CombinedOverpaymentUSD: 12345.67,
		Signals: []models.Signal{
			{SignalType: signals.SignalExcludedProviderBilling, Severity: models.SeverityCritical},
			{SignalType: signals.SignalStatisticalOutlier, Severity: models.SeverityHigh},
		},
	}
	Annotate(rec)
	if rec.Annotation == nil {
		t.Fatal("expected a non-nil annotation")
	}
	if rec.Annotation.StatuteReference != "31 U.S.C. § 3729(a)(1)(A)" {
		t.Errorf("statute = %v, want (a)(1)(A) for the excluded-billing signal", rec.Annotation.StatuteReference)
	}
	if !strings.Contains(rec.Annotation.ViolationDescription, "Acme Clinic LLC") {
		t.Errorf("description should reference the provider's name: %v", rec.Annotation.ViolationDescription)
	}
	if len(rec.Annotation.SuggestedInvestigationSteps) == 0 {
		t.Error("expected at least one investigation step")
	}
}

func TestAnnotateNoSignalsNoop(t *testing.T) {
	rec := &models.ProviderRecord{NPI: "1"}
	Annotate(rec)
	if rec.Annotation != nil {
		t.Error("a provider with no signals must not receive an annotation")
	}
}

func TestAnnotateSubstitutesTokensNotVerbs(t *testing.T) {
	rec := &models.ProviderRecord{
		NPI:   "1234567890",
		Name:  "",
		State: "CA",
		Signals: []models.Signal{
			{SignalType: signals.SignalSharedOfficialNetwork, Severity: models.SeverityHigh},
		},
	}
	Annotate(rec)
	for _, step := range rec.Annotation.SuggestedInvestigationSteps {
		if strings.Contains(step, "{") {
			t.Errorf("step still contains an unsubstituted token: %q", step)
		}
	}
}

func TestAnnotatePlaceholderNameUsesNPI(t *testing.T) {
	rec := &models.ProviderRecord{
		NPI:  "1234567890",
		Name: "NPI 1234567890",
		Signals: []models.Signal{
			{SignalType: signals.SignalBustOutCollapse, Severity: models.SeverityHigh},
		},
	}
	Annotate(rec)
	if !strings.Contains(rec.Annotation.ViolationDescription, "NPI 1234567890") {
		t.Errorf("placeholder name should surface as NPI text: %v", rec.Annotation.ViolationDescription)
	}
}

func TestAnnotateUnknownSignalFallsBackToGenericStatute(t *testing.T) {
	rec := &models.ProviderRecord{
		NPI: "1",
		Signals: []models.Signal{
			{SignalType: "some_future_signal", Severity: models.SeverityHigh},
		},
	}
	Annotate(rec)
	if rec.Annotation.StatuteReference != "31 U.S.C. § 3729(a)(1)(A)" {
		t.Errorf("unmapped signal types should fall back to the generic subsection, got %v", rec.Annotation.StatuteReference)
	}
}
