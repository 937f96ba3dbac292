package merge

import (
	"testing"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func TestMergeFoldsByNPI(t *testing.T) {
	s1 := []models.Signal{
		{NPI: "1", SignalType: "statistical_billing_outlier", Severity: models.SeverityHigh, EstimatedOverpaymentUSD: 100},
	}
	s2 := []models.Signal{
		{NPI: "1", SignalType: "procedure_code_concentration", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 50},
		{NPI: "2", SignalType: "procedure_code_concentration", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 10},
	}
	records := Merge([][]models.Signal{s1, s2})
	if len(records) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(records))
	}
	rec1 := records["1"]
	if len(rec1.Signals) != 2 {
		t.Fatalf("provider 1 should have 2 signals, got %d", len(rec1.Signals))
	}
	if rec1.CombinedOverpaymentUSD != 150 {
		t.Errorf("combined overpayment = %v, want 150", rec1.CombinedOverpaymentUSD)
	}
}

func TestMergeEscalatesMediumOnMultiSignal(t *testing.T) {
	s1 := []models.Signal{{NPI: "1", SignalType: "a", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 10}}
	s2 := []models.Signal{{NPI: "1", SignalType: "b", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 10}}
	records := Merge([][]models.Signal{s1, s2})
	rec := records["1"]
	for _, s := range rec.Signals {
		if s.Severity != models.SeverityHigh {
			t.Errorf("medium severity on a 2-signal provider should escalate to high, got %v", s.Severity)
		}
	}
}

func TestMergeEscalatesMediumOnOverpaymentFloor(t *testing.T) {
	s1 := []models.Signal{{NPI: "1", SignalType: "a", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 600000}}
	records := Merge([][]models.Signal{s1})
	rec := records["1"]
	if rec.Signals[0].Severity != models.SeverityHigh {
		t.Errorf("a single medium signal over the $500k floor should escalate to high, got %v", rec.Signals[0].Severity)
	}
}

func TestMergeNeverEscalatesBelowFloorSingleSignal(t *testing.T) {
	s1 := []models.Signal{{NPI: "1", SignalType: "a", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 100}}
	records := Merge([][]models.Signal{s1})
	rec := records["1"]
	if rec.Signals[0].Severity != models.SeverityMedium {
		t.Errorf("a lone small medium signal should stay medium, got %v", rec.Signals[0].Severity)
	}
}

func TestMergeNeverTouchesCritical(t *testing.T) {
	s1 := []models.Signal{{NPI: "1", SignalType: "a", Severity: models.SeverityCritical, EstimatedOverpaymentUSD: 10}}
	s2 := []models.Signal{{NPI: "1", SignalType: "b", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 10}}
	records := Merge([][]models.Signal{s1, s2})
	rec := records["1"]
	if rec.Signals[0].Severity != models.SeverityCritical {
		t.Fatalf("critical severity must never change, got %v", rec.Signals[0].Severity)
	}
}

func TestMergeSortsDominantFirst(t *testing.T) {
	s1 := []models.Signal{{NPI: "1", SignalType: "z_signal", Severity: models.SeverityMedium, EstimatedOverpaymentUSD: 700000}}
	s2 := []models.Signal{{NPI: "1", SignalType: "a_signal", Severity: models.SeverityCritical, EstimatedOverpaymentUSD: 10}}
	records := Merge([][]models.Signal{s1, s2})
	rec := records["1"]
	if rec.Signals[0].Severity != models.SeverityCritical {
		t.Fatalf("dominant signal (lowest rank) must sort first, got severity %v", rec.Signals[0].Severity)
	}
}
