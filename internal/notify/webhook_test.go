package notify

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

func TestNotifyReportSkipsRecordsWithoutAnnotation(t *testing.T) {
	m := NewManager(zerolog.Nop())
	m.RegisterWebhook(WebhookEndpoint{Name: "test", URL: "http://example.invalid", MinSeverity: models.SeverityMedium})
	rpt := models.Report{
		GeneratedAt: time.Now(),
		FlaggedProviders: []models.ProviderRecord{
			{NPI: "1", Signals: []models.Signal{{SignalType: "s", Severity: models.SeverityHigh}}}, // no Annotation
		},
	}
	m.NotifyReport(rpt)
	if len(m.RecentAlerts(10)) != 0 {
		t.Error("a record without an annotation should never produce an alert")
	}
}

func TestNotifyReportRecordsHistory(t *testing.T) {
	m := NewManager(zerolog.Nop())
	m.RegisterWebhook(WebhookEndpoint{Name: "test", URL: "http://example.invalid", MinSeverity: models.SeverityMedium})
	rpt := models.Report{
		GeneratedAt: time.Now(),
		FlaggedProviders: []models.ProviderRecord{
			{
				NPI:                    "1",
				Name:                   "Acme Clinic",
				CombinedOverpaymentUSD: 1000,
				Signals:                []models.Signal{{SignalType: "statistical_billing_outlier", Severity: models.SeverityHigh}},
				Annotation:             &models.FCAAnnotation{ViolationDescription: "test"},
			},
		},
	}
	m.NotifyReport(rpt)
	alerts := m.RecentAlerts(10)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].NPI != "1" || alerts[0].DominantSignal != "statistical_billing_outlier" {
		t.Errorf("alert = %+v, unexpected fields", alerts[0])
	}
}

func TestRecentAlertsNewestFirst(t *testing.T) {
	m := NewManager(zerolog.Nop())
	m.RegisterWebhook(WebhookEndpoint{Name: "test", URL: "http://example.invalid", MinSeverity: models.SeverityMedium})
	for i := 0; i < 3; i++ {
		rpt := models.Report{
			GeneratedAt: time.Now(),
			FlaggedProviders: []models.ProviderRecord{
				{
					NPI:     string(rune('A' + i)),
					Signals: []models.Signal{{SignalType: "s", Severity: models.SeverityHigh}},
					Annotation: &models.FCAAnnotation{},
				},
			},
		}
		m.NotifyReport(rpt)
	}
	alerts := m.RecentAlerts(3)
	if alerts[0].NPI != "C" {
		t.Errorf("most recent alert should be first, got NPI %v", alerts[0].NPI)
	}
}
