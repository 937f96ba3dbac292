// Package notify delivers completion alerts for high-priority findings to
// registered webhook endpoints (Slack, Discord, a SIEM ingest URL) once a
// run's report is built. Strictly outside the critical path: delivery is
// asynchronous, best-effort, and never blocks or fails the run (spec.md §5
// "shared-resource policy").
//
// Grounded on the teacher's internal/heuristics/alert_system.go
// AlertManager: same webhook-registry + severity-threshold + async-fanout +
// in-memory-history shape, rewritten to emit one alert per flagged provider
// record at report-completion time instead of per-transaction in real
// time, and to use zerolog/google-uuid in place of the teacher's
// log.Printf and string-concatenation ID scheme.
package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// Alert is a structured notification for one flagged provider.
type Alert struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	Severity            string    `json:"severity"`
	NPI                 string    `json:"npi"`
	ProviderName        string    `json:"providerName"`
	DominantSignal      string    `json:"dominantSignal"`
	CombinedOverpayment float64   `json:"combinedOverpaymentUsd"`
}

// WebhookEndpoint is a registered webhook receiver.
type WebhookEndpoint struct {
	Name        string
	URL         string
	Headers     map[string]string
	MinSeverity models.Severity // only send alerts at or above this severity (by Rank, lower is more severe)
}

// Manager delivers alerts to registered webhooks. Safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	webhooks   []WebhookEndpoint
	history    []Alert
	maxHistory int
	httpClient *http.Client
	log        zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		maxHistory: 1000,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		log:        log,
	}
}

// RegisterWebhook adds a webhook endpoint.
func (m *Manager) RegisterWebhook(ep WebhookEndpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhooks = append(m.webhooks, ep)
	m.log.Info().Str("name", ep.Name).Str("minSeverity", string(ep.MinSeverity)).Msg("registered notification webhook")
}

// NotifyReport records one alert per flagged provider that has an
// annotation and at least one signal, and sends each alert to every
// registered webhook whose MinSeverity its dominant signal meets or
// exceeds. With no webhook registered it returns without recording
// anything.
func (m *Manager) NotifyReport(rpt models.Report) {
	m.mu.RLock()
	webhooks := append([]WebhookEndpoint(nil), m.webhooks...)
	m.mu.RUnlock()

	if len(webhooks) == 0 {
		return
	}

	for _, rec := range rpt.FlaggedProviders {
		if rec.Annotation == nil || len(rec.Signals) == 0 {
			continue
		}
		dominant := rec.Signals[0]
		alert := Alert{
			ID:                  uuid.NewString(),
			Timestamp:           rpt.GeneratedAt,
			Severity:            string(dominant.Severity),
			NPI:                 rec.NPI,
			ProviderName:        rec.Name,
			DominantSignal:      dominant.SignalType,
			CombinedOverpayment: rec.CombinedOverpaymentUSD,
		}

		m.mu.Lock()
		m.history = append(m.history, alert)
		if len(m.history) > m.maxHistory {
			m.history = m.history[len(m.history)-m.maxHistory:]
		}
		m.mu.Unlock()

		for _, wh := range webhooks {
			if dominant.Severity.Rank() > wh.MinSeverity.Rank() {
				continue
			}
			go m.send(wh, alert)
		}
	}
}

func (m *Manager) send(wh WebhookEndpoint, alert Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		m.log.Warn().Err(err).Str("webhook", wh.Name).Msg("failed to marshal alert")
		return
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewBuffer(payload))
	if err != nil {
		m.log.Warn().Err(err).Str("webhook", wh.Name).Msg("failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range wh.Headers {
		req.Header.Set(k, v)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.log.Warn().Err(err).Str("webhook", wh.Name).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		m.log.Warn().Str("webhook", wh.Name).Int("status", resp.StatusCode).Msg("webhook endpoint returned an error status")
	}
}

// RecentAlerts returns the most recently emitted alerts, newest first.
func (m *Manager) RecentAlerts(limit int) []Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.history) {
		limit = len(m.history)
	}
	out := make([]Alert, limit)
	for i := 0; i < limit; i++ {
		out[i] = m.history[len(m.history)-1-i]
	}
	return out
}
