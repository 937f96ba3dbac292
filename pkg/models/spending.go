// Package models defines the normalized row and result types shared across
// the dataset, signal, merge, enrich, annotate, and report packages.
package models

import "time"

// SpendingRecord is one row of the normalized spending table: a
// (billing provider, servicing provider, procedure code, claim month) tuple
// with aggregate totals. Provider numbers are opaque strings — never
// parsed as integers, so leading zeros and the all-zero sentinel survive.
type SpendingRecord struct {
	BillingNPI     string    `json:"billingNpi"`
	ServicingNPI   string    `json:"servicingNpi"`
	HCPCS          string    `json:"hcpcs"`
	ClaimMonth     time.Time `json:"claimMonth"` // first-of-month
	Beneficiaries  int64     `json:"totalUniqueBeneficiaries"`
	Claims         int64     `json:"totalClaims"`
	Paid           float64   `json:"totalPaid"`
}

// MonthKey returns the YYYY-MM form used for grouping and display.
func (s SpendingRecord) MonthKey() string {
	return s.ClaimMonth.Format("2006-01")
}
