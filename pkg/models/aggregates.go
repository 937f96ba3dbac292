package models

import "time"

// ProviderTotals is the provider_totals materialized aggregate: lifetime
// totals per billing NPI across all spending rows.
type ProviderTotals struct {
	NPI                string
	TotalPaid          float64
	TotalClaims        int64
	TotalBeneficiaries int64
}

// ProviderCodeTotal is one (npi, hcpcs) cell of provider_code_totals.
type ProviderCodeTotal struct {
	NPI    string
	HCPCS  string
	Paid   float64
	Claims int64
}

// ProviderMonth is one (npi, month) cell of provider_monthly.
type ProviderMonth struct {
	NPI           string
	Month         time.Time
	Paid          float64
	Claims        int64
	Beneficiaries int64
}

// ServStateMonth is one (billing_npi, month, servicing_state) cell.
type ServStateMonth struct {
	BillingNPI     string
	Month          time.Time
	ServicingState string
	Paid           float64
	Claims         int64
}

// OrgWorkerMonth counts distinct servicing NPIs worked by an organization in
// a given month — organizations only.
type OrgWorkerMonth struct {
	OrgNPI               string
	Month                time.Time
	DistinctServicingNPI int
	TotalClaims          int64
}

// ServicingHubTotal is one (servicing_npi, billing_npi) cell — used to spot
// a single servicing provider fanning out across many billing entities.
type ServicingHubTotal struct {
	ServicingNPI string
	BillingNPI   string
	Paid         float64
	Claims       int64
}

// HHZipTotal is one (zip, npi) cell restricted to home-health codes.
type HHZipTotal struct {
	ZIP           string
	State         string
	NPI           string
	EntityType    string
	ProviderName  string
	Paid          float64
	Claims        int64
	Beneficiaries int64
}
