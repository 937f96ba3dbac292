package dataset

import (
	"sort"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// Aggregates holds every reusable derived table materialized once per run
// (spec.md §3 "Derived aggregates"). Detectors read these fields directly —
// they never recompute a group-by that another detector also needs.
type Aggregates struct {
	ProviderTotals     map[string]*models.ProviderTotals
	ProviderCodeTotals map[string][]*models.ProviderCodeTotal
	ProviderMonthly    map[string][]*models.ProviderMonth // sorted ascending by Month
	SpendingEM         []models.SpendingRecord
	SpendingHH         []models.SpendingRecord
	ServStateMonthly   []models.ServStateMonth
	OrgWorkerMonthly   map[string][]*models.OrgWorkerMonth // organizations only, sorted by Month
	ServicingHubTotals map[string]map[string]*models.ServicingHubTotal // servicing_npi -> billing_npi -> totals
	HHZipTotals        []models.HHZipTotal

	RegistryByNPI   map[string]models.RegistryEntry
	ExclusionsByNPI map[string]models.ExclusionEntry // active + linkable only

	CensusByZCTA map[string]models.CensusZCTA

	HasRegistry bool
	HasCensus   bool

	// FirstBillingMonth is the earliest ClaimMonth seen per billing NPI,
	// used by the rapid-escalation family of signals (S3, S14).
	FirstBillingMonth map[string]time.Time
	LastBillingMonth  map[string]time.Time

	// DistinctBillingNPIs approximates total_providers_scanned (spec.md §4.6).
	DistinctBillingNPIs int64
}

// Build materializes every aggregate from a TableSet in a single pass (plus
// the handful of secondary passes that need a completed provider_totals or
// provider_monthly map first). This runs once at startup; detectors never
// call it.
func Build(ts TableSet) *Aggregates {
	agg := &Aggregates{
		ProviderTotals:     make(map[string]*models.ProviderTotals),
		ProviderCodeTotals: make(map[string][]*models.ProviderCodeTotal),
		ProviderMonthly:    make(map[string][]*models.ProviderMonth),
		ServicingHubTotals: make(map[string]map[string]*models.ServicingHubTotal),
		RegistryByNPI:      make(map[string]models.RegistryEntry),
		ExclusionsByNPI:    make(map[string]models.ExclusionEntry),
		CensusByZCTA:       make(map[string]models.CensusZCTA),
		FirstBillingMonth:  make(map[string]time.Time),
		LastBillingMonth:   make(map[string]time.Time),
	}

	spending := ts.Spending()

	providerCodeIndex := make(map[string]map[string]*models.ProviderCodeTotal)
	providerMonthIndex := make(map[string]map[int64]*models.ProviderMonth)
	servStateIndex := make(map[string]*models.ServStateMonth)
	hhZipIndex := make(map[string]*models.HHZipTotal)
	distinctBilling := make(map[string]bool)

	registry := ts.Registry()
	agg.HasRegistry = len(registry) > 0
	registryByNPI := make(map[string]models.RegistryEntry, len(registry))
	for _, r := range registry {
		agg.RegistryByNPI[r.NPI] = r
		registryByNPI[r.NPI] = r
	}

	for _, e := range ts.Exclusions() {
		if !e.Linkable() || !e.Active() {
			continue
		}
		agg.ExclusionsByNPI[e.NPI] = e
	}

	census := ts.Census()
	agg.HasCensus = len(census) > 0
	for _, c := range census {
		agg.CensusByZCTA[c.ZCTA] = c
	}

	for _, rec := range spending {
		distinctBilling[rec.BillingNPI] = true

		pt, ok := agg.ProviderTotals[rec.BillingNPI]
		if !ok {
			pt = &models.ProviderTotals{NPI: rec.BillingNPI}
			agg.ProviderTotals[rec.BillingNPI] = pt
		}
		pt.TotalPaid += rec.Paid
		pt.TotalClaims += rec.Claims
		pt.TotalBeneficiaries += rec.Beneficiaries

		codeMap, ok := providerCodeIndex[rec.BillingNPI]
		if !ok {
			codeMap = make(map[string]*models.ProviderCodeTotal)
			providerCodeIndex[rec.BillingNPI] = codeMap
		}
		ct, ok := codeMap[rec.HCPCS]
		if !ok {
			ct = &models.ProviderCodeTotal{NPI: rec.BillingNPI, HCPCS: rec.HCPCS}
			codeMap[rec.HCPCS] = ct
			agg.ProviderCodeTotals[rec.BillingNPI] = append(agg.ProviderCodeTotals[rec.BillingNPI], ct)
		}
		ct.Paid += rec.Paid
		ct.Claims += rec.Claims

		monthMap, ok := providerMonthIndex[rec.BillingNPI]
		if !ok {
			monthMap = make(map[int64]*models.ProviderMonth)
			providerMonthIndex[rec.BillingNPI] = monthMap
		}
		monthKey := rec.ClaimMonth.Unix()
		pm, ok := monthMap[monthKey]
		if !ok {
			pm = &models.ProviderMonth{NPI: rec.BillingNPI, Month: rec.ClaimMonth}
			monthMap[monthKey] = pm
			agg.ProviderMonthly[rec.BillingNPI] = append(agg.ProviderMonthly[rec.BillingNPI], pm)
		}
		pm.Paid += rec.Paid
		pm.Claims += rec.Claims
		pm.Beneficiaries += rec.Beneficiaries

		if first, ok := agg.FirstBillingMonth[rec.BillingNPI]; !ok || rec.ClaimMonth.Before(first) {
			agg.FirstBillingMonth[rec.BillingNPI] = rec.ClaimMonth
		}
		if last, ok := agg.LastBillingMonth[rec.BillingNPI]; !ok || rec.ClaimMonth.After(last) {
			agg.LastBillingMonth[rec.BillingNPI] = rec.ClaimMonth
		}

		if IsEvaluationManagement(rec.HCPCS) {
			agg.SpendingEM = append(agg.SpendingEM, rec)
		}
		if IsHomeHealth(rec.HCPCS) {
			agg.SpendingHH = append(agg.SpendingHH, rec)
		}

		if servState, ok := registryByNPI[rec.ServicingNPI]; ok && servState.State != "" {
			ssKey := rec.BillingNPI + "|" + rec.MonthKey() + "|" + servState.State
			ss, ok := servStateIndex[ssKey]
			if !ok {
				ss = &models.ServStateMonth{BillingNPI: rec.BillingNPI, Month: rec.ClaimMonth, ServicingState: servState.State}
				servStateIndex[ssKey] = ss
			}
			ss.Paid += rec.Paid
			ss.Claims += rec.Claims
		}

		if rec.ServicingNPI != "" && rec.ServicingNPI != rec.BillingNPI {
			billingMap, ok := agg.ServicingHubTotals[rec.ServicingNPI]
			if !ok {
				billingMap = make(map[string]*models.ServicingHubTotal)
				agg.ServicingHubTotals[rec.ServicingNPI] = billingMap
			}
			hub, ok := billingMap[rec.BillingNPI]
			if !ok {
				hub = &models.ServicingHubTotal{ServicingNPI: rec.ServicingNPI, BillingNPI: rec.BillingNPI}
				billingMap[rec.BillingNPI] = hub
			}
			hub.Paid += rec.Paid
			hub.Claims += rec.Claims
		}
	}
	agg.DistinctBillingNPIs = int64(len(distinctBilling))

	for _, ss := range servStateIndex {
		agg.ServStateMonthly = append(agg.ServStateMonthly, *ss)
	}

	for npi, months := range agg.ProviderMonthly {
		sort.Slice(months, func(i, j int) bool { return months[i].Month.Before(months[j].Month) })
		agg.ProviderMonthly[npi] = months
	}

	// org_worker_monthly: per (org_npi, month), count distinct servicing NPIs.
	if agg.HasRegistry {
		orgMonthWorkers := make(map[string]map[int64]map[string]bool)
		orgMonthClaims := make(map[string]map[int64]int64)
		for _, rec := range spending {
			reg, ok := registryByNPI[rec.BillingNPI]
			if !ok || !reg.IsOrganization() || rec.ServicingNPI == "" {
				continue
			}
			monthKey := rec.ClaimMonth.Unix()
			workers, ok := orgMonthWorkers[rec.BillingNPI]
			if !ok {
				workers = make(map[int64]map[string]bool)
				orgMonthWorkers[rec.BillingNPI] = workers
			}
			set, ok := workers[monthKey]
			if !ok {
				set = make(map[string]bool)
				workers[monthKey] = set
			}
			set[rec.ServicingNPI] = true

			claims, ok := orgMonthClaims[rec.BillingNPI]
			if !ok {
				claims = make(map[int64]int64)
				orgMonthClaims[rec.BillingNPI] = claims
			}
			claims[monthKey] += rec.Claims
		}
		agg.OrgWorkerMonthly = make(map[string][]*models.OrgWorkerMonth, len(orgMonthWorkers))
		for npi, months := range orgMonthWorkers {
			for monthUnix, workerSet := range months {
				agg.OrgWorkerMonthly[npi] = append(agg.OrgWorkerMonthly[npi], &models.OrgWorkerMonth{
					OrgNPI:               npi,
					Month:                time.Unix(monthUnix, 0).UTC(),
					DistinctServicingNPI: len(workerSet),
					TotalClaims:          orgMonthClaims[npi][monthUnix],
				})
			}
			sort.Slice(agg.OrgWorkerMonthly[npi], func(i, j int) bool {
				return agg.OrgWorkerMonthly[npi][i].Month.Before(agg.OrgWorkerMonthly[npi][j].Month)
			})
		}
	}

	// hh_zip_totals: restricted to home-health spending, grouped by (zip, npi).
	for _, rec := range agg.SpendingHH {
		reg, hasReg := registryByNPI[rec.BillingNPI]
		zip := reg.PostalCode
		if len(zip) > 5 {
			zip = zip[:5]
		}
		key := zip + "|" + rec.BillingNPI
		hz, ok := hhZipIndex[key]
		if !ok {
			hz = &models.HHZipTotal{ZIP: zip, NPI: rec.BillingNPI}
			if hasReg {
				hz.State = reg.State
				hz.EntityType = reg.EntityType()
				hz.ProviderName = reg.DisplayName()
			} else {
				hz.EntityType = "unknown"
			}
			hhZipIndex[key] = hz
		}
		hz.Paid += rec.Paid
		hz.Claims += rec.Claims
		hz.Beneficiaries += rec.Beneficiaries
	}
	for _, hz := range hhZipIndex {
		agg.HHZipTotals = append(agg.HHZipTotals, *hz)
	}

	return agg
}
