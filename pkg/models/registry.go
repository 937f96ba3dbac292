package models

import "strings"

// RegistryEntry is one row of the NPPES provider registry, in its slim,
// normalized column form (spec.md §6). The wide upstream CSV is a collaborator
// format handled entirely by the ingestion adapter (internal/dataset), never
// by this type.
type RegistryEntry struct {
	NPI                    string `json:"npi"`
	EntityTypeCode         string `json:"entityTypeCode"` // "1"=individual, "2"=organization
	OrgName                string `json:"orgName"`
	LastName               string `json:"lastName"`
	FirstName              string `json:"firstName"`
	State                  string `json:"state"`
	PostalCode             string `json:"postalCode"`
	TaxonomyCode           string `json:"taxonomyCode"`
	EnumerationDate        string `json:"enumerationDate"` // YYYY-MM-DD
	AuthOfficialLastName   string `json:"authOfficialLastName"`
	AuthOfficialFirstName  string `json:"authOfficialFirstName"`
}

// EntityType returns "individual", "organization", or "unknown" for
// unresolvable/absent registry rows (spec.md §3 invariant: unresolvable NPIs
// degrade, they never crash a signal).
func (r RegistryEntry) EntityType() string {
	switch r.EntityTypeCode {
	case "1":
		return "individual"
	case "2":
		return "organization"
	default:
		return "unknown"
	}
}

// IsOrganization reports whether the row represents an organizational
// provider — the population S6/S11 and the organization-worker variant
// restrict themselves to.
func (r RegistryEntry) IsOrganization() bool {
	return r.EntityTypeCode == "2"
}

// DisplayName prefers the organization name, falling back to first+last.
func (r RegistryEntry) DisplayName() string {
	if r.OrgName != "" {
		return r.OrgName
	}
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name == "" {
		return ""
	}
	return name
}

// NormalizedOfficialKey returns the case/whitespace-normalized
// (last, first) key used to group organizations by shared authorized
// official (spec.md §4.2, S6).
func (r RegistryEntry) NormalizedOfficialKey() (string, bool) {
	last := strings.ToLower(strings.TrimSpace(r.AuthOfficialLastName))
	first := strings.ToLower(strings.TrimSpace(r.AuthOfficialFirstName))
	if last == "" || first == "" {
		return "", false
	}
	return last + "|" + first, true
}

// EnumerationQuarter returns a "YYYY-Qn" key derived from EnumerationDate,
// used by the burst-enrollment network signal. Returns "" if the date
// cannot be parsed.
func (r RegistryEntry) EnumerationQuarter() string {
	// EnumerationDate is YYYY-MM-DD; avoid a full time.Parse for a two-field read.
	if len(r.EnumerationDate) < 7 {
		return ""
	}
	year := r.EnumerationDate[0:4]
	monthStr := r.EnumerationDate[5:7]
	month := 0
	for _, c := range monthStr {
		if c < '0' || c > '9' {
			return ""
		}
		month = month*10 + int(c-'0')
	}
	if month < 1 || month > 12 {
		return ""
	}
	quarter := (month-1)/3 + 1
	return year + "-Q" + string(rune('0'+quarter))
}

// CensusZCTA holds optional ZIP Code Tabulation Area demographics. Signals
// that use it must check for its absence and degrade gracefully.
type CensusZCTA struct {
	ZCTA       string `json:"zcta"`
	Population int64  `json:"population"`
	Pop65Plus  int64  `json:"pop65Plus"`
	Disability int64  `json:"disability"`
	Poverty    int64  `json:"poverty"`
}
