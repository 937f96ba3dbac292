// Package enrich fills in identity fields and lifetime totals for every
// merged provider record, preferring the local registry snapshot and
// falling back to a tolerant, cached, never-blocking HTTP lookup for NPIs
// absent from it (spec.md §4.4).
//
// Grounded on the original implementation's enrich_provider/lookup_npi_api
// functions (original_source/detect_fraud.py): same local-first,
// HTTP-fallback, cache-everything, fail-open shape, rewritten against the
// teacher's net/http client conventions instead of requests.
package enrich

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/dataset"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// Lookup is the shape of a single-NPI lookup against an external identity
// service. Client (below) does not take one: its fallback is lookupHTTP,
// which a nil HTTPClient or an empty BaseURL disables entirely —
// enrichment then degrades to registry-only, which is always a valid
// outcome (spec.md §4.4).
type Lookup func(ctx context.Context, npi string) (models.RegistryEntry, bool)

// Client enriches provider records. It is safe for concurrent use; the
// cache absorbs repeat lookups across a run so a fan-out NPI (e.g. a
// phantom servicing hub) never triggers more than one HTTP round trip.
type Client struct {
	Agg        *dataset.Aggregates
	HTTPClient *http.Client
	BaseURL    string // e.g. "https://npiregistry.cms.hhs.gov/api/v2.1"
	Log        zerolog.Logger

	mu    sync.Mutex
	cache map[string](*models.RegistryEntry)
}

// Enrich fills Name/EntityType/State/TaxonomyCode/EnumerationDate and the
// lifetime totals on rec. Registry rows win over any HTTP fallback result;
// HTTP results are cached and never block or fail the run — a failed
// lookup just leaves the record at its placeholder values.
func (c *Client) Enrich(ctx context.Context, rec *models.ProviderRecord) {
	if totals, ok := c.Agg.ProviderTotals[rec.NPI]; ok {
		rec.TotalPaid = maxFloat(rec.TotalPaid, totals.TotalPaid)
		rec.TotalClaims = maxInt(rec.TotalClaims, totals.TotalClaims)
		rec.TotalBeneficiaries = maxInt(rec.TotalBeneficiaries, totals.TotalBeneficiaries)
	}

	if reg, ok := c.Agg.RegistryByNPI[rec.NPI]; ok {
		applyRegistry(rec, reg)
		return
	}

	if c.HTTPClient == nil || c.BaseURL == "" {
		return
	}

	reg, ok := c.lookupHTTP(ctx, rec.NPI)
	if !ok {
		return
	}
	applyRegistry(rec, reg)
}

func applyRegistry(rec *models.ProviderRecord, reg models.RegistryEntry) {
	if name := reg.DisplayName(); name != "" && models.IsPlaceholderName(rec.Name, rec.NPI) {
		rec.Name = name
	}
	if rec.EntityType == "" || rec.EntityType == models.PlaceholderEntityType {
		rec.EntityType = reg.EntityType()
	}
	if rec.State == "" {
		rec.State = reg.State
	}
	if rec.TaxonomyCode == "" {
		rec.TaxonomyCode = reg.TaxonomyCode
	}
	if rec.EnumerationDate == "" {
		rec.EnumerationDate = reg.EnumerationDate
	}
}

// lookupHTTP queries the fallback identity service once per NPI per run,
// tolerating any transport or decode failure by returning ok=false — this
// path never surfaces an error to the caller (spec.md §4.4: "must never
// block the critical path").
func (c *Client) lookupHTTP(ctx context.Context, npi string) (models.RegistryEntry, bool) {
	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string]*models.RegistryEntry)
	}
	if cached, ok := c.cache[npi]; ok {
		c.mu.Unlock()
		if cached == nil {
			return models.RegistryEntry{}, false
		}
		return *cached, true
	}
	c.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.BaseURL+"?number="+npi, nil)
	if err != nil {
		c.storeCache(npi, nil)
		return models.RegistryEntry{}, false
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Warn().Err(err).Str("npi", npi).Msg("enrich: fallback lookup failed, leaving fields empty")
		c.storeCache(npi, nil)
		return models.RegistryEntry{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.storeCache(npi, nil)
		return models.RegistryEntry{}, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.storeCache(npi, nil)
		return models.RegistryEntry{}, false
	}

	var parsed npiAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Results) == 0 {
		c.storeCache(npi, nil)
		return models.RegistryEntry{}, false
	}

	reg := parsed.Results[0].toRegistryEntry(npi)
	c.storeCache(npi, &reg)
	return reg, true
}

func (c *Client) storeCache(npi string, reg *models.RegistryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[npi] = reg
}

// npiAPIResponse is the minimal slice of the NPPES registry API's JSON
// shape this client reads; everything else is ignored.
type npiAPIResponse struct {
	Results []npiAPIResult `json:"results"`
}

type npiAPIResult struct {
	EnumerationType string `json:"enumeration_type"`
	Basic           struct {
		OrganizationName string `json:"organization_name"`
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		EnumerationDate  string `json:"enumeration_date"`
	} `json:"basic"`
	Addresses []struct {
		AddressPurpose string `json:"address_purpose"`
		State          string `json:"state"`
		PostalCode     string `json:"postal_code"`
	} `json:"addresses"`
	Taxonomies []struct {
		Code    string `json:"code"`
		Primary bool   `json:"primary"`
	} `json:"taxonomies"`
}

func (r npiAPIResult) toRegistryEntry(npi string) models.RegistryEntry {
	entry := models.RegistryEntry{
		NPI:             npi,
		OrgName:         r.Basic.OrganizationName,
		FirstName:       r.Basic.FirstName,
		LastName:        r.Basic.LastName,
		EnumerationDate: r.Basic.EnumerationDate,
	}
	if r.EnumerationType == "NPI-2" {
		entry.EntityTypeCode = "2"
	} else {
		entry.EntityTypeCode = "1"
	}
	for _, addr := range r.Addresses {
		if addr.AddressPurpose == "LOCATION" {
			entry.State = addr.State
			entry.PostalCode = addr.PostalCode
			break
		}
	}
	for _, tx := range r.Taxonomies {
		if tx.Primary {
			entry.TaxonomyCode = tx.Code
			break
		}
	}
	return entry
}

func maxFloat(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}

func maxInt(a, b int64) int64 {
	if b > a {
		return b
	}
	return a
}
