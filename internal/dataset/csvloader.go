package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// CSVLoader reads the three normalized input tables from CSV files. It is
// the one reference ingestion adapter kept in this repository — spec.md §1
// places format-specific ingestion out of scope for the engine itself, so
// this exists only to make the CLI runnable end to end against fixture
// data, not as a production download/parse pipeline (that collaborator may
// read Parquet, the wide NPPES CSV, or anything else that can fill a
// TableSet).
type CSVLoader struct {
	SpendingPath   string
	ExclusionsPath string
	RegistryPath   string // optional; "" skips
	CensusPath     string // optional; "" skips
}

// Load reads every configured path and returns a StaticTableSet. Missing
// SpendingPath/ExclusionsPath is a fatal "missing required input" per
// spec.md §7; missing RegistryPath/CensusPath is a degrade-gracefully case.
func (l CSVLoader) Load() (*StaticTableSet, error) {
	spending, err := loadSpending(l.SpendingPath)
	if err != nil {
		return nil, fmt.Errorf("missing required input: spending: %w", err)
	}
	exclusions, err := loadExclusions(l.ExclusionsPath)
	if err != nil {
		return nil, fmt.Errorf("missing required input: exclusions: %w", err)
	}

	ts := &StaticTableSet{SpendingRows: spending, ExclusionRows: exclusions}

	if l.RegistryPath != "" {
		registry, err := loadRegistry(l.RegistryPath)
		if err != nil {
			return nil, fmt.Errorf("optional input registry failed to parse: %w", err)
		}
		ts.RegistryRows = registry
	}
	if l.CensusPath != "" {
		census, err := loadCensus(l.CensusPath)
		if err != nil {
			return nil, fmt.Errorf("optional input census failed to parse: %w", err)
		}
		ts.CensusRows = census
	}
	return ts, nil
}

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r, f, nil
}

// csvHeaderIndex maps normalized (upper, trimmed) header names to column index.
func csvHeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return idx
}

func field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseMoney(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
	v, _ := strconv.ParseFloat(s, 64)
	if v < 0 {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	v, _ := strconv.ParseInt(s, 10, 64)
	if v < 0 {
		return 0
	}
	return v
}

func parseClaimMonth(s string) (time.Time, error) {
	return time.Parse("2006-01", strings.TrimSpace(s))
}

func loadSpending(path string) ([]models.SpendingRecord, error) {
	r, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	idx := csvHeaderIndex(header)

	var out []models.SpendingRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		month, err := parseClaimMonth(field(row, idx, "CLAIM_FROM_MONTH"))
		if err != nil {
			continue
		}
		out = append(out, models.SpendingRecord{
			BillingNPI:    field(row, idx, "BILLING_PROVIDER_NPI_NUM"),
			ServicingNPI:  field(row, idx, "SERVICING_PROVIDER_NPI_NUM"),
			HCPCS:         field(row, idx, "HCPCS_CODE"),
			ClaimMonth:    month,
			Beneficiaries: parseInt(field(row, idx, "TOTAL_UNIQUE_BENEFICIARIES")),
			Claims:        parseInt(field(row, idx, "TOTAL_CLAIMS")),
			Paid:          parseMoney(field(row, idx, "TOTAL_PAID")),
		})
	}
	return out, nil
}

func loadExclusions(path string) ([]models.ExclusionEntry, error) {
	r, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	idx := csvHeaderIndex(header)

	var out []models.ExclusionEntry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.ExclusionEntry{
			NPI:       field(row, idx, "NPI"),
			LastName:  field(row, idx, "LASTNAME"),
			FirstName: field(row, idx, "FIRSTNAME"),
			MidName:   field(row, idx, "MIDNAME"),
			BusName:   field(row, idx, "BUSNAME"),
			State:     field(row, idx, "STATE"),
			ExclType:  field(row, idx, "EXCLTYPE"),
			ExclDate:  field(row, idx, "EXCLDATE"),
			ReinDate:  field(row, idx, "REINDATE"),
		})
	}
	return out, nil
}

// loadRegistry accepts either the slim normalized column form or will read
// whatever columns are present by name — it does not attempt to translate
// the full upstream NPPES wide CSV's 300-column schema; that translation is
// the out-of-scope ingestion collaborator's job (spec.md §6).
func loadRegistry(path string) ([]models.RegistryEntry, error) {
	r, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	idx := csvHeaderIndex(header)

	var out []models.RegistryEntry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.RegistryEntry{
			NPI:                   field(row, idx, "NPI"),
			EntityTypeCode:        field(row, idx, "ENTITY_TYPE_CODE"),
			OrgName:               field(row, idx, "ORG_NAME"),
			LastName:              field(row, idx, "LAST_NAME"),
			FirstName:             field(row, idx, "FIRST_NAME"),
			State:                 field(row, idx, "STATE"),
			PostalCode:            field(row, idx, "POSTAL_CODE"),
			TaxonomyCode:          field(row, idx, "TAXONOMY_CODE"),
			EnumerationDate:       field(row, idx, "ENUMERATION_DATE"),
			AuthOfficialLastName:  field(row, idx, "AUTH_OFFICIAL_LAST_NAME"),
			AuthOfficialFirstName: field(row, idx, "AUTH_OFFICIAL_FIRST_NAME"),
		})
	}
	return out, nil
}

func loadCensus(path string) ([]models.CensusZCTA, error) {
	r, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	idx := csvHeaderIndex(header)

	var out []models.CensusZCTA
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.CensusZCTA{
			ZCTA:       field(row, idx, "ZCTA"),
			Population: parseInt(field(row, idx, "POPULATION")),
			Pop65Plus:  parseInt(field(row, idx, "POP_65_PLUS")),
			Disability: parseInt(field(row, idx, "DISABILITY")),
			Poverty:    parseInt(field(row, idx, "POVERTY")),
		})
	}
	return out, nil
}
