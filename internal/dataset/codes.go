package dataset

import "fmt"

// Fixed HCPCS code sets (spec.md §6). Built once at package init from the
// literal ranges the spec enumerates — never parsed from a config file,
// since these are federally fixed code sets, not deployment-tunable
// thresholds.
var (
	emCodes = buildCodeSet(
		codeRange("992", 1, 5),
		codeRange("992", 11, 15),
		codeRange("992", 21, 23),
		codeRange("992", 31, 33),
		codeRange("992", 41, 45),
		codeRange("992", 51, 55),
	)

	hhCodes = buildCodeSet(
		hcpcsRange("G", 151, 162),
		hcpcsRange("G", 299, 300),
		hcpcsRange("S", 9122, 9124),
		hcpcsRange("T", 1019, 1022),
	)
)

// codeRange expands a fixed three-digit CPT prefix over a two-digit numeric
// suffix, e.g. codeRange("992", 1, 5) -> 99201..99205.
func codeRange(prefix string, lo, hi int) []string {
	out := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, fmt.Sprintf("%s%02d", prefix, n))
	}
	return out
}

// hcpcsRange expands an alpha-prefixed HCPCS code over a numeric suffix,
// e.g. hcpcsRange("G", 151, 162) -> G0151..G0162.
func hcpcsRange(prefix string, lo, hi int) []string {
	out := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, fmt.Sprintf("%s%04d", prefix, n))
	}
	return out
}

func buildCodeSet(groups ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, g := range groups {
		for _, code := range g {
			set[code] = true
		}
	}
	return set
}

// IsEvaluationManagement reports whether code is one of the fixed E&M codes.
func IsEvaluationManagement(code string) bool {
	return emCodes[code]
}

// IsHomeHealth reports whether code is one of the fixed home-health codes.
func IsHomeHealth(code string) bool {
	return hhCodes[code]
}
