package signals

import "sort"

// sortedKeys returns the keys of m in ascending order — every detector uses
// this before emitting so ties break "ascending NPI" deterministically
// (spec.md §4.1) and re-running the engine on the same input is
// byte-identical (spec.md §8 invariant 7).
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// roundCents rounds a dollar amount to the nearest cent for presentation —
// internal arithmetic elsewhere stays double precision (spec.md §4.2).
func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
