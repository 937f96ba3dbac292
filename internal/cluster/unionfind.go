// Package cluster provides the shared grouping primitives the
// network-shaped signals build on (S6 uses Engine, S11 uses GroupByKey; S12
// groups with a plain map over servicing-hub totals and does not use this
// package), so "N distinct entities sharing a key" logic lives in one place
// rather than being copy-pasted into every detector (spec.md §9).
//
// Grounded on the teacher's weighted union-find address-clustering engine:
// same amortized-O(1) Find/Union shape, generalized from Bitcoin addresses
// to arbitrary string keys (NPIs, officials, taxonomy/state/quarter tuples).
package cluster

import "sort"

// Engine implements weighted union-find with path compression over string
// keys.
type Engine struct {
	parent map[string]string
	rank   map[string]int
	size   map[string]int
}

// New creates an empty clustering engine.
func New() *Engine {
	return &Engine{
		parent: make(map[string]string),
		rank:   make(map[string]int),
		size:   make(map[string]int),
	}
}

// Find returns the root representative of the cluster containing key,
// registering key as a singleton cluster on first sight.
func (e *Engine) Find(key string) string {
	if _, exists := e.parent[key]; !exists {
		e.parent[key] = key
		e.rank[key] = 0
		e.size[key] = 1
	}
	if e.parent[key] != key {
		e.parent[key] = e.Find(e.parent[key])
	}
	return e.parent[key]
}

// Union merges the clusters containing a and b. Returns true if a merge
// actually occurred (they were in different clusters).
func (e *Engine) Union(a, b string) bool {
	rootA, rootB := e.Find(a), e.Find(b)
	if rootA == rootB {
		return false
	}
	switch {
	case e.rank[rootA] < e.rank[rootB]:
		e.parent[rootA] = rootB
		e.size[rootB] += e.size[rootA]
	case e.rank[rootA] > e.rank[rootB]:
		e.parent[rootB] = rootA
		e.size[rootA] += e.size[rootB]
	default:
		e.parent[rootB] = rootA
		e.size[rootA] += e.size[rootB]
		e.rank[rootA]++
	}
	return true
}

// Groups returns every cluster with at least minSize members, as a map from
// root key to the sorted list of member keys. Deterministic: every member
// list is sorted ascending so detector output never depends on map
// iteration order.
func (e *Engine) Groups(minSize int) map[string][]string {
	byRoot := make(map[string][]string)
	keys := make([]string, 0, len(e.parent))
	for k := range e.parent {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		root := e.Find(k)
		byRoot[root] = append(byRoot[root], k)
	}
	for root, members := range byRoot {
		if len(members) < minSize {
			delete(byRoot, root)
			continue
		}
		sort.Strings(members)
	}
	return byRoot
}

// GroupByKey is a simpler, non-union-find grouping helper for signals whose
// membership is a flat equivalence (same normalized key), not a transitive
// graph merge — e.g. "same (taxonomy, state, quarter)" tuples. It exists
// alongside Engine because not every network signal needs transitive
// merging; forcing one through union-find would just be Find/Union calls on
// every pair, which is what this function already is without the ceremony.
func GroupByKey(keys []string, values []string) map[string][]string {
	groups := make(map[string][]string)
	for i, k := range keys {
		groups[k] = append(groups[k], values[i])
	}
	for k, members := range groups {
		sort.Strings(members)
		groups[k] = members
	}
	return groups
}
