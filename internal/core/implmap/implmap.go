// Package implmap holds the data model of the implementors registry: a mapping
// from trait identifiers to the ordered lists of implementor descriptions that
// a documentation page displays for them. The description strings are opaque
// markup produced by the documentation build and are never interpreted here.
package implmap

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ImplementorMap maps a trait identifier to its implementor descriptions.
// Entry order within a list is display order and is preserved everywhere;
// key order carries no meaning.
type ImplementorMap map[string][]string

// Clone returns a deep copy. A published map must stay immutable, so every
// hand-off across component boundaries goes through Clone.
func (m ImplementorMap) Clone() ImplementorMap {
	if m == nil {
		return nil
	}
	out := make(ImplementorMap, len(m))
	for trait, impls := range m {
		cp := make([]string, len(impls))
		copy(cp, impls)
		out[trait] = cp
	}
	return out
}

// Traits returns all trait identifiers in lexicographic order.
func (m ImplementorMap) Traits() []string {
	traits := make([]string, 0, len(m))
	for trait := range m {
		traits = append(traits, trait)
	}
	sort.Strings(traits)
	return traits
}

// ImplementorCount returns the total number of implementor entries across all traits.
func (m ImplementorMap) ImplementorCount() int {
	n := 0
	for _, impls := range m {
		n += len(impls)
	}
	return n
}

// Equal reports whether two maps hold the same traits with the same
// implementors in the same display order.
func (m ImplementorMap) Equal(other ImplementorMap) bool {
	if len(m) != len(other) {
		return false
	}
	for trait, impls := range m {
		otherImpls, ok := other[trait]
		if !ok || len(impls) != len(otherImpls) {
			return false
		}
		for i := range impls {
			if impls[i] != otherImpls[i] {
				return false
			}
		}
	}
	return true
}

// MergeFragment appends the fragment's implementors into m, keeping display
// order and dropping duplicates within a trait (first occurrence wins).
// Fragments are merged in a deterministic order by the caller, so the
// resulting display order is stable across runs.
func (m ImplementorMap) MergeFragment(frag ImplementorMap) {
	traits := frag.Traits()
	for _, trait := range traits {
		seen := make(map[string]struct{}, len(m[trait]))
		for _, impl := range m[trait] {
			seen[impl] = struct{}{}
		}
		for _, impl := range frag[trait] {
			if _, dup := seen[impl]; dup {
				continue
			}
			seen[impl] = struct{}{}
			m[trait] = append(m[trait], impl)
		}
	}
}

// DecodeFragment parses one on-disk implementors fragment
// (a JSON object: trait identifier -> list of markup strings).
// The build output is trusted, so any malformed fragment is a hard error.
func DecodeFragment(data []byte) (ImplementorMap, error) {
	var m ImplementorMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode implementors fragment: %w", err)
	}
	for trait := range m {
		if trait == "" {
			return nil, fmt.Errorf("decode implementors fragment: empty trait identifier")
		}
	}
	return m, nil
}
