package rules

import (
	"github.com/nittany-hub/course-planner/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// EQUIVALENCE RESOLVER
// ══════════════════════════════════════════════════════════════════════════════

// KeySet is a set of course keys, typically "what the student has":
// completed courses, planned courses, or their union.
type KeySet map[catalog.CourseKey]struct{}

// NewKeySet builds a KeySet from keys.
func NewKeySet(keys ...catalog.CourseKey) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts a key.
func (s KeySet) Add(k catalog.CourseKey) {
	s[k] = struct{}{}
}

// Contains reports exact membership (no equivalence applied).
func (s KeySet) Contains(k catalog.CourseKey) bool {
	_, ok := s[k]
	return ok
}

// Union returns a new set containing the members of both sets.
func (s KeySet) Union(other KeySet) KeySet {
	out := make(KeySet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Resolver answers equivalence membership queries. It is the single place
// equivalence logic lives; every component that needs to compare a "wanted"
// course against a "have" set goes through it.
type Resolver struct {
	groupIndex map[catalog.CourseKey]EquivalenceGroup
}

// NewResolver builds a Resolver from a validated RuleSet.
func NewResolver(rs *RuleSet) *Resolver {
	idx := make(map[catalog.CourseKey]EquivalenceGroup)
	for _, g := range rs.Equivalences {
		for _, k := range g {
			idx[k] = g
		}
	}
	return &Resolver{groupIndex: idx}
}

// GroupOf returns the full equivalence set containing key. An ungrouped key
// returns the singleton {key}.
func (r *Resolver) GroupOf(key catalog.CourseKey) []catalog.CourseKey {
	if g, ok := r.groupIndex[key]; ok {
		out := make([]catalog.CourseKey, len(g))
		copy(out, g)
		return out
	}
	return []catalog.CourseKey{key}
}

// IsSatisfiedBy reports whether any member of key's equivalence group is
// present in have.
func (r *Resolver) IsSatisfiedBy(key catalog.CourseKey, have KeySet) bool {
	if g, ok := r.groupIndex[key]; ok {
		for _, k := range g {
			if have.Contains(k) {
				return true
			}
		}
		return false
	}
	return have.Contains(key)
}
