// Package rules contains the degree-progress rule model: course equivalence
// groups, alternative (OR) prerequisite groups, and the prerequisite
// evaluator. The rule tables were once duplicated inside two unrelated
// request paths; they are now a single RuleSet constructed once and shared
// by reference with every component that needs it.
package rules

import (
	"fmt"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RULE TABLES
// ══════════════════════════════════════════════════════════════════════════════

// EquivalenceGroup is a set of course keys treated as mutually interchangeable
// for completion and eligibility purposes (e.g., an old and a new numbering of
// the same course). A key belongs to at most one group; an unlisted key is its
// own singleton group.
type EquivalenceGroup []catalog.CourseKey

// AlternativeGroup is an OR-prerequisite set: within one course's prerequisite
// list, satisfying any member of the set fulfils the shared slot. Membership
// is checked against the course's own declared edges; a group entry not among
// a course's prerequisites is ignored for that course.
type AlternativeGroup []catalog.CourseKey

// RuleSet is the complete, validated rule configuration. Build it once per
// decision (or process), then treat it as read-only.
type RuleSet struct {
	Equivalences []EquivalenceGroup
	Alternatives []AlternativeGroup
}

// Validate checks rule-table consistency. Equivalence groups must partition
// the keys they mention (no key in two groups) and every group needs at least
// two members to mean anything. Violations are configuration errors: the
// decision layer aborts on them rather than guessing.
func (rs *RuleSet) Validate() error {
	seen := make(map[catalog.CourseKey]int)
	for i, g := range rs.Equivalences {
		if len(g) < 2 {
			return shared.WrapError("rules", "Validate", shared.ErrConfiguration,
				fmt.Sprintf("equivalence group %d has %d members", i, len(g)), nil)
		}
		for _, k := range g {
			if !k.IsValid() {
				return shared.WrapError("rules", "Validate", shared.ErrConfiguration,
					fmt.Sprintf("equivalence group %d contains an empty course key", i), nil)
			}
			if prev, dup := seen[k]; dup && prev != i {
				return shared.WrapError("rules", "Validate", shared.ErrConfiguration,
					fmt.Sprintf("course %s appears in equivalence groups %d and %d", k, prev, i), nil)
			}
			seen[k] = i
		}
	}
	for i, g := range rs.Alternatives {
		if len(g) < 2 {
			return shared.WrapError("rules", "Validate", shared.ErrConfiguration,
				fmt.Sprintf("alternative group %d has %d members", i, len(g)), nil)
		}
		for _, k := range g {
			if !k.IsValid() {
				return shared.WrapError("rules", "Validate", shared.ErrConfiguration,
					fmt.Sprintf("alternative group %d contains an empty course key", i), nil)
			}
		}
	}
	return nil
}

// DefaultRuleSet returns the rule tables the program shipped with before they
// were promoted to configuration. Kept as the fallback when no rules file is
// provided.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Equivalences: []EquivalenceGroup{
			{catalog.NewCourseKey("CMPSC", "121"), catalog.NewCourseKey("CMPSC", "131")},
			{catalog.NewCourseKey("CMPSC", "122"), catalog.NewCourseKey("CMPSC", "132")},
			{catalog.NewCourseKey("CAS", "100A"), catalog.NewCourseKey("CAS", "100B")},
			{catalog.NewCourseKey("CMPSC", "483W"), catalog.NewCourseKey("CMPSC", "431W")},
		},
		Alternatives: []AlternativeGroup{
			{catalog.NewCourseKey("MATH", "110"), catalog.NewCourseKey("MATH", "140")},
		},
	}
}
