package rules

import (
	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUIREMENTS
// ══════════════════════════════════════════════════════════════════════════════

// RequirementKind tags the two shapes a prerequisite requirement can take.
type RequirementKind int

const (
	// RequirementSingle is one course key that must be satisfied.
	RequirementSingle RequirementKind = iota
	// RequirementAnyOf is a set of course keys of which one must be satisfied.
	RequirementAnyOf
)

// Requirement is one conjunct of a course's prerequisite formula. The formula
// is a fixed two-level shape: AND over requirements, where each requirement
// is either a single key or an OR over an alternative group. Deeper nesting
// would generalize this to a tree; nothing in the current rule language
// needs that.
type Requirement struct {
	Kind RequirementKind

	// Key is set when Kind == RequirementSingle.
	Key catalog.CourseKey

	// Keys is set when Kind == RequirementAnyOf.
	Keys []catalog.CourseKey
}

// Single builds a single-course requirement.
func Single(key catalog.CourseKey) Requirement {
	return Requirement{Kind: RequirementSingle, Key: key}
}

// AnyOf builds a disjunctive requirement.
func AnyOf(keys ...catalog.CourseKey) Requirement {
	return Requirement{Kind: RequirementAnyOf, Keys: keys}
}

// SatisfiedBy evaluates the requirement against a have-set, with equivalence
// resolution applied to every membership test.
func (req Requirement) SatisfiedBy(resolver *Resolver, have KeySet) bool {
	switch req.Kind {
	case RequirementSingle:
		return resolver.IsSatisfiedBy(req.Key, have)
	case RequirementAnyOf:
		for _, k := range req.Keys {
			if resolver.IsSatisfiedBy(k, have) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PREREQUISITE EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// Evaluator decides whether a course's prerequisite conditions are satisfied
// by a student's completed-course set. It is pure relative to its inputs and
// safe for concurrent use.
type Evaluator struct {
	index    *catalog.Index
	rules    *RuleSet
	resolver *Resolver
}

// NewEvaluator wires an evaluator over a catalog index and a shared rule set.
func NewEvaluator(index *catalog.Index, rs *RuleSet, resolver *Resolver) *Evaluator {
	return &Evaluator{index: index, rules: rs, resolver: resolver}
}

// Resolver exposes the equivalence resolver the evaluator was built with.
func (ev *Evaluator) Resolver() *Resolver {
	return ev.resolver
}

// Partition converts a course's declared edges into the two-level requirement
// list. Edges whose prerequisite key appears in a configured alternative
// group collapse into one AnyOf requirement per touched group; every other
// edge stays a Single requirement.
//
// PrerequisiteEdge.MinGrade is deliberately not consulted here: the recorded
// semantics of the system check "any passing grade" only, and silently
// enforcing a stricter bar would change eligibility verdicts for existing
// students. See DESIGN.md.
func (ev *Evaluator) Partition(courseID shared.CourseID) ([]Requirement, error) {
	edges := ev.index.PrerequisitesOf(courseID)
	if len(edges) == 0 {
		return nil, nil
	}

	keys := make([]catalog.CourseKey, 0, len(edges))
	for _, e := range edges {
		k, err := ev.index.KeyOf(e.PrereqCourseID)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}

	used := make(map[catalog.CourseKey]struct{})
	var reqs []Requirement

	for _, alt := range ev.rules.Alternatives {
		altSet := NewKeySet(alt...)
		var members []catalog.CourseKey
		for _, k := range keys {
			if altSet.Contains(k) {
				members = append(members, k)
			}
		}
		if len(members) == 0 {
			continue
		}
		reqs = append(reqs, AnyOf(members...))
		for _, k := range members {
			used[k] = struct{}{}
		}
	}

	for _, k := range keys {
		if _, ok := used[k]; ok {
			continue
		}
		reqs = append(reqs, Single(k))
	}

	return reqs, nil
}

// IsEligible reports whether completed satisfies every requirement of the
// course. A course with no prerequisite edges is vacuously eligible.
func (ev *Evaluator) IsEligible(courseID shared.CourseID, completed KeySet) (bool, error) {
	reqs, err := ev.Partition(courseID)
	if err != nil {
		return false, err
	}
	for _, req := range reqs {
		if !req.SatisfiedBy(ev.resolver, completed) {
			return false, nil
		}
	}
	return true, nil
}

// MissingRequirements returns the requirements not satisfied by completed,
// in partition order. Used to explain a negative eligibility verdict.
func (ev *Evaluator) MissingRequirements(courseID shared.CourseID, completed KeySet) ([]Requirement, error) {
	reqs, err := ev.Partition(courseID)
	if err != nil {
		return nil, err
	}
	var missing []Requirement
	for _, req := range reqs {
		if !req.SatisfiedBy(ev.resolver, completed) {
			missing = append(missing, req)
		}
	}
	return missing, nil
}
