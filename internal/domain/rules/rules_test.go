package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

func key(subject, number string) catalog.CourseKey {
	return catalog.NewCourseKey(subject, number)
}

func TestRuleSetValidate(t *testing.T) {
	assert.NoError(t, DefaultRuleSet().Validate())

	overlapping := &RuleSet{
		Equivalences: []EquivalenceGroup{
			{key("CMPSC", "121"), key("CMPSC", "131")},
			{key("CMPSC", "131"), key("CMPSC", "132")},
		},
	}
	err := overlapping.Validate()
	require.Error(t, err)
	assert.True(t, shared.IsConfiguration(err))

	tooSmall := &RuleSet{Equivalences: []EquivalenceGroup{{key("CMPSC", "121")}}}
	assert.True(t, shared.IsConfiguration(tooSmall.Validate()))
}

func TestResolverGroupOf(t *testing.T) {
	r := NewResolver(DefaultRuleSet())

	group := r.GroupOf(key("CMPSC", "121"))
	assert.ElementsMatch(t, []catalog.CourseKey{key("CMPSC", "121"), key("CMPSC", "131")}, group)

	// Ungrouped keys are their own singleton group.
	assert.Equal(t, []catalog.CourseKey{key("MATH", "141")}, r.GroupOf(key("MATH", "141")))
}

func TestResolverIsSatisfiedBy_Symmetry(t *testing.T) {
	r := NewResolver(DefaultRuleSet())

	// Holding one member satisfies a query on the other, both directions.
	assert.True(t, r.IsSatisfiedBy(key("CMPSC", "121"), NewKeySet(key("CMPSC", "131"))))
	assert.True(t, r.IsSatisfiedBy(key("CMPSC", "131"), NewKeySet(key("CMPSC", "121"))))

	assert.False(t, r.IsSatisfiedBy(key("CMPSC", "121"), NewKeySet(key("MATH", "140"))))
	assert.False(t, r.IsSatisfiedBy(key("CMPSC", "121"), NewKeySet()))
}

// buildEvaluator wires a small catalog:
//
//	1 CMPSC 131 (no prereqs)
//	2 CMPSC 132 (prereq: CMPSC 131)
//	3 MATH 110, 4 MATH 140
//	5 MATH 141  (prereqs: MATH 110 or MATH 140, a single OR group)
//	6 CMPSC 221 (prereqs: CMPSC 132, MATH 140)
func buildEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	courses := []catalog.Course{
		{ID: 1, Key: key("CMPSC", "131"), CreditHours: 3},
		{ID: 2, Key: key("CMPSC", "132"), CreditHours: 3},
		{ID: 3, Key: key("MATH", "110"), CreditHours: 4},
		{ID: 4, Key: key("MATH", "140"), CreditHours: 4},
		{ID: 5, Key: key("MATH", "141"), CreditHours: 4},
		{ID: 6, Key: key("CMPSC", "221"), CreditHours: 3},
	}
	edges := []catalog.PrerequisiteEdge{
		{CourseID: 2, PrereqCourseID: 1},
		{CourseID: 5, PrereqCourseID: 3},
		{CourseID: 5, PrereqCourseID: 4},
		{CourseID: 6, PrereqCourseID: 2},
		{CourseID: 6, PrereqCourseID: 4},
	}
	idx, err := catalog.NewIndex(courses, edges)
	require.NoError(t, err)

	rs := DefaultRuleSet()
	return NewEvaluator(idx, rs, NewResolver(rs))
}

func TestEvaluator_NoPrereqsAlwaysEligible(t *testing.T) {
	ev := buildEvaluator(t)

	ok, err := ev.IsEligible(1, NewKeySet())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluator_SingleRequirement(t *testing.T) {
	ev := buildEvaluator(t)

	ok, err := ev.IsEligible(2, NewKeySet(key("CMPSC", "131")))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.IsEligible(2, NewKeySet())
	require.NoError(t, err)
	assert.False(t, ok)

	// The equivalent old numbering satisfies the requirement.
	ok, err = ev.IsEligible(2, NewKeySet(key("CMPSC", "121")))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluator_AlternativeGroup(t *testing.T) {
	ev := buildEvaluator(t)

	// MATH 141's two edges collapse into one OR group: either satisfies.
	for _, have := range []KeySet{
		NewKeySet(key("MATH", "110")),
		NewKeySet(key("MATH", "140")),
		NewKeySet(key("MATH", "110"), key("MATH", "140")),
	} {
		ok, err := ev.IsEligible(5, have)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := ev.IsEligible(5, NewKeySet())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ev.IsEligible(5, NewKeySet(key("CMPSC", "131")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluator_MixedAndOr(t *testing.T) {
	ev := buildEvaluator(t)

	// CMPSC 221 needs CMPSC 132 (AND) plus MATH 140. Only MATH 140 of the
	// MATH 110/140 alternative group appears among its edges, so the
	// collapsed group has one member: MATH 110 does not stand in.
	ok, err := ev.IsEligible(6, NewKeySet(key("CMPSC", "132"), key("MATH", "140")))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.IsEligible(6, NewKeySet(key("CMPSC", "132"), key("MATH", "110")))
	require.NoError(t, err)
	assert.False(t, ok)

	// The conjunctive half alone is not enough.
	ok, err = ev.IsEligible(6, NewKeySet(key("CMPSC", "132")))
	require.NoError(t, err)
	assert.False(t, ok)

	// Equivalence applies inside the conjunctive half too.
	ok, err = ev.IsEligible(6, NewKeySet(key("CMPSC", "122"), key("MATH", "140")))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluator_Partition(t *testing.T) {
	ev := buildEvaluator(t)

	reqs, err := ev.Partition(6)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	// The OR group comes first (groups are partitioned before singles).
	assert.Equal(t, RequirementAnyOf, reqs[0].Kind)
	assert.Equal(t, []catalog.CourseKey{key("MATH", "140")}, reqs[0].Keys)
	assert.Equal(t, RequirementSingle, reqs[1].Kind)
	assert.Equal(t, key("CMPSC", "132"), reqs[1].Key)
}

func TestEvaluator_MissingRequirements(t *testing.T) {
	ev := buildEvaluator(t)

	missing, err := ev.MissingRequirements(6, NewKeySet(key("MATH", "140")))
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, key("CMPSC", "132"), missing[0].Key)

	missing, err = ev.MissingRequirements(6, NewKeySet(key("CMPSC", "132"), key("MATH", "140")))
	require.NoError(t, err)
	assert.Empty(t, missing)
}
