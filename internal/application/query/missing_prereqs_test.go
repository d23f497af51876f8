package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

func TestMissingPrereqs_ListsUnmetWithResolvedAttributes(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	repo := newFakePlanRepo()

	h := NewMissingPrereqsHandler(env, repo)
	result, err := h.Handle(context.Background(), MissingPrereqsQuery{
		StudentID: 7,
		CourseID:  4, // CMPSC 360 needs CMPSC 132
	})
	require.NoError(t, err)

	require.Len(t, result.Missing, 1)
	req := result.Missing[0]
	assert.False(t, req.AnyOf)
	require.Len(t, req.Courses, 1)
	assert.Equal(t, "CMPSC 132", req.Courses[0].Code)
	assert.Equal(t, int64(2), req.Courses[0].CourseID)
	assert.Equal(t, "Programming and Computation II", req.Courses[0].Title)
}

func TestMissingPrereqs_SatisfiedCourseHasNone(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	repo := newFakePlanRepo()
	repo.completions[7] = []plan.CompletionRecord{
		completion(7, "CMPSC", "132", 3, shared.GradeC),
	}

	h := NewMissingPrereqsHandler(env, repo)
	result, err := h.Handle(context.Background(), MissingPrereqsQuery{StudentID: 7, CourseID: 4})
	require.NoError(t, err)

	assert.Empty(t, result.Missing)
}

func TestMissingPrereqs_AlternativeGroupCollapsesToAnyOf(t *testing.T) {
	// PHYS 250 requires calculus, satisfiable by either member of the
	// MATH 110/140 alternative group.
	courses := []catalog.Course{
		{ID: 1, Key: catalog.NewCourseKey("MATH", "110"), Title: "Techniques of Calculus I", CreditHours: 4},
		{ID: 2, Key: catalog.NewCourseKey("MATH", "140"), Title: "Calculus I", CreditHours: 4},
		{ID: 3, Key: catalog.NewCourseKey("PHYS", "250"), Title: "Introductory Physics", CreditHours: 4},
	}
	edges := []catalog.PrerequisiteEdge{
		{CourseID: 3, PrereqCourseID: 1},
		{CourseID: 3, PrereqCourseID: 2},
	}
	env := testEnv(t, courses, edges)
	repo := newFakePlanRepo()

	h := NewMissingPrereqsHandler(env, repo)
	result, err := h.Handle(context.Background(), MissingPrereqsQuery{StudentID: 7, CourseID: 3})
	require.NoError(t, err)

	require.Len(t, result.Missing, 1)
	req := result.Missing[0]
	assert.True(t, req.AnyOf)
	assert.Len(t, req.Courses, 2)

	// Completing either member clears the requirement.
	repo.completions[7] = []plan.CompletionRecord{
		completion(7, "MATH", "110", 4, shared.GradeC),
	}
	result, err = h.Handle(context.Background(), MissingPrereqsQuery{StudentID: 7, CourseID: 3})
	require.NoError(t, err)
	assert.Empty(t, result.Missing)
}

func TestMissingPrereqs_UnknownCourse(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)

	h := NewMissingPrereqsHandler(env, newFakePlanRepo())
	_, err := h.Handle(context.Background(), MissingPrereqsQuery{StudentID: 7, CourseID: 999})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}
