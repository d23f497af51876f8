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

func plannedCourse(entryID int64, planID shared.PlanID, termID int64, courseID int64, subject, num, title string, credits int) plan.PlannedEntry {
	return plan.PlannedEntry{
		ID:          entryID,
		PlanID:      planID,
		TermID:      shared.TermID(termID),
		CourseID:    shared.CourseID(courseID),
		Key:         catalog.NewCourseKey(subject, num),
		Title:       title,
		CreditHours: shared.CreditHours(credits),
	}
}

func TestGetPlan_ResolvesEntriesAndCredits(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)

	repo := newFakePlanRepo()
	repo.plans[7] = &plan.DegreePlan{ID: 7, StudentID: 42, TargetGradTerm: 2278}
	repo.entries[7] = []plan.PlannedEntry{
		plannedCourse(1, 7, 2261, 2, "CMPSC", "132", "Programming and Computation II", 3),
		plannedCourse(2, 7, 2261, 3, "MATH", "140", "Calculus I", 4),
	}
	repo.completions[42] = []plan.CompletionRecord{
		completion(42, "CMPSC", "131", 3, shared.GradeA),
	}

	h := NewGetPlanHandler(env, repo)
	result, err := h.Handle(context.Background(), GetPlanQuery{PlanID: 7})
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.PlanID)
	assert.Equal(t, int64(42), result.StudentID)
	assert.Equal(t, int64(2278), result.TargetGradTerm)
	assert.Equal(t, 7, result.PlannedCredits)

	require.Len(t, result.Entries, 2)
	first := result.Entries[0]
	assert.Equal(t, "CMPSC 132", first.Code)
	assert.Equal(t, "Programming and Computation II", first.Title)
	assert.Equal(t, 3, first.CreditHours)
	assert.True(t, first.Recommended, "prerequisite CMPSC 131 is on the transcript")
}

func TestGetPlan_MissingPrereqDropsRecommendation(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)

	repo := newFakePlanRepo()
	repo.plans[7] = &plan.DegreePlan{ID: 7, StudentID: 42}
	repo.entries[7] = []plan.PlannedEntry{
		plannedCourse(1, 7, 2261, 4, "CMPSC", "360", "Discrete Mathematics", 3),
	}

	h := NewGetPlanHandler(env, repo)
	result, err := h.Handle(context.Background(), GetPlanQuery{PlanID: 7})
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.False(t, result.Entries[0].Recommended, "CMPSC 132 has not been taken")
}

func TestGetPlan_EquivalentCompletionDropsRecommendation(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)

	repo := newFakePlanRepo()
	repo.plans[7] = &plan.DegreePlan{ID: 7, StudentID: 42}
	repo.entries[7] = []plan.PlannedEntry{
		plannedCourse(1, 7, 2261, 1, "CMPSC", "131", "Programming Fundamentals", 3),
	}
	// CMPSC 121 completes the same requirement group as CMPSC 131.
	repo.completions[42] = []plan.CompletionRecord{
		completion(42, "CMPSC", "121", 3, shared.GradeB),
	}

	h := NewGetPlanHandler(env, repo)
	result, err := h.Handle(context.Background(), GetPlanQuery{PlanID: 7})
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.False(t, result.Entries[0].Recommended)
	assert.Equal(t, 3, result.PlannedCredits, "credits still count while the entry is planned")
}

func TestGetPlan_NotFound(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)

	h := NewGetPlanHandler(env, newFakePlanRepo())
	_, err := h.Handle(context.Background(), GetPlanQuery{PlanID: 99})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestGetPlan_InvalidQuery(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)

	h := NewGetPlanHandler(env, newFakePlanRepo())
	_, err := h.Handle(context.Background(), GetPlanQuery{})
	require.Error(t, err)
}
