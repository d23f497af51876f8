package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

func recommendFixture(t *testing.T) (*RecommendHandler, *fakePlanRepo, *fakeProgramRepo) {
	t.Helper()
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)

	planRepo := newFakePlanRepo()
	programRepo := &fakeProgramRepo{
		primary: &program.Program{ID: 1, Name: "Computer Science", Type: program.TypeMajor},
		roster:  courses,
	}
	return NewRecommendHandler(env, planRepo, programRepo, nil), planRepo, programRepo
}

// The walkthrough scenario: a student 30 credits in, with the first-year
// core done, should be offered the second-year courses but not courses
// canonically placed beyond the standing window.
func TestRecommend_StandingWindow(t *testing.T) {
	h, planRepo, _ := recommendFixture(t)
	planRepo.completions[7] = []plan.CompletionRecord{
		completion(7, "CMPSC", "131", 3, shared.GradeA),
		completion(7, "CMPSC", "132", 3, shared.GradeAMinus),
		completion(7, "MATH", "140", 4, shared.GradeB),
		completion(7, "ENGL", "15", 3, shared.GradeB),
		completion(7, "PHYS", "211", 4, shared.GradeBPlus),
		completion(7, "MATH", "141", 4, shared.GradeB),
		completion(7, "CAS", "100A", 3, shared.GradeA),
		completion(7, "GEN", "1", 6, shared.GradePass),
	}

	result, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3})
	require.NoError(t, err)

	// 30 earned credits: standing 3, semesters 1-4 visible.
	assert.Equal(t, 3, result.SemesterStanding)
	assert.Equal(t, 4, result.MaxSemesterShown)

	codes := make([]string, 0, len(result.Courses))
	for _, c := range result.Courses {
		codes = append(codes, c.Code)
	}
	// CMPSC 360 (semester 4, prereq 132 done) is in the window.
	assert.Contains(t, codes, "CMPSC 360")
	// CMPSC 465 sits in semester 5 and its prereq chain is incomplete.
	assert.NotContains(t, codes, "CMPSC 465")
	// Completed courses and their equivalents are never offered.
	assert.NotContains(t, codes, "CMPSC 131")
	assert.NotContains(t, codes, "CMPSC 121")
	assert.NotContains(t, codes, "MATH 140")
}

func TestRecommend_FreshStudentGetsFirstSemester(t *testing.T) {
	h, _, _ := recommendFixture(t)

	result, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SemesterStanding)
	assert.Equal(t, 2, result.MaxSemesterShown)

	codes := make([]string, 0, len(result.Courses))
	for _, c := range result.Courses {
		codes = append(codes, c.Code)
	}
	// No prerequisites and inside the window.
	assert.Contains(t, codes, "CMPSC 131")
	assert.Contains(t, codes, "MATH 140")
	// Its prerequisite is not completed.
	assert.NotContains(t, codes, "CMPSC 132")

	// Canonical order puts the semester-1 CMPSC 131 ahead of semester-2
	// courses.
	require.NotEmpty(t, result.Courses)
	assert.Contains(t, []string{"CMPSC 121", "CMPSC 131"}, result.Courses[0].Code)
}

func TestRecommend_PlannedCourseNotRepeated(t *testing.T) {
	h, planRepo, _ := recommendFixture(t)
	planRepo.entries[3] = []plan.PlannedEntry{
		{ID: 1, PlanID: 3, TermID: 1, CourseID: 1, Key: catalog.NewCourseKey("CMPSC", "131")},
	}

	result, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3})
	require.NoError(t, err)

	for _, c := range result.Courses {
		assert.NotEqual(t, "CMPSC 131", c.Code)
		// The planned 131 also blocks its equivalent 121.
		assert.NotEqual(t, "CMPSC 121", c.Code)
	}
}

func TestRecommend_NoPrimaryProgramIsEmptyNotError(t *testing.T) {
	h, _, programRepo := recommendFixture(t)
	programRepo.primary = nil

	result, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3})
	require.NoError(t, err)

	assert.Empty(t, result.Courses)
	assert.Equal(t, 1, result.SemesterStanding)
}

func TestRecommend_MaxResultsCapsList(t *testing.T) {
	h, _, _ := recommendFixture(t)

	result, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3, MaxResults: 1})
	require.NoError(t, err)

	assert.Len(t, result.Courses, 1)
}

func TestRecommend_CacheHitSkipsComputation(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	cache := newFakeRecommendationCache()
	cached := &RecommendResult{RequestID: "cached", SemesterStanding: 2}
	require.NoError(t, cache.Set(context.Background(), 7, 3, cached))

	// Nil program repo: a store access would panic, proving the cache
	// short-circuits.
	h := NewRecommendHandler(env, nil, nil, cache)
	result, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3})
	require.NoError(t, err)

	assert.Equal(t, "cached", result.RequestID)
}

func TestRecommend_ComputedResultIsCached(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	planRepo := newFakePlanRepo()
	programRepo := &fakeProgramRepo{
		primary: &program.Program{ID: 1, Name: "Computer Science", Type: program.TypeMajor},
		roster:  courses,
	}
	cache := newFakeRecommendationCache()

	h := NewRecommendHandler(env, planRepo, programRepo, cache)
	result, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3})
	require.NoError(t, err)

	stored, err := cache.Get(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, result.RequestID, stored.RequestID)
}

func TestRecommend_InvalidQuery(t *testing.T) {
	h, _, _ := recommendFixture(t)

	_, err := h.Handle(context.Background(), RecommendQuery{StudentID: 7})
	require.Error(t, err)

	_, err = h.Handle(context.Background(), RecommendQuery{StudentID: 7, PlanID: 3, MaxResults: -1})
	require.Error(t, err)
}
