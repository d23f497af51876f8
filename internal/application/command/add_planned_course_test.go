package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

func seedPlan(repo *fakePlanRepo, planID, studentID int64) {
	repo.plans[shared.PlanID(planID)] = &plan.DegreePlan{
		ID:        shared.PlanID(planID),
		StudentID: shared.StudentID(studentID),
	}
}

func TestAddPlannedCourse_EligibleCourseIsAdded(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	repo.completions[42] = []plan.CompletionRecord{
		completion(42, "CMPSC", "131", shared.GradeB),
	}
	pub := &fakePublisher{}
	h := NewAddPlannedCourseHandler(testEnv(t), repo, pub)

	result, err := h.Handle(context.Background(), AddPlannedCourseCommand{
		PlanID: 7, TermID: 2261, CourseID: 2,
	})
	require.NoError(t, err)

	assert.Positive(t, result.EntryID)
	assert.Equal(t, "CMPSC 132", result.Code)
	require.Len(t, repo.entries[7], 1)
	assert.Equal(t, shared.CourseID(2), repo.entries[7][0].CourseID)
	assert.Equal(t, []shared.EventType{shared.EventCoursePlanned}, pub.types())
}

func TestAddPlannedCourse_PrereqNotSatisfied(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	h := NewAddPlannedCourseHandler(testEnv(t), repo, nil)

	_, err := h.Handle(context.Background(), AddPlannedCourseCommand{
		PlanID: 7, TermID: 2261, CourseID: 2,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPrereqNotSatisfied)
	assert.Empty(t, repo.entries[7], "store untouched after rejection")
}

func TestAddPlannedCourse_ForceSkipsPrereqCheck(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	h := NewAddPlannedCourseHandler(testEnv(t), repo, nil)

	result, err := h.Handle(context.Background(), AddPlannedCourseCommand{
		PlanID: 7, TermID: 2261, CourseID: 2, Force: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "CMPSC 132", result.Code)
}

func TestAddPlannedCourse_DuplicateRejected(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	repo.entries[7] = []plan.PlannedEntry{{
		ID: 1, PlanID: 7, TermID: 2261, CourseID: 3,
		Key: catalog.NewCourseKey("MATH", "140"),
	}}
	h := NewAddPlannedCourseHandler(testEnv(t), repo, nil)

	_, err := h.Handle(context.Background(), AddPlannedCourseCommand{
		PlanID: 7, TermID: 2268, CourseID: 3,
	})
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestAddPlannedCourse_PlannedEquivalentRejected(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	// CMPSC 121 is planned; CMPSC 131 completes the same requirement group.
	repo.entries[7] = []plan.PlannedEntry{{
		ID: 1, PlanID: 7, TermID: 2261, CourseID: 6,
		Key: catalog.NewCourseKey("CMPSC", "121"),
	}}
	h := NewAddPlannedCourseHandler(testEnv(t), repo, nil)

	_, err := h.Handle(context.Background(), AddPlannedCourseCommand{
		PlanID: 7, TermID: 2261, CourseID: 1,
	})
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestAddPlannedCourse_CompletedEquivalentRejected(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	repo.completions[42] = []plan.CompletionRecord{
		completion(42, "CMPSC", "121", shared.GradeA),
	}
	h := NewAddPlannedCourseHandler(testEnv(t), repo, nil)

	_, err := h.Handle(context.Background(), AddPlannedCourseCommand{
		PlanID: 7, TermID: 2261, CourseID: 1,
	})
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestAddPlannedCourse_PlanNotFound(t *testing.T) {
	h := NewAddPlannedCourseHandler(testEnv(t), newFakePlanRepo(), nil)

	_, err := h.Handle(context.Background(), AddPlannedCourseCommand{
		PlanID: 99, TermID: 2261, CourseID: 1,
	})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestAddPlannedCourse_InvalidCommand(t *testing.T) {
	h := NewAddPlannedCourseHandler(testEnv(t), newFakePlanRepo(), nil)

	_, err := h.Handle(context.Background(), AddPlannedCourseCommand{PlanID: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestRemovePlannedCourse_RemovesOwnEntry(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	repo.entries[7] = []plan.PlannedEntry{{
		ID: 11, PlanID: 7, TermID: 2261, CourseID: 1,
		Key: catalog.NewCourseKey("CMPSC", "131"),
	}}
	pub := &fakePublisher{}
	h := NewRemovePlannedCourseHandler(testEnv(t), repo, pub)

	_, err := h.Handle(context.Background(), RemovePlannedCourseCommand{PlanID: 7, EntryID: 11})
	require.NoError(t, err)

	assert.Equal(t, []int64{11}, repo.removed)
	assert.Equal(t, []shared.EventType{shared.EventPlannedCourseRemove}, pub.types())
}

func TestRemovePlannedCourse_EntryOnAnotherPlan(t *testing.T) {
	repo := newFakePlanRepo()
	seedPlan(repo, 7, 42)
	seedPlan(repo, 8, 43)
	repo.entries[8] = []plan.PlannedEntry{{
		ID: 11, PlanID: 8, TermID: 2261, CourseID: 1,
		Key: catalog.NewCourseKey("CMPSC", "131"),
	}}
	h := NewRemovePlannedCourseHandler(testEnv(t), repo, nil)

	_, err := h.Handle(context.Background(), RemovePlannedCourseCommand{PlanID: 7, EntryID: 11})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Empty(t, repo.removed)
}
