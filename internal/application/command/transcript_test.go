package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

func TestRecordGrade_NormalizesAndWrites(t *testing.T) {
	repo := newFakePlanRepo()
	pub := &fakePublisher{}
	h := NewTranscriptHandler(testEnv(t), repo, pub)

	result, err := h.RecordGrade(context.Background(), RecordGradeCommand{
		StudentID: 42, CourseID: 1, Grade: " b+ ",
	})
	require.NoError(t, err)

	assert.Equal(t, shared.GradeBPlus, result.Grade)
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, shared.CourseID(1), repo.recorded[0].CourseID)
	assert.Equal(t, []shared.EventType{shared.EventGradeRecorded}, pub.types())
}

func TestRecordGrade_UnknownGradeRejected(t *testing.T) {
	repo := newFakePlanRepo()
	h := NewTranscriptHandler(testEnv(t), repo, nil)

	_, err := h.RecordGrade(context.Background(), RecordGradeCommand{
		StudentID: 42, CourseID: 1, Grade: "Q",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Empty(t, repo.recorded)
}

func TestRecordGrade_UnknownCourseRejected(t *testing.T) {
	repo := newFakePlanRepo()
	h := NewTranscriptHandler(testEnv(t), repo, nil)

	_, err := h.RecordGrade(context.Background(), RecordGradeCommand{
		StudentID: 42, CourseID: 999, Grade: "A",
	})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Empty(t, repo.recorded)
}

func TestRecordGrade_FailingGradeStillRecorded(t *testing.T) {
	// An F goes on the transcript; it just never satisfies a prerequisite.
	repo := newFakePlanRepo()
	h := NewTranscriptHandler(testEnv(t), repo, nil)

	result, err := h.RecordGrade(context.Background(), RecordGradeCommand{
		StudentID: 42, CourseID: 1, Grade: "F",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.GradeF, result.Grade)
	assert.Len(t, repo.recorded, 1)
}

func TestUpdateGrade_Writes(t *testing.T) {
	repo := newFakePlanRepo()
	pub := &fakePublisher{}
	h := NewTranscriptHandler(testEnv(t), repo, pub)

	result, err := h.UpdateGrade(context.Background(), UpdateGradeCommand{
		StudentID: 42, EnrollmentID: 9, Grade: "a-",
	})
	require.NoError(t, err)

	assert.Equal(t, shared.GradeAMinus, result.Grade)
	assert.Equal(t, shared.GradeAMinus, repo.gradeUpdates[9])
	assert.Equal(t, []shared.EventType{shared.EventGradeUpdated}, pub.types())
}

func TestRemoveCompletion_Writes(t *testing.T) {
	repo := newFakePlanRepo()
	pub := &fakePublisher{}
	h := NewTranscriptHandler(testEnv(t), repo, pub)

	result, err := h.RemoveCompletion(context.Background(), RemoveCompletionCommand{
		StudentID: 42, EnrollmentID: 9,
	})
	require.NoError(t, err)

	assert.Empty(t, result.Grade)
	assert.Equal(t, []int64{9}, repo.removedGrades)
	assert.Equal(t, []shared.EventType{shared.EventCompletionGone}, pub.types())
}

func TestTranscript_InvalidCommands(t *testing.T) {
	h := NewTranscriptHandler(testEnv(t), newFakePlanRepo(), nil)

	_, err := h.RecordGrade(context.Background(), RecordGradeCommand{CourseID: 1, Grade: "A"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = h.UpdateGrade(context.Background(), UpdateGradeCommand{StudentID: 42, Grade: "A"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = h.RemoveCompletion(context.Background(), RemoveCompletionCommand{StudentID: 42})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
