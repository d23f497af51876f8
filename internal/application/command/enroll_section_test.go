package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/timeutil"
)

func sectionMeeting(t *testing.T, section int64, code, dayStr, start, end string) schedule.Meeting {
	t.Helper()
	days, err := timeutil.ParseDays(dayStr)
	require.NoError(t, err)
	s, err := timeutil.ParseClock(start)
	require.NoError(t, err)
	e, err := timeutil.ParseClock(end)
	require.NoError(t, err)

	m := schedule.Meeting{
		SectionID: shared.SectionID(section),
		Days:      days,
		Start:     s,
		End:       e,
	}
	if code != "" {
		key, err := catalog.ParseCourseKey(code)
		require.NoError(t, err)
		m.CourseKey = key
	}
	return m
}

func TestEnrollSection_CleanScheduleEnrolls(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.sections[10] = &schedule.Section{ID: 10, CourseID: 1, TermID: 2261}
	repo.meetings[10] = []schedule.Meeting{
		sectionMeeting(t, 10, "CMPSC 131", "MWF", "10:00", "10:50"),
	}
	repo.enrolled[42] = []schedule.Meeting{
		sectionMeeting(t, 11, "MATH 140", "MWF", "11:00", "11:50"),
	}
	pub := &fakePublisher{}
	h := NewEnrollSectionHandler(repo, pub, nil)

	result, err := h.Enroll(context.Background(), EnrollSectionCommand{StudentID: 42, SectionID: 10})
	require.NoError(t, err)

	assert.Positive(t, result.EnrollmentID)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, []shared.SectionID{10}, repo.enrollments)
	assert.Equal(t, []shared.EventType{shared.EventSectionEnrolled}, pub.types())
}

func TestEnrollSection_ConflictBlocks(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.sections[10] = &schedule.Section{ID: 10, CourseID: 1, TermID: 2261}
	repo.meetings[10] = []schedule.Meeting{
		sectionMeeting(t, 10, "CMPSC 131", "MWF", "10:00", "10:50"),
	}
	repo.enrolled[42] = []schedule.Meeting{
		sectionMeeting(t, 11, "MATH 140", "WF", "10:30", "11:45"),
	}
	h := NewEnrollSectionHandler(repo, nil, nil)

	_, err := h.Enroll(context.Background(), EnrollSectionCommand{StudentID: 42, SectionID: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Empty(t, repo.enrollments, "no write on rejection")
}

func TestEnrollSection_AllowConflictsReportsThem(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.sections[10] = &schedule.Section{ID: 10, CourseID: 1, TermID: 2261}
	repo.meetings[10] = []schedule.Meeting{
		sectionMeeting(t, 10, "CMPSC 131", "MWF", "10:00", "10:50"),
	}
	repo.enrolled[42] = []schedule.Meeting{
		sectionMeeting(t, 11, "MATH 140", "WF", "10:30", "11:45"),
	}
	h := NewEnrollSectionHandler(repo, nil, nil)

	result, err := h.Enroll(context.Background(), EnrollSectionCommand{
		StudentID: 42, SectionID: 10, AllowConflicts: true,
	})
	require.NoError(t, err)

	// Overlap on Wednesday and Friday.
	assert.Len(t, result.Conflicts, 2)
	assert.Equal(t, []shared.SectionID{10}, repo.enrollments)
}

func TestEnrollSection_PreexistingOverlapIsNotBlamed(t *testing.T) {
	// The student's schedule already conflicts with itself; the candidate
	// section is clear of everything. The write must go through.
	repo := newFakeScheduleRepo()
	repo.sections[10] = &schedule.Section{ID: 10, CourseID: 1, TermID: 2261}
	repo.meetings[10] = []schedule.Meeting{
		sectionMeeting(t, 10, "CMPSC 131", "MWF", "08:00", "08:50"),
	}
	repo.enrolled[42] = []schedule.Meeting{
		sectionMeeting(t, 11, "MATH 140", "MWF", "10:00", "10:50"),
		sectionMeeting(t, 12, "ENGL 15", "MWF", "10:00", "10:50"),
	}
	h := NewEnrollSectionHandler(repo, nil, nil)

	result, err := h.Enroll(context.Background(), EnrollSectionCommand{StudentID: 42, SectionID: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Conflicts)
}

func TestEnrollSection_UnknownSection(t *testing.T) {
	h := NewEnrollSectionHandler(newFakeScheduleRepo(), nil, nil)

	_, err := h.Enroll(context.Background(), EnrollSectionCommand{StudentID: 42, SectionID: 99})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestDropSection_Drops(t *testing.T) {
	repo := newFakeScheduleRepo()
	pub := &fakePublisher{}
	h := NewEnrollSectionHandler(repo, pub, nil)

	_, err := h.Drop(context.Background(), DropSectionCommand{StudentID: 42, SectionID: 10})
	require.NoError(t, err)

	assert.Equal(t, []shared.SectionID{10}, repo.drops)
	assert.Equal(t, []shared.EventType{shared.EventSectionDropped}, pub.types())
}

func TestEnrollSection_InvalidCommand(t *testing.T) {
	h := NewEnrollSectionHandler(newFakeScheduleRepo(), nil, nil)

	_, err := h.Enroll(context.Background(), EnrollSectionCommand{StudentID: 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
