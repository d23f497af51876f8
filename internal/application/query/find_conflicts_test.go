package query

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

func testMeeting(t *testing.T, section int64, code, dayStr, start, end string) schedule.Meeting {
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

func TestFindConflicts_ExplicitSnapshot(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	h := NewFindConflictsHandler(env, nil)

	result, err := h.Handle(context.Background(), FindConflictsQuery{
		Meetings: []schedule.Meeting{
			testMeeting(t, 1, "CMPSC 131", "MWF", "10:00", "10:50"),
			testMeeting(t, 2, "MATH 140", "MW", "10:30", "11:45"),
		},
	})
	require.NoError(t, err)

	// Overlap on Monday and Wednesday; Friday is clear.
	require.Len(t, result.Conflicts, 2)
	first := result.Conflicts[0]
	assert.Equal(t, "Mon", first.Day)
	assert.Equal(t, int64(1), first.SectionA)
	assert.Equal(t, int64(2), first.SectionB)
	assert.Equal(t, "CMPSC 131", first.CourseA)
	assert.Equal(t, "MATH 140", first.CourseB)
	assert.Equal(t, "10:00", first.StartA)
	assert.Equal(t, "10:30", first.StartB)
	assert.Equal(t, "Wed", result.Conflicts[1].Day)
}

func TestFindConflicts_PlanLookupThroughStore(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	repo := &fakeScheduleRepo{meetings: map[shared.PlanID][]schedule.Meeting{
		3: {
			testMeeting(t, 1, "CMPSC 131", "T", "09:00", "09:50"),
			testMeeting(t, 2, "MATH 140", "T", "09:30", "10:20"),
		},
	}}
	h := NewFindConflictsHandler(env, repo)

	result, err := h.Handle(context.Background(), FindConflictsQuery{PlanID: 3})
	require.NoError(t, err)

	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "Tue", result.Conflicts[0].Day)
}

func TestFindConflicts_CleanScheduleIsEmptyList(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	h := NewFindConflictsHandler(env, nil)

	result, err := h.Handle(context.Background(), FindConflictsQuery{
		Meetings: []schedule.Meeting{
			testMeeting(t, 1, "", "MWF", "10:00", "10:50"),
			testMeeting(t, 2, "", "MWF", "11:00", "11:50"),
		},
	})
	require.NoError(t, err)

	assert.NotNil(t, result.Conflicts)
	assert.Empty(t, result.Conflicts)
}

func TestFindConflicts_RequiresPlanOrSnapshot(t *testing.T) {
	courses, edges := testCatalog()
	env := testEnv(t, courses, edges)
	h := NewFindConflictsHandler(env, nil)

	_, err := h.Handle(context.Background(), FindConflictsQuery{})
	require.Error(t, err)
}
