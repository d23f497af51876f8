package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/timeutil"
)

func clock(t *testing.T, s string) timeutil.ClockTime {
	t.Helper()
	c, err := timeutil.ParseClock(s)
	require.NoError(t, err)
	return c
}

func days(t *testing.T, s string) timeutil.DaySet {
	t.Helper()
	d, err := timeutil.ParseDays(s)
	require.NoError(t, err)
	return d
}

func meeting(t *testing.T, section int64, dayStr, start, end string) Meeting {
	t.Helper()
	return Meeting{
		SectionID: shared.SectionID(section),
		Days:      days(t, dayStr),
		Start:     clock(t, start),
		End:       clock(t, end),
	}
}

func TestFindConflicts_SharedDaysReportedPerDay(t *testing.T) {
	a := meeting(t, 1, "MW", "10:00", "10:50")
	b := meeting(t, 2, "MW", "10:30", "11:20")

	conflicts := FindConflicts([]Meeting{a, b})
	require.Len(t, conflicts, 2)

	assert.Equal(t, timeutil.Monday, conflicts[0].Day)
	assert.Equal(t, timeutil.Wednesday, conflicts[1].Day)
	for _, c := range conflicts {
		// A is always the earlier-starting meeting.
		assert.Equal(t, shared.SectionID(1), c.A.SectionID)
		assert.Equal(t, shared.SectionID(2), c.B.SectionID)
	}
}

func TestFindConflicts_BackToBackIsNotAConflict(t *testing.T) {
	c := meeting(t, 1, "T", "09:40", "10:30")
	d := meeting(t, 2, "T", "10:30", "11:20")

	assert.Empty(t, FindConflicts([]Meeting{c, d}))
}

func TestFindConflicts_DisjointDays(t *testing.T) {
	a := meeting(t, 1, "MWF", "10:00", "10:50")
	b := meeting(t, 2, "TR", "10:00", "10:50")

	assert.Empty(t, FindConflicts([]Meeting{a, b}))
}

func TestFindConflicts_SameSectionIgnored(t *testing.T) {
	// A section with a lecture and a lab cannot conflict with itself.
	a := meeting(t, 1, "M", "10:00", "11:50")
	b := meeting(t, 1, "M", "11:00", "11:50")

	assert.Empty(t, FindConflicts([]Meeting{a, b}))
}

func TestFindConflicts_Ordering(t *testing.T) {
	early := meeting(t, 3, "M", "08:00", "08:50")
	late1 := meeting(t, 1, "M", "08:30", "09:20")
	late2 := meeting(t, 2, "M", "09:00", "09:50")

	conflicts := FindConflicts([]Meeting{late2, late1, early})
	require.Len(t, conflicts, 2)

	// Ordered by earlier start, then later start.
	assert.Equal(t, shared.SectionID(3), conflicts[0].A.SectionID)
	assert.Equal(t, shared.SectionID(1), conflicts[0].B.SectionID)
	assert.Equal(t, shared.SectionID(1), conflicts[1].A.SectionID)
	assert.Equal(t, shared.SectionID(2), conflicts[1].B.SectionID)
}

func TestFindConflicts_ContainedInterval(t *testing.T) {
	outer := meeting(t, 1, "F", "09:00", "12:00")
	inner := meeting(t, 2, "F", "10:00", "10:30")

	conflicts := FindConflicts([]Meeting{outer, inner})
	require.Len(t, conflicts, 1)
	assert.Equal(t, timeutil.Friday, conflicts[0].Day)
	assert.Equal(t, shared.SectionID(1), conflicts[0].A.SectionID)
}

func TestMeetingValidate(t *testing.T) {
	m := meeting(t, 1, "MWF", "10:00", "10:50")
	assert.NoError(t, m.Validate())

	backwards := meeting(t, 1, "M", "11:00", "10:00")
	assert.Error(t, backwards.Validate())

	noDays := Meeting{SectionID: 1, Start: clock(t, "10:00"), End: clock(t, "11:00")}
	assert.Error(t, noDays.Validate())
}
