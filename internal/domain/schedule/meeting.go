// Package schedule contains scheduled sections, their meeting times, and the
// meeting-time conflict detector.
package schedule

import (
	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Section is one scheduled offering of a course in a term.
type Section struct {
	ID       shared.SectionID
	CourseID shared.CourseID
	TermID   shared.TermID
	ClassNum string
	Campus   string
	Capacity int
}

// Validate checks required fields.
func (s *Section) Validate() error {
	if !s.ID.IsValid() || !s.CourseID.IsValid() {
		return shared.WrapError("schedule", "Validate", shared.ErrInvalidID,
			"section must carry section and course ids", nil)
	}
	return nil
}

// Meeting is one recurring meeting block of a section: a set of weekdays and
// a wall-clock interval.
type Meeting struct {
	SectionID shared.SectionID
	Days      timeutil.DaySet
	Start     timeutil.ClockTime
	End       timeutil.ClockTime
	Location  string

	// Resolved attributes, filled by the store when listing schedules.
	CourseKey catalog.CourseKey
	Title     string
}

// Validate checks the meeting is well-formed: at least one day and a
// non-empty forward interval.
func (m *Meeting) Validate() error {
	if !m.SectionID.IsValid() {
		return shared.WrapError("schedule", "Validate", shared.ErrInvalidID,
			"meeting must belong to a section", nil)
	}
	if len(m.Days) == 0 {
		return shared.WrapError("schedule", "Validate", shared.ErrEmptyValue,
			"meeting has no days", nil)
	}
	if !m.Start.IsValid() || !m.End.IsValid() || !m.Start.Before(m.End) {
		return shared.WrapError("schedule", "Validate", shared.ErrValueOutOfRange,
			"meeting interval must be within one day and end after it starts", nil)
	}
	return nil
}
