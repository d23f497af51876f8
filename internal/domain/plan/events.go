package plan

import (
	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// Plan and transcript events. Anything cached per student (recommendation
// results) listens for these to invalidate itself.

// CoursePlannedEvent is emitted when a course is added to a plan.
type CoursePlannedEvent struct {
	shared.BaseEvent
	PlanID    int64 `json:"plan_id"`
	StudentID int64 `json:"student_id"`
	CourseID  int64 `json:"course_id"`
	TermID    int64 `json:"term_id"`
}

// Payload implements shared.Event.
func (e CoursePlannedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"plan_id":    e.PlanID,
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"term_id":    e.TermID,
	}
}

// NewCoursePlannedEvent builds the event for a fresh planned entry.
func NewCoursePlannedEvent(planID shared.PlanID, studentID shared.StudentID, courseID shared.CourseID, termID shared.TermID) CoursePlannedEvent {
	base := shared.NewBaseEvent(shared.EventCoursePlanned, planID.String())
	base.ID = uuid.NewString()
	return CoursePlannedEvent{
		BaseEvent: base,
		PlanID:    planID.Int64(),
		StudentID: studentID.Int64(),
		CourseID:  courseID.Int64(),
		TermID:    int64(termID),
	}
}

// PlannedCourseRemovedEvent is emitted when a planned entry is removed.
type PlannedCourseRemovedEvent struct {
	shared.BaseEvent
	PlanID    int64 `json:"plan_id"`
	StudentID int64 `json:"student_id"`
	EntryID   int64 `json:"entry_id"`
}

// Payload implements shared.Event.
func (e PlannedCourseRemovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"plan_id":    e.PlanID,
		"student_id": e.StudentID,
		"entry_id":   e.EntryID,
	}
}

// NewPlannedCourseRemovedEvent builds the event for a removed entry.
func NewPlannedCourseRemovedEvent(planID shared.PlanID, studentID shared.StudentID, entryID int64) PlannedCourseRemovedEvent {
	base := shared.NewBaseEvent(shared.EventPlannedCourseRemove, planID.String())
	base.ID = uuid.NewString()
	return PlannedCourseRemovedEvent{
		BaseEvent: base,
		PlanID:    planID.Int64(),
		StudentID: studentID.Int64(),
		EntryID:   entryID,
	}
}

// GradeRecordedEvent is emitted when a transcript grade is recorded or
// updated. Completed-course sets and earned credits change with it.
type GradeRecordedEvent struct {
	shared.BaseEvent
	StudentID int64  `json:"student_id"`
	CourseID  int64  `json:"course_id"`
	Grade     string `json:"grade"`
}

// Payload implements shared.Event.
func (e GradeRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"grade":      e.Grade,
	}
}

// NewGradeRecordedEvent builds the event for a recorded grade.
func NewGradeRecordedEvent(studentID shared.StudentID, courseID shared.CourseID, grade shared.Grade) GradeRecordedEvent {
	base := shared.NewBaseEvent(shared.EventGradeRecorded, studentID.String())
	base.ID = uuid.NewString()
	return GradeRecordedEvent{
		BaseEvent: base,
		StudentID: studentID.Int64(),
		CourseID:  courseID.Int64(),
		Grade:     grade.String(),
	}
}

// NewGradeUpdatedEvent builds the event for a changed grade.
func NewGradeUpdatedEvent(studentID shared.StudentID, courseID shared.CourseID, grade shared.Grade) GradeRecordedEvent {
	base := shared.NewBaseEvent(shared.EventGradeUpdated, studentID.String())
	base.ID = uuid.NewString()
	return GradeRecordedEvent{
		BaseEvent: base,
		StudentID: studentID.Int64(),
		CourseID:  courseID.Int64(),
		Grade:     grade.String(),
	}
}

// CompletionRemovedEvent is emitted when an enrollment record is deleted
// from the transcript.
type CompletionRemovedEvent struct {
	shared.BaseEvent
	StudentID    int64 `json:"student_id"`
	EnrollmentID int64 `json:"enrollment_id"`
}

// Payload implements shared.Event.
func (e CompletionRemovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":    e.StudentID,
		"enrollment_id": e.EnrollmentID,
	}
}

// NewCompletionRemovedEvent builds the event for a removed enrollment.
func NewCompletionRemovedEvent(studentID shared.StudentID, enrollmentID int64) CompletionRemovedEvent {
	base := shared.NewBaseEvent(shared.EventCompletionGone, studentID.String())
	base.ID = uuid.NewString()
	return CompletionRemovedEvent{
		BaseEvent:    base,
		StudentID:    studentID.Int64(),
		EnrollmentID: enrollmentID,
	}
}
