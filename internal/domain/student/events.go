package student

import (
	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// PrimaryProgramSetEvent is emitted when a student's primary program
// changes. Recommendation results keyed by student go stale with it.
type PrimaryProgramSetEvent struct {
	shared.BaseEvent
	StudentID int64 `json:"student_id"`
	ProgramID int64 `json:"program_id"`
}

// Payload implements shared.Event.
func (e PrimaryProgramSetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"program_id": e.ProgramID,
	}
}

// NewPrimaryProgramSetEvent builds the event for a primary program change.
func NewPrimaryProgramSetEvent(studentID shared.StudentID, programID shared.ProgramID) PrimaryProgramSetEvent {
	base := shared.NewBaseEvent(shared.EventPrimaryProgramSet, studentID.String())
	base.ID = uuid.NewString()
	return PrimaryProgramSetEvent{
		BaseEvent: base,
		StudentID: studentID.Int64(),
		ProgramID: int64(programID),
	}
}

// SectionEnrollmentEvent is emitted when a student enrolls in or drops a
// section.
type SectionEnrollmentEvent struct {
	shared.BaseEvent
	StudentID int64 `json:"student_id"`
	SectionID int64 `json:"section_id"`
}

// Payload implements shared.Event.
func (e SectionEnrollmentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"section_id": e.SectionID,
	}
}

// NewSectionEnrolledEvent builds the event for a new enrollment.
func NewSectionEnrolledEvent(studentID shared.StudentID, sectionID shared.SectionID) SectionEnrollmentEvent {
	base := shared.NewBaseEvent(shared.EventSectionEnrolled, studentID.String())
	base.ID = uuid.NewString()
	return SectionEnrollmentEvent{
		BaseEvent: base,
		StudentID: studentID.Int64(),
		SectionID: int64(sectionID),
	}
}

// NewSectionDroppedEvent builds the event for a dropped enrollment.
func NewSectionDroppedEvent(studentID shared.StudentID, sectionID shared.SectionID) SectionEnrollmentEvent {
	base := shared.NewBaseEvent(shared.EventSectionDropped, studentID.String())
	base.ID = uuid.NewString()
	return SectionEnrollmentEvent{
		BaseEvent: base,
		StudentID: studentID.Int64(),
		SectionID: int64(sectionID),
	}
}
