package command

import (
	"context"
	"time"

	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SECTION ENROLLMENT COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// EnrollSectionCommand enrolls a student in a scheduled section.
type EnrollSectionCommand struct {
	StudentID shared.StudentID
	SectionID shared.SectionID

	// AllowConflicts permits enrolling into a section that overlaps the
	// student's current schedule. Off by default.
	AllowConflicts bool
}

// Validate validates the command.
func (c EnrollSectionCommand) Validate() error {
	if !c.StudentID.IsValid() || !c.SectionID.IsValid() {
		return shared.WrapError("command", "EnrollSection", shared.ErrInvalidID,
			"student id and section id are required", nil)
	}
	return nil
}

// DropSectionCommand removes a student's active enrollment in a section.
type DropSectionCommand struct {
	StudentID shared.StudentID
	SectionID shared.SectionID
}

// Validate validates the command.
func (c DropSectionCommand) Validate() error {
	if !c.StudentID.IsValid() || !c.SectionID.IsValid() {
		return shared.WrapError("command", "DropSection", shared.ErrInvalidID,
			"student id and section id are required", nil)
	}
	return nil
}

// EnrollSectionResult contains the result of an enrollment write.
type EnrollSectionResult struct {
	// EnrollmentID is the new enrollment row id, zero for drops.
	EnrollmentID int64

	// Conflicts lists the schedule overlaps the enrollment introduced.
	// Non-empty only when AllowConflicts let the write through anyway.
	Conflicts []schedule.Conflict

	// Events contains domain events generated.
	Events []shared.Event

	// AppliedAt is when the write happened.
	AppliedAt time.Time
}

// EnrollSectionHandler handles section enrollment and drops.
type EnrollSectionHandler struct {
	scheduleRepo   schedule.Repository
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewEnrollSectionHandler creates a new EnrollSectionHandler.
func NewEnrollSectionHandler(scheduleRepo schedule.Repository, eventPublisher shared.EventPublisher, log *logger.Logger) *EnrollSectionHandler {
	if log == nil {
		log = logger.Default()
	}
	return &EnrollSectionHandler{scheduleRepo: scheduleRepo, eventPublisher: eventPublisher, log: log}
}

// Enroll checks the section exists and the student's schedule stays
// conflict-free, then writes the enrollment.
func (h *EnrollSectionHandler) Enroll(ctx context.Context, cmd EnrollSectionCommand) (*EnrollSectionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.scheduleRepo.GetSection(ctx, cmd.SectionID); err != nil {
		return nil, err
	}

	enrolled, err := h.scheduleRepo.ListEnrolledMeetings(ctx, cmd.StudentID)
	if err != nil {
		return nil, shared.WrapError("command", "EnrollSection", shared.ErrStoreUnavailable,
			"cannot load enrolled meetings", err)
	}
	candidate, err := h.scheduleRepo.ListMeetingsForSection(ctx, cmd.SectionID)
	if err != nil {
		return nil, shared.WrapError("command", "EnrollSection", shared.ErrStoreUnavailable,
			"cannot load section meetings", err)
	}

	conflicts := enrollmentConflicts(append(enrolled, candidate...), cmd.SectionID)
	if len(conflicts) > 0 && !cmd.AllowConflicts {
		return nil, shared.WrapError("command", "EnrollSection", shared.ErrScheduleConflict,
			"section overlaps the current schedule", nil)
	}

	enrollmentID, err := h.scheduleRepo.EnrollSection(ctx, cmd.StudentID, cmd.SectionID)
	if err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, err
		}
		return nil, shared.WrapError("command", "EnrollSection", shared.ErrStoreUnavailable,
			"cannot write enrollment", err)
	}

	event := student.NewSectionEnrolledEvent(cmd.StudentID, cmd.SectionID)
	publish(h.eventPublisher, h.log, event)

	h.log.Info("section enrolled",
		logger.StudentID(cmd.StudentID.Int64()),
		logger.Int64("section_id", int64(cmd.SectionID)),
		logger.Int("conflicts", len(conflicts)))

	return &EnrollSectionResult{
		EnrollmentID: enrollmentID,
		Conflicts:    conflicts,
		Events:       []shared.Event{event},
		AppliedAt:    time.Now().UTC(),
	}, nil
}

// Drop removes the enrollment.
func (h *EnrollSectionHandler) Drop(ctx context.Context, cmd DropSectionCommand) (*EnrollSectionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := h.scheduleRepo.DropSection(ctx, cmd.StudentID, cmd.SectionID); err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("command", "DropSection", shared.ErrStoreUnavailable,
			"cannot drop enrollment", err)
	}

	event := student.NewSectionDroppedEvent(cmd.StudentID, cmd.SectionID)
	publish(h.eventPublisher, h.log, event)

	h.log.Info("section dropped",
		logger.StudentID(cmd.StudentID.Int64()),
		logger.Int64("section_id", int64(cmd.SectionID)))

	return &EnrollSectionResult{
		Events:    []shared.Event{event},
		AppliedAt: time.Now().UTC(),
	}, nil
}

// enrollmentConflicts runs the pairwise scan over the combined snapshot and
// keeps only the conflicts the candidate section is party to. Overlaps that
// already existed in the schedule are not this write's problem.
func enrollmentConflicts(meetings []schedule.Meeting, candidate shared.SectionID) []schedule.Conflict {
	var out []schedule.Conflict
	for _, c := range schedule.FindConflicts(meetings) {
		if c.A.SectionID == candidate || c.B.SectionID == candidate {
			out = append(out, c)
		}
	}
	return out
}
