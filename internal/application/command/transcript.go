package command

import (
	"context"
	"time"

	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSCRIPT COMMANDS
// Maintained by advisors against the registrar feed: record a completed
// course with a grade, fix a grade, or remove a record entirely. Every write
// changes the completed-course set the engine evaluates against, so each one
// emits an event for cache invalidation.
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeCommand records (or overwrites) a graded completion.
type RecordGradeCommand struct {
	StudentID shared.StudentID
	CourseID  shared.CourseID

	// Grade is the raw grade string; normalized and validated against the
	// accepted vocabulary.
	Grade string
}

// Validate validates the command.
func (c RecordGradeCommand) Validate() error {
	if !c.StudentID.IsValid() || !c.CourseID.IsValid() {
		return shared.WrapError("command", "RecordGrade", shared.ErrInvalidID,
			"student id and course id are required", nil)
	}
	return nil
}

// UpdateGradeCommand changes the grade on an existing enrollment record.
type UpdateGradeCommand struct {
	StudentID    shared.StudentID
	EnrollmentID int64
	Grade        string
}

// Validate validates the command.
func (c UpdateGradeCommand) Validate() error {
	if !c.StudentID.IsValid() || c.EnrollmentID <= 0 {
		return shared.WrapError("command", "UpdateGrade", shared.ErrInvalidID,
			"student id and enrollment id are required", nil)
	}
	return nil
}

// RemoveCompletionCommand deletes an enrollment record.
type RemoveCompletionCommand struct {
	StudentID    shared.StudentID
	EnrollmentID int64
}

// Validate validates the command.
func (c RemoveCompletionCommand) Validate() error {
	if !c.StudentID.IsValid() || c.EnrollmentID <= 0 {
		return shared.WrapError("command", "RemoveCompletion", shared.ErrInvalidID,
			"student id and enrollment id are required", nil)
	}
	return nil
}

// TranscriptResult is the shared result of transcript writes.
type TranscriptResult struct {
	// Grade is the normalized grade applied, empty for removals.
	Grade shared.Grade

	// Events contains domain events generated.
	Events []shared.Event

	// AppliedAt is when the write happened.
	AppliedAt time.Time
}

// TranscriptHandler handles the transcript commands.
type TranscriptHandler struct {
	env            *query.Environment
	planRepo       plan.Repository
	eventPublisher shared.EventPublisher
}

// NewTranscriptHandler creates a new TranscriptHandler.
func NewTranscriptHandler(env *query.Environment, planRepo plan.Repository, eventPublisher shared.EventPublisher) *TranscriptHandler {
	return &TranscriptHandler{env: env, planRepo: planRepo, eventPublisher: eventPublisher}
}

// RecordGrade records a completed course with a grade. The course must
// exist in the catalog; the grade must belong to the accepted vocabulary.
func (h *TranscriptHandler) RecordGrade(ctx context.Context, cmd RecordGradeCommand) (*TranscriptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	grade, err := shared.ParseGrade(cmd.Grade)
	if err != nil {
		return nil, err
	}

	index, _, err := h.env.Load(ctx)
	if err != nil {
		return nil, err
	}
	course, err := index.Lookup(cmd.CourseID)
	if err != nil {
		return nil, err
	}

	if err := h.planRepo.RecordCompletion(ctx, cmd.StudentID, cmd.CourseID, grade); err != nil {
		return nil, shared.WrapError("command", "RecordGrade", shared.ErrStoreUnavailable,
			"cannot record completion", err)
	}

	event := plan.NewGradeRecordedEvent(cmd.StudentID, cmd.CourseID, grade)
	publish(h.eventPublisher, h.env.Logger, event)

	h.env.Logger.Info("grade recorded",
		logger.StudentID(cmd.StudentID.Int64()),
		logger.CourseCode(course.Key.String()),
		logger.Grade(grade.String()))

	return &TranscriptResult{
		Grade:     grade,
		Events:    []shared.Event{event},
		AppliedAt: time.Now().UTC(),
	}, nil
}

// UpdateGrade changes the grade on an existing enrollment record.
func (h *TranscriptHandler) UpdateGrade(ctx context.Context, cmd UpdateGradeCommand) (*TranscriptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	grade, err := shared.ParseGrade(cmd.Grade)
	if err != nil {
		return nil, err
	}

	if err := h.planRepo.UpdateGrade(ctx, cmd.StudentID, cmd.EnrollmentID, grade); err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("command", "UpdateGrade", shared.ErrStoreUnavailable,
			"cannot update grade", err)
	}

	event := plan.NewGradeUpdatedEvent(cmd.StudentID, 0, grade)
	publish(h.eventPublisher, h.env.Logger, event)

	h.env.Logger.Info("grade updated",
		logger.StudentID(cmd.StudentID.Int64()),
		logger.Int64("enrollment_id", cmd.EnrollmentID),
		logger.Grade(grade.String()))

	return &TranscriptResult{
		Grade:     grade,
		Events:    []shared.Event{event},
		AppliedAt: time.Now().UTC(),
	}, nil
}

// RemoveCompletion deletes an enrollment record from the transcript.
func (h *TranscriptHandler) RemoveCompletion(ctx context.Context, cmd RemoveCompletionCommand) (*TranscriptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := h.planRepo.RemoveCompletion(ctx, cmd.StudentID, cmd.EnrollmentID); err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("command", "RemoveCompletion", shared.ErrStoreUnavailable,
			"cannot remove completion", err)
	}

	event := plan.NewCompletionRemovedEvent(cmd.StudentID, cmd.EnrollmentID)
	publish(h.eventPublisher, h.env.Logger, event)

	h.env.Logger.Info("completion removed",
		logger.StudentID(cmd.StudentID.Int64()),
		logger.Int64("enrollment_id", cmd.EnrollmentID))

	return &TranscriptResult{
		Events:    []shared.Event{event},
		AppliedAt: time.Now().UTC(),
	}, nil
}
