package command

import (
	"context"
	"time"

	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET PRIMARY PROGRAM COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// SetPrimaryProgramCommand declares a student's primary program. The
// recommendation roster follows from it.
type SetPrimaryProgramCommand struct {
	StudentID shared.StudentID
	ProgramID shared.ProgramID
}

// Validate validates the command.
func (c SetPrimaryProgramCommand) Validate() error {
	if !c.StudentID.IsValid() || !c.ProgramID.IsValid() {
		return shared.WrapError("command", "SetPrimaryProgram", shared.ErrInvalidID,
			"student id and program id are required", nil)
	}
	return nil
}

// SetPrimaryProgramResult contains the result of the declaration.
type SetPrimaryProgramResult struct {
	// ProgramName is the name of the declared program.
	ProgramName string

	// Events contains domain events generated.
	Events []shared.Event

	// DeclaredAt is when the write happened.
	DeclaredAt time.Time
}

// SetPrimaryProgramHandler handles the SetPrimaryProgramCommand.
type SetPrimaryProgramHandler struct {
	programRepo    program.Repository
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewSetPrimaryProgramHandler creates a new SetPrimaryProgramHandler.
func NewSetPrimaryProgramHandler(programRepo program.Repository, studentRepo student.Repository, eventPublisher shared.EventPublisher, log *logger.Logger) *SetPrimaryProgramHandler {
	if log == nil {
		log = logger.Default()
	}
	return &SetPrimaryProgramHandler{
		programRepo:    programRepo,
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

// Handle verifies both sides exist, then flips the primary flag.
func (h *SetPrimaryProgramHandler) Handle(ctx context.Context, cmd SetPrimaryProgramCommand) (*SetPrimaryProgramResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.studentRepo.GetByID(ctx, cmd.StudentID); err != nil {
		return nil, err
	}
	prog, err := h.programRepo.GetProgram(ctx, cmd.ProgramID)
	if err != nil {
		return nil, err
	}

	if err := h.programRepo.SetPrimaryProgram(ctx, cmd.StudentID, cmd.ProgramID); err != nil {
		return nil, shared.WrapError("command", "SetPrimaryProgram", shared.ErrStoreUnavailable,
			"cannot set primary program", err)
	}

	event := student.NewPrimaryProgramSetEvent(cmd.StudentID, cmd.ProgramID)
	publish(h.eventPublisher, h.log, event)

	h.log.Info("primary program set",
		logger.StudentID(cmd.StudentID.Int64()),
		logger.String("program", prog.Name))

	return &SetPrimaryProgramResult{
		ProgramName: prog.Name,
		Events:      []shared.Event{event},
		DeclaredAt:  time.Now().UTC(),
	}, nil
}
