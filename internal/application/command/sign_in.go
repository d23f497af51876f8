package command

import (
	"context"
	"time"

	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SIGN IN COMMAND
// First contact bootstraps the record: an unknown login gets a student row
// and an empty degree plan, so every later operation can assume both exist.
// ══════════════════════════════════════════════════════════════════════════════

// SignInCommand resolves an institutional login to a student and their plan.
type SignInCommand struct {
	// Login is the institutional login, normalized before lookup.
	Login student.LoginID

	// FirstName/LastName/Email seed a new record when the login is
	// unknown. Ignored for existing students.
	FirstName string
	LastName  string
	Email     string
}

// Validate validates the command.
func (c SignInCommand) Validate() error {
	if !c.Login.Normalize().IsValid() {
		return shared.WrapError("command", "SignIn", shared.ErrInvalidInput,
			"login id is malformed", nil)
	}
	return nil
}

// SignInResult contains the resolved student and plan.
type SignInResult struct {
	Student *student.Student
	Plan    *plan.DegreePlan

	// Created reports whether a new student record was made.
	Created bool

	// SignedInAt is when the resolution happened.
	SignedInAt time.Time
}

// SignInHandler handles the SignInCommand.
type SignInHandler struct {
	studentRepo student.Repository
	planRepo    plan.Repository
	log         *logger.Logger
}

// NewSignInHandler creates a new SignInHandler.
func NewSignInHandler(studentRepo student.Repository, planRepo plan.Repository, log *logger.Logger) *SignInHandler {
	if log == nil {
		log = logger.Default()
	}
	return &SignInHandler{studentRepo: studentRepo, planRepo: planRepo, log: log}
}

// Handle looks the login up, creating the student and plan on first contact.
func (h *SignInHandler) Handle(ctx context.Context, cmd SignInCommand) (*SignInResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	login := cmd.Login.Normalize()

	created := false
	stud, err := h.studentRepo.GetByLogin(ctx, login)
	switch {
	case err == nil:
	case shared.IsNotFound(err):
		stud = &student.Student{
			LoginID:   login,
			FirstName: cmd.FirstName,
			LastName:  cmd.LastName,
			Email:     cmd.Email,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.studentRepo.Create(ctx, stud); err != nil {
			return nil, shared.WrapError("command", "SignIn", shared.ErrStoreUnavailable,
				"cannot create student", err)
		}
		created = true
		h.log.Info("student created on first sign-in",
			logger.StudentID(stud.ID.Int64()),
			logger.String("login", login.String()))
	default:
		return nil, shared.WrapError("command", "SignIn", shared.ErrStoreUnavailable,
			"cannot look up student", err)
	}

	p, err := h.planRepo.GetPlanForStudent(ctx, stud.ID)
	if err != nil {
		return nil, shared.WrapError("command", "SignIn", shared.ErrStoreUnavailable,
			"cannot load or create plan", err)
	}

	return &SignInResult{
		Student:    stud,
		Plan:       p,
		Created:    created,
		SignedInAt: time.Now().UTC(),
	}, nil
}
