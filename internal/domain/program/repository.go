package program

import (
	"context"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// Repository defines the interface for program data access.
// This interface is implemented by the infrastructure layer.
type Repository interface {
	// GetProgram returns a program by id.
	GetProgram(ctx context.Context, id shared.ProgramID) (*Program, error)

	// ListPrograms returns all programs, ordered by name.
	ListPrograms(ctx context.Context) ([]Program, error)

	// GetPrimaryProgram returns the student's primary program. Returns a
	// not-found error when the student has no primary program on record;
	// callers that treat that as "no recommendations" rather than a
	// failure check shared.IsNotFound.
	GetPrimaryProgram(ctx context.Context, studentID shared.StudentID) (*Program, error)

	// SetPrimaryProgram makes programID the student's primary program,
	// clearing any previous primary flag.
	SetPrimaryProgram(ctx context.Context, studentID shared.StudentID, programID shared.ProgramID) error

	// ListEligibleCourses returns the program's full eligible-course
	// roster: every catalog course that can count toward the program.
	ListEligibleCourses(ctx context.Context, id shared.ProgramID) ([]catalog.Course, error)

	// SaveProgram upserts a program by (name, type), writing the assigned
	// id back. Used by ingestion.
	SaveProgram(ctx context.Context, p *Program) error

	// AddEligibleCourse attaches a course to a program's roster. Used by
	// ingestion.
	AddEligibleCourse(ctx context.Context, programID shared.ProgramID, courseID shared.CourseID) error
}
