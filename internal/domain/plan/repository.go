package plan

import (
	"context"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// Repository defines the interface for degree plan and transcript data
// access. This interface is implemented by the infrastructure layer.
// The domain layer has no knowledge of the actual storage mechanism.
type Repository interface {
	// Plan operations

	// GetPlan returns a degree plan by id.
	GetPlan(ctx context.Context, id shared.PlanID) (*DegreePlan, error)

	// GetPlanForStudent returns the student's first plan, creating one
	// when none exists (the original system bootstraps a plan at sign-in).
	GetPlanForStudent(ctx context.Context, studentID shared.StudentID) (*DegreePlan, error)

	// ListPlannedEntries returns a plan's entries with course attributes
	// resolved, ordered by term start date then course code.
	ListPlannedEntries(ctx context.Context, planID shared.PlanID) ([]PlannedEntry, error)

	// AddPlannedEntry inserts a new planned course row and returns its id.
	AddPlannedEntry(ctx context.Context, entry *PlannedEntry) (int64, error)

	// RemovePlannedEntry deletes one planned course row.
	RemovePlannedEntry(ctx context.Context, entryID int64) error

	// Transcript operations

	// ListCompletions returns all graded completion records for a student.
	ListCompletions(ctx context.Context, studentID shared.StudentID) ([]CompletionRecord, error)

	// ListPassingCompletions returns the completion records whose grade
	// is in the passing set.
	ListPassingCompletions(ctx context.Context, studentID shared.StudentID) ([]CompletionRecord, error)

	// TotalEarnedCredits sums credit hours over passing completions.
	TotalEarnedCredits(ctx context.Context, studentID shared.StudentID) (shared.CreditHours, error)

	// RecordCompletion records (or overwrites) a completed course with a
	// grade. The store synthesizes a history section when the completion
	// was not taken through a scheduled section.
	RecordCompletion(ctx context.Context, studentID shared.StudentID, courseID shared.CourseID, grade shared.Grade) error

	// UpdateGrade changes the grade on an existing enrollment record.
	UpdateGrade(ctx context.Context, studentID shared.StudentID, enrollmentID int64, grade shared.Grade) error

	// RemoveCompletion deletes an enrollment record (and any synthetic
	// section left orphaned by it).
	RemoveCompletion(ctx context.Context, studentID shared.StudentID, enrollmentID int64) error
}
