package student

import (
	"context"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// Repository defines the interface for student data access.
// Implemented by the infrastructure layer.
type Repository interface {
	// GetByID returns a student by internal id.
	GetByID(ctx context.Context, id shared.StudentID) (*Student, error)

	// GetByLogin returns a student by institutional login.
	GetByLogin(ctx context.Context, login LoginID) (*Student, error)

	// Create inserts a student record.
	Create(ctx context.Context, s *Student) error

	// ListAdvisors returns all advisors, ordered by last then first name.
	ListAdvisors(ctx context.Context) ([]Advisor, error)
}
