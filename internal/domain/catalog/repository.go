package catalog

import (
	"context"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// SnapshotSource loads the full catalog as of a single consistent point in
// time. Decision operations read through it so interleaved writes cannot
// change a verdict mid-evaluation; consistency is the store's concern (a
// single transactional read), not the engine's.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) ([]Course, []PrerequisiteEdge, error)
}

// Repository defines the interface for catalog data access.
// This interface is implemented by the infrastructure layer.
// The domain layer has no knowledge of the actual storage mechanism.
type Repository interface {
	// GetCourse returns a course by surrogate id.
	GetCourse(ctx context.Context, id shared.CourseID) (*Course, error)

	// GetCourseByKey returns a course by its natural key.
	GetCourseByKey(ctx context.Context, key CourseKey) (*Course, error)

	// ListCourses returns the full catalog.
	ListCourses(ctx context.Context) ([]Course, error)

	// ListPrerequisites returns all prerequisite edges in the catalog.
	ListPrerequisites(ctx context.Context) ([]PrerequisiteEdge, error)

	// ListPrerequisitesOf returns the prerequisite edges for one course.
	ListPrerequisitesOf(ctx context.Context, id shared.CourseID) ([]PrerequisiteEdge, error)

	// SearchCourses finds courses matching a free-text query. A query like
	// "CMPSC 13" matches by subject + number prefix; otherwise subject,
	// title, and catalog number are matched. Level filters by the leading
	// digit of the catalog number (e.g., 400 keeps 4xx courses).
	// Results are ordered by subject then catalog number; limit caps them.
	SearchCourses(ctx context.Context, query, subject string, level, limit int) ([]Course, error)

	// ListSubjects returns the distinct subject codes, sorted.
	ListSubjects(ctx context.Context) ([]string, error)

	// SaveCourse upserts a catalog row (used by ingestion).
	SaveCourse(ctx context.Context, c *Course) error

	// SavePrerequisite upserts a prerequisite edge (used by ingestion).
	SavePrerequisite(ctx context.Context, e *PrerequisiteEdge) error
}
