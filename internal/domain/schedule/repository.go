package schedule

import (
	"context"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// Repository defines the interface for section, meeting, and enrollment
// schedule data access. Implemented by the infrastructure layer.
type Repository interface {
	// GetSection returns a section by id.
	GetSection(ctx context.Context, id shared.SectionID) (*Section, error)

	// ListMeetingsForSection returns one section's meeting blocks with
	// course attributes resolved.
	ListMeetingsForSection(ctx context.Context, sectionID shared.SectionID) ([]Meeting, error)

	// ListMeetingsForPlan returns the meetings of every section offering
	// a course planned in the given plan, with course attributes resolved.
	ListMeetingsForPlan(ctx context.Context, planID shared.PlanID) ([]Meeting, error)

	// ListEnrolledMeetings returns the meetings of the sections a student
	// is currently enrolled in (the final schedule).
	ListEnrolledMeetings(ctx context.Context, studentID shared.StudentID) ([]Meeting, error)

	// EnrollSection enrolls a student in a section and returns the new
	// enrollment id.
	EnrollSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) (int64, error)

	// DropSection removes a student's active enrollment in a section.
	DropSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) error

	// SaveSection upserts a section row (used by ingestion).
	SaveSection(ctx context.Context, s *Section) error

	// SaveMeeting upserts a meeting row (used by ingestion).
	SaveMeeting(ctx context.Context, m *Meeting) error
}
