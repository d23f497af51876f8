package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND MEETING CONFLICTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// FindConflictsQuery scans for meeting-time conflicts. Either pass a meeting
// snapshot directly, or a plan id whose section meetings the store resolves.
type FindConflictsQuery struct {
	// PlanID selects the meetings of sections offering planned courses.
	// Ignored when Meetings is non-empty.
	PlanID shared.PlanID

	// Meetings is an explicit snapshot to scan.
	Meetings []schedule.Meeting
}

// Validate checks that one input form is present.
func (q *FindConflictsQuery) Validate() error {
	if len(q.Meetings) == 0 && !q.PlanID.IsValid() {
		return shared.WrapError("query", "FindConflicts", shared.ErrInvalidInput,
			"either a plan id or a meeting snapshot is required", nil)
	}
	return nil
}

// ConflictDTO is one reported overlap.
type ConflictDTO struct {
	// Day is the shared day the overlap occurs on ("Mon").
	Day string `json:"day"`

	// SectionA/SectionB identify the pair, A starting first.
	SectionA int64 `json:"section_a"`
	SectionB int64 `json:"section_b"`

	// CourseA/CourseB are display codes when the store resolved them.
	CourseA string `json:"course_a,omitempty"`
	CourseB string `json:"course_b,omitempty"`

	// Times of both meetings, "HH:MM".
	StartA string `json:"start_a"`
	EndA   string `json:"end_a"`
	StartB string `json:"start_b"`
	EndB   string `json:"end_b"`
}

// FindConflictsResult lists every pairwise overlap, ordered by day then
// start times.
type FindConflictsResult struct {
	RequestID   string        `json:"request_id"`
	Conflicts   []ConflictDTO `json:"conflicts"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// FindConflictsHandler runs the conflict scan.
type FindConflictsHandler struct {
	env          *Environment
	scheduleRepo schedule.Repository
}

// NewFindConflictsHandler creates a new handler. scheduleRepo may be nil
// when queries always carry explicit meetings.
func NewFindConflictsHandler(env *Environment, scheduleRepo schedule.Repository) *FindConflictsHandler {
	return &FindConflictsHandler{env: env, scheduleRepo: scheduleRepo}
}

// Handle loads the meeting snapshot if needed and scans it.
func (h *FindConflictsHandler) Handle(ctx context.Context, q FindConflictsQuery) (*FindConflictsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	meetings := q.Meetings
	if len(meetings) == 0 {
		if h.scheduleRepo == nil {
			return nil, shared.WrapError("query", "FindConflicts", shared.ErrInvalidState,
				"no schedule store configured for plan lookups", nil)
		}
		var err error
		meetings, err = h.scheduleRepo.ListMeetingsForPlan(ctx, q.PlanID)
		if err != nil {
			return nil, shared.WrapError("query", "FindConflicts", shared.ErrStoreUnavailable,
				"cannot load plan meetings", err)
		}
	}

	conflicts := schedule.FindConflicts(meetings)

	result := &FindConflictsResult{
		RequestID:   uuid.NewString(),
		Conflicts:   make([]ConflictDTO, 0, len(conflicts)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, c := range conflicts {
		result.Conflicts = append(result.Conflicts, newConflictDTO(c))
	}
	return result, nil
}

func newConflictDTO(c schedule.Conflict) ConflictDTO {
	dto := ConflictDTO{
		Day:      c.Day.String(),
		SectionA: int64(c.A.SectionID),
		SectionB: int64(c.B.SectionID),
		StartA:   c.A.Start.String(),
		EndA:     c.A.End.String(),
		StartB:   c.B.Start.String(),
		EndB:     c.B.End.String(),
	}
	if c.A.CourseKey.IsValid() {
		dto.CourseA = c.A.CourseKey.String()
	}
	if c.B.CourseKey.IsValid() {
		dto.CourseB = c.B.CourseKey.String()
	}
	return dto
}
