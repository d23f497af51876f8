package query

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SCHEDULE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetScheduleQuery reads a student's final schedule: the meetings of every
// section they are enrolled in, with conflicts flagged inline.
type GetScheduleQuery struct {
	StudentID shared.StudentID
}

// Validate checks query parameters.
func (q *GetScheduleQuery) Validate() error {
	if !q.StudentID.IsValid() {
		return shared.WrapError("query", "GetSchedule", shared.ErrInvalidID,
			"student id is required", nil)
	}
	return nil
}

// ScheduleMeetingDTO is one meeting block on the weekly grid.
type ScheduleMeetingDTO struct {
	SectionID int64  `json:"section_id"`
	Course    string `json:"course,omitempty"`
	Title     string `json:"title,omitempty"`
	Days      string `json:"days"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Location  string `json:"location,omitempty"`
}

// GetScheduleResult is the final schedule plus any overlaps in it.
type GetScheduleResult struct {
	RequestID   string               `json:"request_id"`
	Meetings    []ScheduleMeetingDTO `json:"meetings"`
	Conflicts   []ConflictDTO        `json:"conflicts"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// GetScheduleHandler reads enrolled schedules.
type GetScheduleHandler struct {
	scheduleRepo schedule.Repository
}

// NewGetScheduleHandler creates a new handler.
func NewGetScheduleHandler(scheduleRepo schedule.Repository) *GetScheduleHandler {
	return &GetScheduleHandler{scheduleRepo: scheduleRepo}
}

// Handle lists the student's enrolled meetings sorted by start time, and
// runs the conflict detector over them so the caller sees overlaps without
// a second round trip.
func (h *GetScheduleHandler) Handle(ctx context.Context, q GetScheduleQuery) (*GetScheduleResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	meetings, err := h.scheduleRepo.ListEnrolledMeetings(ctx, q.StudentID)
	if err != nil {
		return nil, shared.WrapError("query", "GetSchedule", shared.ErrStoreUnavailable,
			"cannot load enrolled meetings", err)
	}

	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Start != meetings[j].Start {
			return meetings[i].Start.Before(meetings[j].Start)
		}
		return meetings[i].SectionID < meetings[j].SectionID
	})

	result := &GetScheduleResult{
		RequestID:   uuid.NewString(),
		Meetings:    make([]ScheduleMeetingDTO, 0, len(meetings)),
		Conflicts:   []ConflictDTO{},
		GeneratedAt: time.Now().UTC(),
	}
	for _, m := range meetings {
		dto := ScheduleMeetingDTO{
			SectionID: int64(m.SectionID),
			Title:     m.Title,
			Days:      m.Days.String(),
			Start:     m.Start.String(),
			End:       m.End.String(),
			Location:  m.Location,
		}
		if m.CourseKey.IsValid() {
			dto.Course = m.CourseKey.String()
		}
		result.Meetings = append(result.Meetings, dto)
	}

	for _, c := range schedule.FindConflicts(meetings) {
		result.Conflicts = append(result.Conflicts, newConflictDTO(c))
	}
	return result, nil
}
