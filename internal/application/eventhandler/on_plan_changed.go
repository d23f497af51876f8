// Package eventhandler contains domain event handlers. Handlers are the
// reactive side of the system: a write happens somewhere, and side effects
// such as cache invalidation run here instead of inside the command.
package eventhandler

import (
	"context"
	"strconv"

	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON PLAN CHANGED HANDLER
// Recommendation results are a pure function of a student's transcript,
// plan, and program. Any event touching those drops the student's cached
// results; the next query recomputes them from the store.
// ══════════════════════════════════════════════════════════════════════════════

// OnPlanChangedHandler invalidates cached recommendations when a student's
// decision inputs change.
type OnPlanChangedHandler struct {
	cache query.RecommendationCache
	log   *logger.Logger
}

// NewOnPlanChangedHandler creates a new OnPlanChangedHandler.
func NewOnPlanChangedHandler(cache query.RecommendationCache, log *logger.Logger) *OnPlanChangedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnPlanChangedHandler{cache: cache, log: log}
}

// Subscribe registers the handler for every event type that changes a
// recommendation input.
func (h *OnPlanChangedHandler) Subscribe(bus shared.EventSubscriber) error {
	for _, t := range []shared.EventType{
		shared.EventCoursePlanned,
		shared.EventPlannedCourseRemove,
		shared.EventGradeRecorded,
		shared.EventGradeUpdated,
		shared.EventCompletionGone,
		shared.EventPrimaryProgramSet,
	} {
		if err := bus.Subscribe(t, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle drops the affected student's cached recommendations.
func (h *OnPlanChangedHandler) Handle(ctx context.Context, event shared.Event) error {
	studentID, ok := studentIDFromEvent(event)
	if !ok {
		h.log.Warn("plan change event without a student id",
			logger.String("event_type", string(event.EventType())))
		return nil
	}

	if err := h.cache.InvalidateStudent(ctx, studentID); err != nil {
		h.log.Warn("recommendation cache invalidation failed",
			logger.StudentID(studentID.Int64()),
			logger.Err(err))
		return err
	}

	h.log.Debug("recommendation cache invalidated",
		logger.StudentID(studentID.Int64()),
		logger.String("event_type", string(event.EventType())))
	return nil
}

// studentIDFromEvent pulls the student id from the event payload, falling
// back to the aggregate id for events aggregated by student.
func studentIDFromEvent(event shared.Event) (shared.StudentID, bool) {
	if v, ok := event.Payload()["student_id"]; ok {
		if id, ok := v.(int64); ok && id > 0 {
			return shared.StudentID(id), true
		}
	}
	if id, err := strconv.ParseInt(event.AggregateID(), 10, 64); err == nil && id > 0 {
		switch event.EventType() {
		case shared.EventGradeRecorded, shared.EventGradeUpdated, shared.EventCompletionGone,
			shared.EventPrimaryProgramSet, shared.EventSectionEnrolled, shared.EventSectionDropped:
			return shared.StudentID(id), true
		}
	}
	return 0, false
}
