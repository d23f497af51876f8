// Package command contains write operations (CQRS - Commands). Writes that
// affect decision inputs run the engine first: the store never holds an
// entry the engine would have rejected at the time it was written.
package command

import (
	"context"
	"time"

	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD PLANNED COURSE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AddPlannedCourseCommand adds a course to a degree plan for a term.
type AddPlannedCourseCommand struct {
	// PlanID is the plan to add to.
	PlanID shared.PlanID

	// TermID is the term the course is planned for.
	TermID shared.TermID

	// CourseID is the catalog course to plan.
	CourseID shared.CourseID

	// Force skips the prerequisite check. Advisors use it to plan around
	// transfer credit the transcript does not show yet.
	Force bool
}

// Validate validates the command.
func (c AddPlannedCourseCommand) Validate() error {
	if !c.PlanID.IsValid() || !c.TermID.IsValid() || !c.CourseID.IsValid() {
		return shared.WrapError("command", "AddPlannedCourse", shared.ErrInvalidID,
			"plan id, term id and course id are required", nil)
	}
	return nil
}

// AddPlannedCourseResult contains the result of planning a course.
type AddPlannedCourseResult struct {
	// EntryID is the id of the new planned entry.
	EntryID int64

	// Code is the display form of the planned course.
	Code string

	// Events contains domain events generated.
	Events []shared.Event

	// PlannedAt is when the entry was written.
	PlannedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AddPlannedCourseHandler handles the AddPlannedCourseCommand.
type AddPlannedCourseHandler struct {
	env            *query.Environment
	planRepo       plan.Repository
	eventPublisher shared.EventPublisher
}

// NewAddPlannedCourseHandler creates a new AddPlannedCourseHandler.
// eventPublisher may be nil.
func NewAddPlannedCourseHandler(env *query.Environment, planRepo plan.Repository, eventPublisher shared.EventPublisher) *AddPlannedCourseHandler {
	return &AddPlannedCourseHandler{env: env, planRepo: planRepo, eventPublisher: eventPublisher}
}

// Handle validates the course against the engine, then inserts the entry.
func (h *AddPlannedCourseHandler) Handle(ctx context.Context, cmd AddPlannedCourseCommand) (*AddPlannedCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.planRepo.GetPlan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}

	index, evaluator, err := h.env.Load(ctx)
	if err != nil {
		return nil, err
	}
	course, err := index.Lookup(cmd.CourseID)
	if err != nil {
		return nil, err
	}

	completions, err := h.planRepo.ListPassingCompletions(ctx, p.StudentID)
	if err != nil {
		return nil, shared.WrapError("command", "AddPlannedCourse", shared.ErrStoreUnavailable,
			"cannot load completions", err)
	}
	entries, err := h.planRepo.ListPlannedEntries(ctx, cmd.PlanID)
	if err != nil {
		return nil, shared.WrapError("command", "AddPlannedCourse", shared.ErrStoreUnavailable,
			"cannot load planned entries", err)
	}

	completed := plan.PassingKeys(completions)
	planned := plan.PlannedKeys(entries)

	for _, e := range entries {
		if e.CourseID == cmd.CourseID {
			return nil, shared.WrapError("command", "AddPlannedCourse", shared.ErrAlreadyPlanned,
				course.Key.String()+" is already on the plan", nil)
		}
	}
	if evaluator.Resolver().IsSatisfiedBy(course.Key, completed.Union(planned)) {
		return nil, shared.WrapError("command", "AddPlannedCourse", shared.ErrAlreadyPlanned,
			course.Key.String()+" or an equivalent is already completed or planned", nil)
	}

	if !cmd.Force {
		eligible, err := evaluator.IsEligible(cmd.CourseID, completed)
		if err != nil {
			return nil, err
		}
		if !eligible {
			return nil, shared.WrapError("command", "AddPlannedCourse", shared.ErrPrereqNotSatisfied,
				"prerequisites for "+course.Key.String()+" are not satisfied", nil)
		}
	}

	entry := &plan.PlannedEntry{
		PlanID:   cmd.PlanID,
		TermID:   cmd.TermID,
		CourseID: cmd.CourseID,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	entryID, err := h.planRepo.AddPlannedEntry(ctx, entry)
	if err != nil {
		return nil, shared.WrapError("command", "AddPlannedCourse", shared.ErrStoreUnavailable,
			"cannot insert planned entry", err)
	}

	event := plan.NewCoursePlannedEvent(cmd.PlanID, p.StudentID, cmd.CourseID, cmd.TermID)
	h.publish(event)

	h.env.Logger.Info("course planned",
		logger.PlanID(cmd.PlanID.Int64()),
		logger.StudentID(p.StudentID.Int64()),
		logger.CourseCode(course.Key.String()))

	return &AddPlannedCourseResult{
		EntryID:   entryID,
		Code:      course.Key.String(),
		Events:    []shared.Event{event},
		PlannedAt: time.Now().UTC(),
	}, nil
}

func (h *AddPlannedCourseHandler) publish(event shared.Event) {
	publish(h.eventPublisher, h.env.Logger, event)
}

// publish sends an event without failing the command. The write already
// happened; listeners that miss an event self-heal on cache expiry.
func publish(pub shared.EventPublisher, log *logger.Logger, event shared.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(event); err != nil && log != nil {
		log.Warn("event publish failed",
			logger.String("event_type", string(event.EventType())),
			logger.Err(err))
	}
}
