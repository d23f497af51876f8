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
// REMOVE PLANNED COURSE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RemovePlannedCourseCommand removes one entry from a degree plan.
type RemovePlannedCourseCommand struct {
	// PlanID is the plan the entry belongs to.
	PlanID shared.PlanID

	// EntryID is the planned entry row to remove.
	EntryID int64
}

// Validate validates the command.
func (c RemovePlannedCourseCommand) Validate() error {
	if !c.PlanID.IsValid() || c.EntryID <= 0 {
		return shared.WrapError("command", "RemovePlannedCourse", shared.ErrInvalidID,
			"plan id and entry id are required", nil)
	}
	return nil
}

// RemovePlannedCourseResult contains the result of the removal.
type RemovePlannedCourseResult struct {
	// Events contains domain events generated.
	Events []shared.Event

	// RemovedAt is when the entry was deleted.
	RemovedAt time.Time
}

// RemovePlannedCourseHandler handles the RemovePlannedCourseCommand.
type RemovePlannedCourseHandler struct {
	env            *query.Environment
	planRepo       plan.Repository
	eventPublisher shared.EventPublisher
}

// NewRemovePlannedCourseHandler creates a new RemovePlannedCourseHandler.
func NewRemovePlannedCourseHandler(env *query.Environment, planRepo plan.Repository, eventPublisher shared.EventPublisher) *RemovePlannedCourseHandler {
	return &RemovePlannedCourseHandler{env: env, planRepo: planRepo, eventPublisher: eventPublisher}
}

// Handle checks the entry belongs to the plan, then deletes it.
func (h *RemovePlannedCourseHandler) Handle(ctx context.Context, cmd RemovePlannedCourseCommand) (*RemovePlannedCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.planRepo.GetPlan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	entries, err := h.planRepo.ListPlannedEntries(ctx, cmd.PlanID)
	if err != nil {
		return nil, shared.WrapError("command", "RemovePlannedCourse", shared.ErrStoreUnavailable,
			"cannot load planned entries", err)
	}
	found := false
	for _, e := range entries {
		if e.ID == cmd.EntryID {
			found = true
			break
		}
	}
	if !found {
		return nil, shared.WrapError("command", "RemovePlannedCourse", shared.ErrNotFound,
			"planned entry not found on this plan", nil)
	}

	if err := h.planRepo.RemovePlannedEntry(ctx, cmd.EntryID); err != nil {
		return nil, shared.WrapError("command", "RemovePlannedCourse", shared.ErrStoreUnavailable,
			"cannot delete planned entry", err)
	}

	event := plan.NewPlannedCourseRemovedEvent(cmd.PlanID, p.StudentID, cmd.EntryID)
	publish(h.eventPublisher, h.env.Logger, event)

	h.env.Logger.Info("planned course removed",
		logger.PlanID(cmd.PlanID.Int64()),
		logger.Int64("entry_id", cmd.EntryID))

	return &RemovePlannedCourseResult{
		Events:    []shared.Event{event},
		RemovedAt: time.Now().UTC(),
	}, nil
}
