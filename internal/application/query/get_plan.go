package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLAN QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetPlanQuery reads a degree plan with its entries.
type GetPlanQuery struct {
	PlanID shared.PlanID
}

// Validate checks query parameters.
func (q *GetPlanQuery) Validate() error {
	if !q.PlanID.IsValid() {
		return shared.WrapError("query", "GetPlan", shared.ErrInvalidID,
			"plan id is required", nil)
	}
	return nil
}

// PlannedEntryDTO is one planned course with resolved attributes.
type PlannedEntryDTO struct {
	EntryID     int64  `json:"entry_id"`
	TermID      int64  `json:"term_id"`
	TermCode    string `json:"term_code,omitempty"`
	CourseID    int64  `json:"course_id,omitempty"`
	SectionID   int64  `json:"section_id,omitempty"`
	Code        string `json:"code,omitempty"`
	Title       string `json:"title,omitempty"`
	CreditHours int    `json:"credit_hours"`

	// Recommended reports whether the engine would still stand behind the
	// entry today: prerequisites satisfied by the transcript and not
	// already covered by an equivalent completion.
	Recommended bool `json:"recommended"`
}

// GetPlanResult is a plan with entries and total planned credits.
type GetPlanResult struct {
	RequestID      string            `json:"request_id"`
	PlanID         int64             `json:"plan_id"`
	StudentID      int64             `json:"student_id"`
	TargetGradTerm int64             `json:"target_grad_term,omitempty"`
	Entries        []PlannedEntryDTO `json:"entries"`
	PlannedCredits int               `json:"planned_credits"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// GetPlanHandler reads plans.
type GetPlanHandler struct {
	env      *Environment
	planRepo plan.Repository
}

// NewGetPlanHandler creates a new handler.
func NewGetPlanHandler(env *Environment, planRepo plan.Repository) *GetPlanHandler {
	return &GetPlanHandler{env: env, planRepo: planRepo}
}

// Handle loads the plan, its entries and the owner's transcript, then marks
// each entry with the engine's current verdict.
func (h *GetPlanHandler) Handle(ctx context.Context, q GetPlanQuery) (*GetPlanResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	p, err := h.planRepo.GetPlan(ctx, q.PlanID)
	if err != nil {
		return nil, err
	}
	entries, err := h.planRepo.ListPlannedEntries(ctx, q.PlanID)
	if err != nil {
		return nil, shared.WrapError("query", "GetPlan", shared.ErrStoreUnavailable,
			"cannot load planned entries", err)
	}
	completions, err := h.planRepo.ListPassingCompletions(ctx, p.StudentID)
	if err != nil {
		return nil, shared.WrapError("query", "GetPlan", shared.ErrStoreUnavailable,
			"cannot load completions", err)
	}

	_, evaluator, err := h.env.Load(ctx)
	if err != nil {
		return nil, err
	}
	completed := plan.PassingKeys(completions)
	resolver := evaluator.Resolver()

	result := &GetPlanResult{
		RequestID:      uuid.NewString(),
		PlanID:         p.ID.Int64(),
		StudentID:      p.StudentID.Int64(),
		TargetGradTerm: int64(p.TargetGradTerm),
		Entries:        make([]PlannedEntryDTO, 0, len(entries)),
		GeneratedAt:    time.Now().UTC(),
	}

	for _, e := range entries {
		dto := PlannedEntryDTO{
			EntryID:     e.ID,
			TermID:      int64(e.TermID),
			TermCode:    e.TermCode,
			CourseID:    e.CourseID.Int64(),
			SectionID:   int64(e.SectionID),
			Title:       e.Title,
			CreditHours: e.CreditHours.Int(),
		}
		if e.Key.IsValid() {
			dto.Code = e.Key.String()
			dto.Recommended = !resolver.IsSatisfiedBy(e.Key, completed)
			if dto.Recommended && e.CourseID.IsValid() {
				eligible, err := evaluator.IsEligible(e.CourseID, completed)
				if err != nil {
					return nil, err
				}
				dto.Recommended = eligible
			}
		}
		result.Entries = append(result.Entries, dto)
		result.PlannedCredits += e.CreditHours.Int()
	}
	return result, nil
}
