package query

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/rules"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK ELIGIBILITY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// Reason codes for a negative eligibility verdict.
const (
	ReasonPrereqsNotMet       = "prerequisites_not_met"
	ReasonEquivalentSatisfied = "equivalent_already_satisfied"
)

// CheckEligibilityQuery asks whether a student may add a course.
type CheckEligibilityQuery struct {
	// StudentID identifies the student.
	StudentID shared.StudentID

	// CourseID identifies the course being checked.
	CourseID shared.CourseID

	// PlanID, when set, also blocks the course if an equivalent is
	// already planned there, not just completed.
	PlanID shared.PlanID
}

// Validate checks query parameters.
func (q *CheckEligibilityQuery) Validate() error {
	if !q.StudentID.IsValid() {
		return shared.WrapError("query", "CheckEligibility", shared.ErrInvalidID,
			"student id is required", nil)
	}
	if !q.CourseID.IsValid() {
		return shared.WrapError("query", "CheckEligibility", shared.ErrInvalidID,
			"course id is required", nil)
	}
	return nil
}

// CheckEligibilityResult is the decision for one (student, course) pair.
type CheckEligibilityResult struct {
	// RequestID tags the decision for log correlation.
	RequestID string `json:"request_id"`

	// Eligible is the verdict.
	Eligible bool `json:"eligible"`

	// ReasonCode is empty when eligible; otherwise one of the Reason
	// constants above.
	ReasonCode string `json:"reason_code,omitempty"`

	// BlockedReason is a human-readable explanation of a negative verdict.
	BlockedReason string `json:"blocked_reason,omitempty"`

	// MissingCourses lists the unmet requirements, one string per
	// requirement ("CMPSC 131" or "one of MATH 110, MATH 140").
	MissingCourses []string `json:"missing_courses,omitempty"`

	// GeneratedAt is the decision time.
	GeneratedAt time.Time `json:"generated_at"`
}

// CheckEligibilityHandler answers eligibility queries.
type CheckEligibilityHandler struct {
	env      *Environment
	planRepo plan.Repository
}

// NewCheckEligibilityHandler creates a new handler.
func NewCheckEligibilityHandler(env *Environment, planRepo plan.Repository) *CheckEligibilityHandler {
	return &CheckEligibilityHandler{env: env, planRepo: planRepo}
}

// Handle evaluates the eligibility decision.
func (h *CheckEligibilityHandler) Handle(ctx context.Context, q CheckEligibilityQuery) (*CheckEligibilityResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	index, evaluator, err := h.env.Load(ctx)
	if err != nil {
		return nil, err
	}

	course, err := index.Lookup(q.CourseID)
	if err != nil {
		return nil, err
	}

	completions, err := h.planRepo.ListPassingCompletions(ctx, q.StudentID)
	if err != nil {
		return nil, shared.WrapError("query", "CheckEligibility", shared.ErrStoreUnavailable,
			"cannot load completions", err)
	}
	completed := plan.PassingKeys(completions)

	result := &CheckEligibilityResult{
		RequestID:   uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	// A course already satisfied under any equivalent numbering, completed
	// or planned, is blocked before prerequisites are even considered.
	have := completed
	if q.PlanID.IsValid() {
		entries, err := h.planRepo.ListPlannedEntries(ctx, q.PlanID)
		if err != nil {
			return nil, shared.WrapError("query", "CheckEligibility", shared.ErrStoreUnavailable,
				"cannot load planned entries", err)
		}
		have = completed.Union(plan.PlannedKeys(entries))
	}
	if evaluator.Resolver().IsSatisfiedBy(course.Key, have) {
		result.ReasonCode = ReasonEquivalentSatisfied
		result.BlockedReason = "an equivalent course is already completed or in the plan"
		return result, nil
	}

	missing, err := evaluator.MissingRequirements(q.CourseID, completed)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		result.ReasonCode = ReasonPrereqsNotMet
		result.BlockedReason = "prerequisites not satisfied for this course"
		result.MissingCourses = formatRequirements(missing)
		return result, nil
	}

	result.Eligible = true
	return result, nil
}

// formatRequirements renders requirements for display.
func formatRequirements(reqs []rules.Requirement) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		switch r.Kind {
		case rules.RequirementSingle:
			out = append(out, r.Key.String())
		case rules.RequirementAnyOf:
			keys := make([]string, len(r.Keys))
			for i, k := range r.Keys {
				keys[i] = k.String()
			}
			out = append(out, "one of "+strings.Join(keys, ", "))
		}
	}
	return out
}
