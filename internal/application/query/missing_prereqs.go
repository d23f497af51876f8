package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/rules"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MISSING PREREQUISITES QUERY
// ══════════════════════════════════════════════════════════════════════════════

// MissingPrereqsQuery asks which prerequisite requirements of a course the
// student has not yet satisfied.
type MissingPrereqsQuery struct {
	StudentID shared.StudentID
	CourseID  shared.CourseID
}

// Validate checks query parameters.
func (q *MissingPrereqsQuery) Validate() error {
	if !q.StudentID.IsValid() || !q.CourseID.IsValid() {
		return shared.WrapError("query", "MissingPrereqs", shared.ErrInvalidID,
			"student id and course id are required", nil)
	}
	return nil
}

// MissingRequirementDTO is one unmet requirement with resolved course
// attributes for display.
type MissingRequirementDTO struct {
	// AnyOf is true for alternative-group requirements: satisfying any
	// one listed course fulfils it.
	AnyOf bool `json:"any_of"`

	// Courses lists the course options for this requirement.
	Courses []MissingCourseDTO `json:"courses"`
}

// MissingCourseDTO resolves one course option.
type MissingCourseDTO struct {
	CourseID int64  `json:"course_id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
}

// MissingPrereqsResult lists the unmet requirements in partition order.
type MissingPrereqsResult struct {
	RequestID   string                  `json:"request_id"`
	Missing     []MissingRequirementDTO `json:"missing"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// MissingPrereqsHandler explains negative eligibility verdicts.
type MissingPrereqsHandler struct {
	env      *Environment
	planRepo plan.Repository
}

// NewMissingPrereqsHandler creates a new handler.
func NewMissingPrereqsHandler(env *Environment, planRepo plan.Repository) *MissingPrereqsHandler {
	return &MissingPrereqsHandler{env: env, planRepo: planRepo}
}

// Handle lists the requirements unmet by the student's passing completions.
func (h *MissingPrereqsHandler) Handle(ctx context.Context, q MissingPrereqsQuery) (*MissingPrereqsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	index, evaluator, err := h.env.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := index.Lookup(q.CourseID); err != nil {
		return nil, err
	}

	completions, err := h.planRepo.ListPassingCompletions(ctx, q.StudentID)
	if err != nil {
		return nil, shared.WrapError("query", "MissingPrereqs", shared.ErrStoreUnavailable,
			"cannot load completions", err)
	}

	missing, err := evaluator.MissingRequirements(q.CourseID, plan.PassingKeys(completions))
	if err != nil {
		return nil, err
	}

	result := &MissingPrereqsResult{
		RequestID:   uuid.NewString(),
		Missing:     make([]MissingRequirementDTO, 0, len(missing)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, req := range missing {
		dto := MissingRequirementDTO{AnyOf: req.Kind == rules.RequirementAnyOf}
		keys := req.Keys
		if len(keys) == 0 {
			keys = append(keys, req.Key)
		}
		for _, k := range keys {
			opt := MissingCourseDTO{Code: k.String()}
			if c, err := index.LookupKey(k); err == nil {
				opt.CourseID = c.ID.Int64()
				opt.Title = c.Title
			}
			dto.Courses = append(dto.Courses, opt)
		}
		result.Missing = append(result.Missing, dto)
	}
	return result, nil
}
