package query

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMEND COURSES QUERY
// ══════════════════════════════════════════════════════════════════════════════

// DefaultMaxResults caps a recommendation list when the query does not.
const DefaultMaxResults = 50

// RecommendQuery asks which courses a student should take next.
type RecommendQuery struct {
	// StudentID identifies the student.
	StudentID shared.StudentID

	// PlanID identifies the plan whose entries block re-recommendation.
	PlanID shared.PlanID

	// MaxResults caps the list (default 50).
	MaxResults int
}

// Validate checks query parameters and applies defaults.
func (q *RecommendQuery) Validate() error {
	if !q.StudentID.IsValid() {
		return shared.WrapError("query", "Recommend", shared.ErrInvalidID,
			"student id is required", nil)
	}
	if !q.PlanID.IsValid() {
		return shared.WrapError("query", "Recommend", shared.ErrInvalidID,
			"plan id is required", nil)
	}
	if q.MaxResults < 0 {
		return shared.WrapError("query", "Recommend", shared.ErrNegativeValue,
			"max results cannot be negative", nil)
	}
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
	return nil
}

// RecommendedCourseDTO is one recommended course.
type RecommendedCourseDTO struct {
	// CourseID is the surrogate catalog id.
	CourseID int64 `json:"course_id"`

	// Code is the display form, e.g. "CMPSC 132".
	Code string `json:"code"`

	// Title is the catalog title.
	Title string `json:"title"`

	// CreditHours is the credit value.
	CreditHours int `json:"credit_hours"`

	// Semester is the canonical (or inferred) semester index the course
	// is nominally taken in.
	Semester int `json:"semester"`
}

// RecommendResult is the ordered recommendation list.
type RecommendResult struct {
	// RequestID tags the decision for log correlation.
	RequestID string `json:"request_id"`

	// Courses is the ranked list, canonical program order first.
	Courses []RecommendedCourseDTO `json:"courses"`

	// SemesterStanding is the standing derived from earned credits.
	SemesterStanding int `json:"semester_standing"`

	// MaxSemesterShown is the cap applied to candidate semesters.
	MaxSemesterShown int `json:"max_semester_shown"`

	// GeneratedAt is the decision time.
	GeneratedAt time.Time `json:"generated_at"`
}

// RecommendationCache caches recommendation results per (student, plan).
// Implemented by the redis layer; nil disables caching.
type RecommendationCache interface {
	// Get returns a cached result, or a not-found error.
	Get(ctx context.Context, studentID shared.StudentID, planID shared.PlanID) (*RecommendResult, error)

	// Set stores a result.
	Set(ctx context.Context, studentID shared.StudentID, planID shared.PlanID, result *RecommendResult) error

	// InvalidateStudent drops every cached result for a student.
	InvalidateStudent(ctx context.Context, studentID shared.StudentID) error
}

// RecommendHandler produces ranked course recommendations.
type RecommendHandler struct {
	env         *Environment
	planRepo    plan.Repository
	programRepo program.Repository
	cache       RecommendationCache
}

// NewRecommendHandler creates a new handler. cache may be nil.
func NewRecommendHandler(env *Environment, planRepo plan.Repository, programRepo program.Repository, cache RecommendationCache) *RecommendHandler {
	return &RecommendHandler{env: env, planRepo: planRepo, programRepo: programRepo, cache: cache}
}

// Handle runs the recommendation pipeline: filter the program roster down to
// eligible, standing-relevant candidates, then order them by canonical
// program sequence.
func (h *RecommendHandler) Handle(ctx context.Context, q RecommendQuery) (*RecommendResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, q.StudentID, q.PlanID); err == nil && cached != nil {
			return cached, nil
		}
	}

	// Planning cannot proceed without a primary program, but that is the
	// student's situation, not a caller error: empty list.
	prog, err := h.programRepo.GetPrimaryProgram(ctx, q.StudentID)
	if err != nil {
		if shared.IsNotFound(err) {
			return &RecommendResult{
				RequestID:        uuid.NewString(),
				Courses:          []RecommendedCourseDTO{},
				SemesterStanding: 1,
				MaxSemesterShown: 2,
				GeneratedAt:      time.Now().UTC(),
			}, nil
		}
		return nil, shared.WrapError("query", "Recommend", shared.ErrStoreUnavailable,
			"cannot load primary program", err)
	}

	index, evaluator, err := h.env.Load(ctx)
	if err != nil {
		return nil, err
	}

	completions, err := h.planRepo.ListPassingCompletions(ctx, q.StudentID)
	if err != nil {
		return nil, shared.WrapError("query", "Recommend", shared.ErrStoreUnavailable,
			"cannot load completions", err)
	}
	entries, err := h.planRepo.ListPlannedEntries(ctx, q.PlanID)
	if err != nil {
		return nil, shared.WrapError("query", "Recommend", shared.ErrStoreUnavailable,
			"cannot load planned entries", err)
	}
	roster, err := h.programRepo.ListEligibleCourses(ctx, prog.ID)
	if err != nil {
		return nil, shared.WrapError("query", "Recommend", shared.ErrStoreUnavailable,
			"cannot load program roster", err)
	}

	completed := plan.PassingKeys(completions)
	planned := plan.PlannedKeys(entries)
	blocked := completed.Union(planned)

	plannedIDs := make(map[shared.CourseID]struct{}, len(entries))
	for _, e := range entries {
		if e.CourseID.IsValid() {
			plannedIDs[e.CourseID] = struct{}{}
		}
	}

	standing := shared.StandingFromCredits(plan.EarnedCredits(completions))
	maxSemester := standing.MaxSemesterToShow()

	resolver := evaluator.Resolver()
	type ranked struct {
		course   catalog.Course
		semester int
		inSeq    bool
		pos      int
		num      int
	}
	var candidates []ranked

	for _, c := range roster {
		if completed.Contains(c.Key) || planned.Contains(c.Key) {
			continue
		}
		if _, ok := plannedIDs[c.ID]; ok {
			continue
		}

		semester := h.env.Sequence.SemesterFor(c.Key)
		if semester > maxSemester {
			continue
		}

		eligible, err := evaluator.IsEligible(c.ID, completed)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}

		// Equivalence guard: a course already satisfied under a
		// different number, completed or planned, is never recommended.
		if resolver.IsSatisfiedBy(c.Key, blocked) {
			continue
		}

		r := ranked{course: c, semester: semester}
		if pos, ok := h.env.Sequence.Position(c.Key); ok {
			r.inSeq = true
			r.pos = pos
		} else if n, ok := c.Key.LeadingNumber(); ok {
			r.num = n
		} else {
			r.num = 999
		}
		candidates = append(candidates, r)
	}

	seqLen := h.env.Sequence.Len()
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ra, rb := a.pos, b.pos
		if !a.inSeq {
			ra = seqLen + a.num
		}
		if !b.inSeq {
			rb = seqLen + b.num
		}
		if ra != rb {
			return ra < rb
		}
		if a.course.Key.Subject != b.course.Key.Subject {
			return a.course.Key.Subject < b.course.Key.Subject
		}
		return a.course.Key.CatalogNumber < b.course.Key.CatalogNumber
	})

	if len(candidates) > q.MaxResults {
		candidates = candidates[:q.MaxResults]
	}

	result := &RecommendResult{
		RequestID:        uuid.NewString(),
		Courses:          make([]RecommendedCourseDTO, 0, len(candidates)),
		SemesterStanding: int(standing),
		MaxSemesterShown: maxSemester,
		GeneratedAt:      time.Now().UTC(),
	}
	for _, r := range candidates {
		result.Courses = append(result.Courses, RecommendedCourseDTO{
			CourseID:    r.course.ID.Int64(),
			Code:        r.course.Key.String(),
			Title:       r.course.Title,
			CreditHours: r.course.CreditHours.Int(),
			Semester:    r.semester,
		})
	}

	h.env.Logger.Debug("recommendation computed",
		logger.StudentID(q.StudentID.Int64()),
		logger.PlanID(q.PlanID.Int64()),
		logger.Int("candidates", len(result.Courses)),
		logger.Int("catalog_size", index.Len()))

	if h.cache != nil {
		if err := h.cache.Set(ctx, q.StudentID, q.PlanID, result); err != nil {
			h.env.Logger.Warn("recommendation cache write failed", logger.Err(err))
		}
	}

	return result, nil
}
