package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ── test doubles ─────────────────────────────────────────────────────────────

// fakeSnapshot serves a fixed catalog.
type fakeSnapshot struct {
	courses []catalog.Course
	edges   []catalog.PrerequisiteEdge
}

func (f *fakeSnapshot) LoadSnapshot(ctx context.Context) ([]catalog.Course, []catalog.PrerequisiteEdge, error) {
	return f.courses, f.edges, nil
}

// fakePlanRepo serves canned completions and planned entries.
type fakePlanRepo struct {
	plan.Repository // unimplemented methods panic if reached

	plans       map[shared.PlanID]*plan.DegreePlan
	entries     map[shared.PlanID][]plan.PlannedEntry
	completions map[shared.StudentID][]plan.CompletionRecord
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:       make(map[shared.PlanID]*plan.DegreePlan),
		entries:     make(map[shared.PlanID][]plan.PlannedEntry),
		completions: make(map[shared.StudentID][]plan.CompletionRecord),
	}
}

func (f *fakePlanRepo) GetPlan(ctx context.Context, id shared.PlanID) (*plan.DegreePlan, error) {
	if p, ok := f.plans[id]; ok {
		return p, nil
	}
	return nil, shared.ErrPlanNotFound
}

func (f *fakePlanRepo) ListPlannedEntries(ctx context.Context, planID shared.PlanID) ([]plan.PlannedEntry, error) {
	return f.entries[planID], nil
}

func (f *fakePlanRepo) ListPassingCompletions(ctx context.Context, studentID shared.StudentID) ([]plan.CompletionRecord, error) {
	var out []plan.CompletionRecord
	for _, r := range f.completions[studentID] {
		if r.IsPassing() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) ListCompletions(ctx context.Context, studentID shared.StudentID) ([]plan.CompletionRecord, error) {
	return f.completions[studentID], nil
}

// fakeProgramRepo serves one primary program and its roster.
type fakeProgramRepo struct {
	program.Repository

	primary *program.Program
	roster  []catalog.Course
}

func (f *fakeProgramRepo) GetPrimaryProgram(ctx context.Context, studentID shared.StudentID) (*program.Program, error) {
	if f.primary == nil {
		return nil, shared.ErrNoPrimaryMajor
	}
	return f.primary, nil
}

func (f *fakeProgramRepo) ListEligibleCourses(ctx context.Context, id shared.ProgramID) ([]catalog.Course, error) {
	return f.roster, nil
}

// fakeScheduleRepo serves fixed meetings per plan and per student.
type fakeScheduleRepo struct {
	schedule.Repository

	meetings map[shared.PlanID][]schedule.Meeting
	enrolled map[shared.StudentID][]schedule.Meeting
}

func (f *fakeScheduleRepo) ListMeetingsForPlan(ctx context.Context, planID shared.PlanID) ([]schedule.Meeting, error) {
	return f.meetings[planID], nil
}

func (f *fakeScheduleRepo) ListEnrolledMeetings(ctx context.Context, studentID shared.StudentID) ([]schedule.Meeting, error) {
	return f.enrolled[studentID], nil
}

// fakeRecommendationCache records traffic.
type fakeRecommendationCache struct {
	stored      map[string]*RecommendResult
	invalidated []shared.StudentID
}

func newFakeRecommendationCache() *fakeRecommendationCache {
	return &fakeRecommendationCache{stored: make(map[string]*RecommendResult)}
}

func cacheKey(studentID shared.StudentID, planID shared.PlanID) string {
	return studentID.String() + "/" + planID.String()
}

func (f *fakeRecommendationCache) Get(ctx context.Context, studentID shared.StudentID, planID shared.PlanID) (*RecommendResult, error) {
	if r, ok := f.stored[cacheKey(studentID, planID)]; ok {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRecommendationCache) Set(ctx context.Context, studentID shared.StudentID, planID shared.PlanID, result *RecommendResult) error {
	f.stored[cacheKey(studentID, planID)] = result
	return nil
}

func (f *fakeRecommendationCache) InvalidateStudent(ctx context.Context, studentID shared.StudentID) error {
	f.invalidated = append(f.invalidated, studentID)
	return nil
}

// ── fixture ──────────────────────────────────────────────────────────────────

// Stock catalog slice used across the decision tests. Prerequisites:
// CMPSC 132 needs CMPSC 131; CMPSC 360 needs CMPSC 132; CMPSC 465 needs
// CMPSC 360.
func testCatalog() ([]catalog.Course, []catalog.PrerequisiteEdge) {
	course := func(id int64, subject, num, title string, credits int) catalog.Course {
		return catalog.Course{
			ID:          shared.CourseID(id),
			Key:         catalog.NewCourseKey(subject, num),
			Title:       title,
			CreditHours: shared.CreditHours(credits),
		}
	}
	courses := []catalog.Course{
		course(1, "CMPSC", "131", "Programming Fundamentals", 3),
		course(2, "CMPSC", "132", "Programming and Computation II", 3),
		course(3, "MATH", "140", "Calculus I", 4),
		course(4, "CMPSC", "360", "Discrete Mathematics", 3),
		course(5, "CMPSC", "465", "Data Structures and Algorithms", 3),
		course(6, "CMPSC", "121", "Intro Programming Techniques", 3),
	}
	edges := []catalog.PrerequisiteEdge{
		{CourseID: 2, PrereqCourseID: 1},
		{CourseID: 4, PrereqCourseID: 2},
		{CourseID: 5, PrereqCourseID: 4},
	}
	return courses, edges
}

func testEnv(t *testing.T, courses []catalog.Course, edges []catalog.PrerequisiteEdge) *Environment {
	t.Helper()
	env, err := NewEnvironment(&fakeSnapshot{courses: courses, edges: edges}, nil, nil, nil)
	require.NoError(t, err)
	return env
}

func completion(studentID int64, subject, num string, credits int, grade shared.Grade) plan.CompletionRecord {
	return plan.CompletionRecord{
		StudentID:   shared.StudentID(studentID),
		Key:         catalog.NewCourseKey(subject, num),
		Grade:       grade,
		CreditHours: shared.CreditHours(credits),
	}
}
