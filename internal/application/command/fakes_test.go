package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
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

// fakePlanRepo is an in-memory plan store that records writes.
type fakePlanRepo struct {
	plan.Repository // unimplemented methods panic if reached

	plans       map[shared.PlanID]*plan.DegreePlan
	entries     map[shared.PlanID][]plan.PlannedEntry
	completions map[shared.StudentID][]plan.CompletionRecord

	nextEntryID int64
	removed     []int64

	recorded      []plan.CompletionRecord
	gradeUpdates  map[int64]shared.Grade
	removedGrades []int64
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:        make(map[shared.PlanID]*plan.DegreePlan),
		entries:      make(map[shared.PlanID][]plan.PlannedEntry),
		completions:  make(map[shared.StudentID][]plan.CompletionRecord),
		nextEntryID:  100,
		gradeUpdates: make(map[int64]shared.Grade),
	}
}

func (f *fakePlanRepo) GetPlan(ctx context.Context, id shared.PlanID) (*plan.DegreePlan, error) {
	if p, ok := f.plans[id]; ok {
		return p, nil
	}
	return nil, shared.ErrPlanNotFound
}

func (f *fakePlanRepo) GetPlanForStudent(ctx context.Context, studentID shared.StudentID) (*plan.DegreePlan, error) {
	for _, p := range f.plans {
		if p.StudentID == studentID {
			return p, nil
		}
	}
	p := &plan.DegreePlan{ID: shared.PlanID(int64(len(f.plans)) + 1), StudentID: studentID}
	f.plans[p.ID] = p
	return p, nil
}

func (f *fakePlanRepo) ListPlannedEntries(ctx context.Context, planID shared.PlanID) ([]plan.PlannedEntry, error) {
	return f.entries[planID], nil
}

func (f *fakePlanRepo) AddPlannedEntry(ctx context.Context, entry *plan.PlannedEntry) (int64, error) {
	f.nextEntryID++
	e := *entry
	e.ID = f.nextEntryID
	f.entries[entry.PlanID] = append(f.entries[entry.PlanID], e)
	return e.ID, nil
}

func (f *fakePlanRepo) RemovePlannedEntry(ctx context.Context, entryID int64) error {
	f.removed = append(f.removed, entryID)
	for planID, entries := range f.entries {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID != entryID {
				kept = append(kept, e)
			}
		}
		f.entries[planID] = kept
	}
	return nil
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

func (f *fakePlanRepo) RecordCompletion(ctx context.Context, studentID shared.StudentID, courseID shared.CourseID, grade shared.Grade) error {
	r := plan.CompletionRecord{StudentID: studentID, CourseID: courseID, Grade: grade}
	f.recorded = append(f.recorded, r)
	return nil
}

func (f *fakePlanRepo) UpdateGrade(ctx context.Context, studentID shared.StudentID, enrollmentID int64, grade shared.Grade) error {
	f.gradeUpdates[enrollmentID] = grade
	return nil
}

func (f *fakePlanRepo) RemoveCompletion(ctx context.Context, studentID shared.StudentID, enrollmentID int64) error {
	f.removedGrades = append(f.removedGrades, enrollmentID)
	return nil
}

// fakeStudentRepo keys students by login.
type fakeStudentRepo struct {
	student.Repository

	byLogin map[student.LoginID]*student.Student
	byID    map[shared.StudentID]*student.Student
	nextID  int64
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{
		byLogin: make(map[student.LoginID]*student.Student),
		byID:    make(map[shared.StudentID]*student.Student),
		nextID:  500,
	}
}

func (f *fakeStudentRepo) add(s *student.Student) {
	f.byLogin[s.LoginID] = s
	f.byID[s.ID] = s
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, shared.ErrStudentNotFound
}

func (f *fakeStudentRepo) GetByLogin(ctx context.Context, login student.LoginID) (*student.Student, error) {
	if s, ok := f.byLogin[login]; ok {
		return s, nil
	}
	return nil, shared.ErrStudentNotFound
}

func (f *fakeStudentRepo) Create(ctx context.Context, s *student.Student) error {
	f.nextID++
	s.ID = shared.StudentID(f.nextID)
	f.add(s)
	return nil
}

// fakeProgramRepo records primary-program writes.
type fakeProgramRepo struct {
	program.Repository

	programs map[shared.ProgramID]*program.Program
	primary  map[shared.StudentID]shared.ProgramID
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{
		programs: make(map[shared.ProgramID]*program.Program),
		primary:  make(map[shared.StudentID]shared.ProgramID),
	}
}

func (f *fakeProgramRepo) GetProgram(ctx context.Context, id shared.ProgramID) (*program.Program, error) {
	if p, ok := f.programs[id]; ok {
		return p, nil
	}
	return nil, shared.ErrProgramNotFound
}

func (f *fakeProgramRepo) SetPrimaryProgram(ctx context.Context, studentID shared.StudentID, programID shared.ProgramID) error {
	f.primary[studentID] = programID
	return nil
}

// fakeScheduleRepo serves sections and meetings and records enrollments.
type fakeScheduleRepo struct {
	schedule.Repository

	sections map[shared.SectionID]*schedule.Section
	meetings map[shared.SectionID][]schedule.Meeting
	enrolled map[shared.StudentID][]schedule.Meeting

	enrollments []shared.SectionID
	drops       []shared.SectionID
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		sections: make(map[shared.SectionID]*schedule.Section),
		meetings: make(map[shared.SectionID][]schedule.Meeting),
		enrolled: make(map[shared.StudentID][]schedule.Meeting),
	}
}

func (f *fakeScheduleRepo) GetSection(ctx context.Context, id shared.SectionID) (*schedule.Section, error) {
	if s, ok := f.sections[id]; ok {
		return s, nil
	}
	return nil, shared.ErrSectionNotFound
}

func (f *fakeScheduleRepo) ListMeetingsForSection(ctx context.Context, sectionID shared.SectionID) ([]schedule.Meeting, error) {
	return f.meetings[sectionID], nil
}

func (f *fakeScheduleRepo) ListEnrolledMeetings(ctx context.Context, studentID shared.StudentID) ([]schedule.Meeting, error) {
	return f.enrolled[studentID], nil
}

func (f *fakeScheduleRepo) EnrollSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) (int64, error) {
	f.enrollments = append(f.enrollments, sectionID)
	return int64(len(f.enrollments)), nil
}

func (f *fakeScheduleRepo) DropSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) error {
	f.drops = append(f.drops, sectionID)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	events []shared.Event
}

func (f *fakePublisher) Publish(event shared.Event) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) types() []shared.EventType {
	out := make([]shared.EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType())
	}
	return out
}

// ── fixture ──────────────────────────────────────────────────────────────────

// Stock catalog: CMPSC 132 needs CMPSC 131.
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
		course(6, "CMPSC", "121", "Intro Programming Techniques", 3),
	}
	edges := []catalog.PrerequisiteEdge{
		{CourseID: 2, PrereqCourseID: 1},
	}
	return courses, edges
}

func testEnv(t *testing.T) *query.Environment {
	t.Helper()
	courses, edges := testCatalog()
	env, err := query.NewEnvironment(&fakeSnapshot{courses: courses, edges: edges}, nil, nil, nil)
	require.NoError(t, err)
	return env
}

func completion(studentID int64, subject, num string, grade shared.Grade) plan.CompletionRecord {
	return plan.CompletionRecord{
		StudentID:   shared.StudentID(studentID),
		Key:         catalog.NewCourseKey(subject, num),
		Grade:       grade,
		CreditHours: 3,
	}
}
