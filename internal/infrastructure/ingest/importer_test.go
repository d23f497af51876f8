package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ── test doubles ─────────────────────────────────────────────────────────────

type fakeCatalogRepo struct {
	catalog.Repository

	byKey  map[catalog.CourseKey]*catalog.Course
	edges  []catalog.PrerequisiteEdge
	nextID int64
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{byKey: make(map[catalog.CourseKey]*catalog.Course)}
}

func (f *fakeCatalogRepo) SaveCourse(ctx context.Context, c *catalog.Course) error {
	if existing, ok := f.byKey[c.Key]; ok {
		c.ID = existing.ID
	} else {
		f.nextID++
		c.ID = shared.CourseID(f.nextID)
	}
	f.byKey[c.Key] = c
	return nil
}

func (f *fakeCatalogRepo) GetCourseByKey(ctx context.Context, key catalog.CourseKey) (*catalog.Course, error) {
	if c, ok := f.byKey[key]; ok {
		return c, nil
	}
	return nil, shared.ErrCourseNotFound
}

func (f *fakeCatalogRepo) SavePrerequisite(ctx context.Context, e *catalog.PrerequisiteEdge) error {
	f.edges = append(f.edges, *e)
	return nil
}

type fakeProgramRepo struct {
	program.Repository

	programs []program.Program
	roster   map[shared.ProgramID][]shared.CourseID
	nextID   int64
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{roster: make(map[shared.ProgramID][]shared.CourseID)}
}

func (f *fakeProgramRepo) SaveProgram(ctx context.Context, p *program.Program) error {
	f.nextID++
	p.ID = shared.ProgramID(f.nextID)
	f.programs = append(f.programs, *p)
	return nil
}

func (f *fakeProgramRepo) ListPrograms(ctx context.Context) ([]program.Program, error) {
	return f.programs, nil
}

func (f *fakeProgramRepo) AddEligibleCourse(ctx context.Context, programID shared.ProgramID, courseID shared.CourseID) error {
	f.roster[programID] = append(f.roster[programID], courseID)
	return nil
}

type fakeScheduleRepo struct {
	schedule.Repository

	sections []schedule.Section
	meetings []schedule.Meeting
	nextID   int64
}

func (f *fakeScheduleRepo) SaveSection(ctx context.Context, s *schedule.Section) error {
	f.nextID++
	s.ID = shared.SectionID(f.nextID)
	f.sections = append(f.sections, *s)
	return nil
}

func (f *fakeScheduleRepo) SaveMeeting(ctx context.Context, m *schedule.Meeting) error {
	f.meetings = append(f.meetings, *m)
	return nil
}

// ── tests ────────────────────────────────────────────────────────────────────

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestImportDir_FullExport(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"courses.csv": "subject,cata_num,title,credits\n" +
			"CMPSC,131,Programming Fundamentals,3\n" +
			"CMPSC,132,Programming and Computation II,3\n" +
			"MATH,140,Calculus I,4\n",
		"programs.csv": "name,program_type\n" +
			"Computer Science,major\n",
		"major_courses.csv": "program_name,program_type,subject,cata_num,eligible_course\n" +
			"Computer Science,major,CMPSC,131,true\n" +
			"Computer Science,major,CMPSC,132,true\n",
		"prereqs.csv": "subject,cata_num,prereq_subject,prereq_cata_num,min_grade\n" +
			"CMPSC,132,CMPSC,131,C\n",
		"schedule.csv": "subject,cata_num,section_code,days_pattern,start_time,end_time,location\n" +
			"CMPSC,131,001,MWF,10:00,10:50,Westgate E202\n",
	})

	catalogRepo := newFakeCatalogRepo()
	programRepo := newFakeProgramRepo()
	scheduleRepo := &fakeScheduleRepo{}
	im := NewImporter(catalogRepo, programRepo, scheduleRepo, nil)

	sum, err := im.ImportDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Courses)
	assert.Equal(t, 1, sum.Programs)
	assert.Equal(t, 2, sum.RosterEntries)
	assert.Equal(t, 1, sum.Prereqs)
	assert.Equal(t, 1, sum.Sections)
	assert.Zero(t, sum.SkippedRows)

	require.Len(t, catalogRepo.edges, 1)
	assert.Equal(t, shared.GradeC, catalogRepo.edges[0].MinGrade)

	require.Len(t, scheduleRepo.meetings, 1)
	assert.Equal(t, "MWF", scheduleRepo.meetings[0].Days.String())
	assert.Equal(t, "Westgate E202", scheduleRepo.meetings[0].Location)
	assert.Equal(t, scheduleRepo.sections[0].ID, scheduleRepo.meetings[0].SectionID)
}

func TestImportDir_MissingFilesAreSkipped(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"courses.csv": "subject,cata_num,title,credits\nCMPSC,131,Programming Fundamentals,3\n",
	})
	im := NewImporter(newFakeCatalogRepo(), newFakeProgramRepo(), &fakeScheduleRepo{}, nil)

	sum, err := im.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Courses)
	assert.Zero(t, sum.Sections)
}

func TestImportCourses_BadRowsAreCountedNotFatal(t *testing.T) {
	im := NewImporter(newFakeCatalogRepo(), newFakeProgramRepo(), &fakeScheduleRepo{}, nil)

	input := "subject,cata_num,title,credits\n" +
		"CMPSC,131,Programming Fundamentals,3\n" +
		",465,Missing Subject,3\n" +
		"MATH,140,Calculus I,four\n"
	sum, err := im.ImportCourses(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Courses)
	assert.Equal(t, 2, sum.SkippedRows)
}

func TestImportSchedule_UnknownCourseSkipped(t *testing.T) {
	im := NewImporter(newFakeCatalogRepo(), newFakeProgramRepo(), &fakeScheduleRepo{}, nil)

	input := "subject,cata_num,section_code,days_pattern,start_time,end_time,location\n" +
		"CMPSC,131,001,MWF,10:00,10:50,\n"
	sum, err := im.ImportSchedule(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Zero(t, sum.Sections)
	assert.Equal(t, 1, sum.SkippedRows)
}

func TestImportSchedule_BadTimeSkipped(t *testing.T) {
	catalogRepo := newFakeCatalogRepo()
	require.NoError(t, catalogRepo.SaveCourse(context.Background(), &catalog.Course{
		Key: catalog.NewCourseKey("CMPSC", "131"), Title: "Programming Fundamentals", CreditHours: 3,
	}))
	im := NewImporter(catalogRepo, newFakeProgramRepo(), &fakeScheduleRepo{}, nil)

	input := "subject,cata_num,section_code,days_pattern,start_time,end_time,location\n" +
		"CMPSC,131,001,MWF,25:99,10:50,\n"
	sum, err := im.ImportSchedule(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Zero(t, sum.Sections)
	assert.Equal(t, 1, sum.SkippedRows)
}

func TestImportCourses_MalformedCSVAborts(t *testing.T) {
	im := NewImporter(newFakeCatalogRepo(), newFakeProgramRepo(), &fakeScheduleRepo{}, nil)

	input := "subject,cata_num,title,credits\n" +
		"CMPSC,131,\"unterminated,3\n"
	_, err := im.ImportCourses(context.Background(), strings.NewReader(input))
	require.Error(t, err)
}
