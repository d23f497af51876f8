// Package ingest imports catalog CSV exports into the store: courses,
// programs, program rosters, prerequisite edges, and the section schedule.
// Rows that cannot be resolved are logged and skipped; only malformed files
// abort an import.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/logger"
	"github.com/nittany-hub/course-planner/pkg/timeutil"
)

// Importer loads catalog CSV files through the repository layer, so the same
// importer works against both the postgres and the embedded store.
type Importer struct {
	catalogRepo  catalog.Repository
	programRepo  program.Repository
	scheduleRepo schedule.Repository
	log          *logger.Logger
}

// NewImporter creates an Importer.
func NewImporter(
	catalogRepo catalog.Repository,
	programRepo program.Repository,
	scheduleRepo schedule.Repository,
	log *logger.Logger,
) *Importer {
	if log == nil {
		log = logger.Default()
	}
	return &Importer{
		catalogRepo:  catalogRepo,
		programRepo:  programRepo,
		scheduleRepo: scheduleRepo,
		log:          log,
	}
}

// Summary counts what an import run touched.
type Summary struct {
	Courses       int
	Programs      int
	RosterEntries int
	Prereqs       int
	Sections      int
	SkippedRows   int
}

// ImportDir imports every recognized CSV file found in dir. Missing files are
// skipped; the expected names are courses.csv, programs.csv,
// major_courses.csv, prereqs.csv, and schedule.csv.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Summary, error) {
	sum := &Summary{}

	type step struct {
		name string
		fn   func(context.Context, io.Reader, *Summary) error
	}
	// Courses first so later files can resolve course keys.
	steps := []step{
		{"courses.csv", im.importCourses},
		{"programs.csv", im.importPrograms},
		{"major_courses.csv", im.importRoster},
		{"prereqs.csv", im.importPrereqs},
		{"schedule.csv", im.importSchedule},
	}

	for _, st := range steps {
		path := filepath.Join(dir, st.name)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				im.log.Info("import file not present, skipping", logger.String("file", st.name))
				continue
			}
			return nil, fmt.Errorf("ingest: failed to open %s: %w", path, err)
		}
		err = st.fn(ctx, f, sum)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// ImportCourses imports a courses file (subject, cata_num, title, credits).
func (im *Importer) ImportCourses(ctx context.Context, r io.Reader) (*Summary, error) {
	sum := &Summary{}
	return sum, im.importCourses(ctx, r, sum)
}

// ImportSchedule imports a schedule file (subject, cata_num, section_code,
// days_pattern, start_time, end_time, location).
func (im *Importer) ImportSchedule(ctx context.Context, r io.Reader) (*Summary, error) {
	sum := &Summary{}
	return sum, im.importSchedule(ctx, r, sum)
}

func (im *Importer) importCourses(ctx context.Context, r io.Reader, sum *Summary) error {
	rows, err := readRecords(r, "courses")
	if err != nil {
		return err
	}
	for _, row := range rows {
		key := catalog.NewCourseKey(row.get("subject"), row.get("cata_num"))
		if !key.IsValid() {
			im.skip(sum, "courses", row.line, "missing subject or catalog number")
			continue
		}
		credits, err := strconv.Atoi(strings.TrimSpace(row.get("credits")))
		if err != nil || credits < 0 {
			im.skip(sum, "courses", row.line, fmt.Sprintf("bad credits %q", row.get("credits")))
			continue
		}
		c := &catalog.Course{
			Key:         key,
			Title:       strings.TrimSpace(row.get("title")),
			CreditHours: shared.CreditHours(credits),
		}
		if err := im.catalogRepo.SaveCourse(ctx, c); err != nil {
			return fmt.Errorf("ingest: failed to save course %s: %w", key, err)
		}
		sum.Courses++
	}
	im.log.Info("imported courses", logger.Int("count", sum.Courses))
	return nil
}

func (im *Importer) importPrograms(ctx context.Context, r io.Reader, sum *Summary) error {
	rows, err := readRecords(r, "programs")
	if err != nil {
		return err
	}
	for _, row := range rows {
		name := strings.TrimSpace(row.get("name"))
		if name == "" {
			im.skip(sum, "programs", row.line, "missing program name")
			continue
		}
		p := &program.Program{
			Name: name,
			Type: program.Type(strings.TrimSpace(row.get("program_type"))),
		}
		if err := im.programRepo.SaveProgram(ctx, p); err != nil {
			return fmt.Errorf("ingest: failed to save program %s: %w", name, err)
		}
		sum.Programs++
	}
	im.log.Info("imported programs", logger.Int("count", sum.Programs))
	return nil
}

func (im *Importer) importRoster(ctx context.Context, r io.Reader, sum *Summary) error {
	rows, err := readRecords(r, "major_courses")
	if err != nil {
		return err
	}
	programs, err := im.programRepo.ListPrograms(ctx)
	if err != nil {
		return fmt.Errorf("ingest: failed to list programs: %w", err)
	}
	byName := make(map[string]shared.ProgramID, len(programs))
	for _, p := range programs {
		byName[strings.ToLower(p.Name)+"|"+strings.ToLower(string(p.Type))] = p.ID
	}

	for _, row := range rows {
		if eligible := row.get("eligible_course"); eligible != "" &&
			!strings.EqualFold(strings.TrimSpace(eligible), "true") {
			continue
		}
		progKey := strings.ToLower(strings.TrimSpace(row.get("program_name"))) + "|" +
			strings.ToLower(strings.TrimSpace(row.get("program_type")))
		progID, ok := byName[progKey]
		if !ok {
			im.skip(sum, "major_courses", row.line, "unknown program "+row.get("program_name"))
			continue
		}
		course, err := im.lookupCourse(ctx, row)
		if err != nil {
			im.skip(sum, "major_courses", row.line, err.Error())
			continue
		}
		if err := im.programRepo.AddEligibleCourse(ctx, progID, course.ID); err != nil {
			return fmt.Errorf("ingest: failed to add roster entry: %w", err)
		}
		sum.RosterEntries++
	}
	im.log.Info("imported program rosters", logger.Int("count", sum.RosterEntries))
	return nil
}

func (im *Importer) importPrereqs(ctx context.Context, r io.Reader, sum *Summary) error {
	rows, err := readRecords(r, "prereqs")
	if err != nil {
		return err
	}
	for _, row := range rows {
		course, err := im.lookupCourse(ctx, row)
		if err != nil {
			im.skip(sum, "prereqs", row.line, err.Error())
			continue
		}
		prereqKey := catalog.NewCourseKey(row.get("prereq_subject"), row.get("prereq_cata_num"))
		prereq, err := im.catalogRepo.GetCourseByKey(ctx, prereqKey)
		if err != nil {
			im.skip(sum, "prereqs", row.line, "unknown prerequisite "+prereqKey.String())
			continue
		}

		edge := &catalog.PrerequisiteEdge{
			CourseID:       course.ID,
			PrereqCourseID: prereq.ID,
		}
		if mg := shared.Grade(strings.TrimSpace(row.get("min_grade"))); mg != "" {
			if !mg.IsValid() {
				im.skip(sum, "prereqs", row.line, fmt.Sprintf("unknown min grade %q", mg))
				continue
			}
			edge.MinGrade = mg
		}
		if err := im.catalogRepo.SavePrerequisite(ctx, edge); err != nil {
			return fmt.Errorf("ingest: failed to save prerequisite %s -> %s: %w",
				course.Key, prereq.Key, err)
		}
		sum.Prereqs++
	}
	im.log.Info("imported prerequisites", logger.Int("count", sum.Prereqs))
	return nil
}

func (im *Importer) importSchedule(ctx context.Context, r io.Reader, sum *Summary) error {
	rows, err := readRecords(r, "schedule")
	if err != nil {
		return err
	}
	for _, row := range rows {
		course, err := im.lookupCourse(ctx, row)
		if err != nil {
			im.skip(sum, "schedule", row.line, err.Error())
			continue
		}

		days, err := timeutil.ParseDays(row.get("days_pattern"))
		if err != nil {
			im.skip(sum, "schedule", row.line, fmt.Sprintf("bad days pattern %q", row.get("days_pattern")))
			continue
		}
		start, err := timeutil.ParseClock(row.get("start_time"))
		if err != nil {
			im.skip(sum, "schedule", row.line, fmt.Sprintf("bad start time %q", row.get("start_time")))
			continue
		}
		end, err := timeutil.ParseClock(row.get("end_time"))
		if err != nil {
			im.skip(sum, "schedule", row.line, fmt.Sprintf("bad end time %q", row.get("end_time")))
			continue
		}

		sec := &schedule.Section{
			CourseID: course.ID,
			ClassNum: strings.TrimSpace(row.get("section_code")),
		}
		if termRaw := strings.TrimSpace(row.get("term_id")); termRaw != "" {
			if termID, err := strconv.ParseInt(termRaw, 10, 64); err == nil {
				sec.TermID = shared.TermID(termID)
			}
		}
		if err := im.scheduleRepo.SaveSection(ctx, sec); err != nil {
			return fmt.Errorf("ingest: failed to save section for %s: %w", course.Key, err)
		}

		m := &schedule.Meeting{
			SectionID: sec.ID,
			Days:      days,
			Start:     start,
			End:       end,
			Location:  strings.TrimSpace(row.get("location")),
		}
		if err := im.scheduleRepo.SaveMeeting(ctx, m); err != nil {
			return fmt.Errorf("ingest: failed to save meeting for %s: %w", course.Key, err)
		}
		sum.Sections++
	}
	im.log.Info("imported schedule", logger.Int("sections", sum.Sections))
	return nil
}

func (im *Importer) lookupCourse(ctx context.Context, row record) (*catalog.Course, error) {
	key := catalog.NewCourseKey(row.get("subject"), row.get("cata_num"))
	if !key.IsValid() {
		return nil, fmt.Errorf("missing subject or catalog number")
	}
	course, err := im.catalogRepo.GetCourseByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("unknown course %s", key)
	}
	return course, nil
}

func (im *Importer) skip(sum *Summary, file string, line int, reason string) {
	sum.SkippedRows++
	im.log.Warn("skipping import row",
		logger.String("file", file),
		logger.Int("line", line),
		logger.String("reason", reason))
}

// record is one CSV row indexed by lower-cased header name.
type record struct {
	line   int
	fields map[string]string
}

func (r record) get(name string) string {
	return r.fields[name]
}

func readRecords(r io.Reader, file string) ([]record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("ingest: failed to read %s header: %w", file, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var records []record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ingest: malformed row in %s at line %d: %w", file, line, err)
		}
		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				fields[h] = row[i]
			}
		}
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}
