// Package sqlite implements an embedded store for single-binary and
// development use. It carries the same schema and repository behavior as the
// postgres package, minus a server to run.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
	"github.com/nittany-hub/course-planner/pkg/timeutil"
)

// historyClassNum marks synthetic sections behind hand-recorded completions.
const historyClassNum = "HIST"

// Store is the embedded store. One Store value implements every repository
// interface the application layer consumes.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and ensures the schema exists.
// Pass ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}
	// A single writer avoids SQLITE_BUSY churn under concurrent handlers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite: schema bootstrap failed: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		course_id      INTEGER PRIMARY KEY,
		subject        TEXT NOT NULL,
		catalog_number TEXT NOT NULL,
		title          TEXT NOT NULL DEFAULT '',
		credit_hours   INTEGER NOT NULL DEFAULT 3,
		UNIQUE (subject, catalog_number)
	)`,
	`CREATE TABLE IF NOT EXISTS course_prereqs (
		course_id        INTEGER NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		prereq_course_id INTEGER NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		min_grade        TEXT,
		PRIMARY KEY (course_id, prereq_course_id)
	)`,
	`CREATE TABLE IF NOT EXISTS programs (
		program_id      INTEGER PRIMARY KEY,
		name            TEXT NOT NULL,
		program_type    TEXT NOT NULL DEFAULT 'major',
		catalog_year_id INTEGER NOT NULL DEFAULT 1,
		UNIQUE (name, program_type)
	)`,
	`CREATE TABLE IF NOT EXISTS program_courses (
		program_id INTEGER NOT NULL REFERENCES programs(program_id) ON DELETE CASCADE,
		course_id  INTEGER NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		PRIMARY KEY (program_id, course_id)
	)`,
	`CREATE TABLE IF NOT EXISTS advisors (
		advisor_id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS terms (
		term_id    INTEGER PRIMARY KEY,
		code       TEXT NOT NULL UNIQUE,
		start_date TEXT,
		end_date   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		student_id         INTEGER PRIMARY KEY,
		login_id           TEXT NOT NULL UNIQUE,
		first_name         TEXT NOT NULL DEFAULT '',
		last_name          TEXT NOT NULL DEFAULT '',
		email              TEXT NOT NULL DEFAULT '',
		expected_grad_term INTEGER,
		catalog_year_id    INTEGER NOT NULL DEFAULT 1,
		advisor_id         INTEGER,
		created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS student_programs (
		student_id INTEGER NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
		program_id INTEGER NOT NULL REFERENCES programs(program_id) ON DELETE CASCADE,
		is_primary INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (student_id, program_id)
	)`,
	`CREATE TABLE IF NOT EXISTS degree_plans (
		plan_id          INTEGER PRIMARY KEY,
		student_id       INTEGER NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
		catalog_year_id  INTEGER NOT NULL DEFAULT 1,
		target_grad_term INTEGER,
		created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sections (
		section_id INTEGER PRIMARY KEY,
		course_id  INTEGER NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		term_id    INTEGER,
		class_num  TEXT NOT NULL DEFAULT '',
		campus     TEXT NOT NULL DEFAULT '',
		capacity   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		meeting_id   INTEGER PRIMARY KEY,
		section_id   INTEGER NOT NULL REFERENCES sections(section_id) ON DELETE CASCADE,
		days_of_week TEXT NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		location     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS planned_courses (
		planned_id INTEGER PRIMARY KEY,
		plan_id    INTEGER NOT NULL REFERENCES degree_plans(plan_id) ON DELETE CASCADE,
		term_id    INTEGER NOT NULL,
		course_id  INTEGER REFERENCES courses(course_id),
		section_id INTEGER REFERENCES sections(section_id),
		CHECK ((course_id IS NULL) <> (section_id IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
		enrollment_id INTEGER PRIMARY KEY,
		student_id    INTEGER NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
		section_id    INTEGER NOT NULL REFERENCES sections(section_id) ON DELETE CASCADE,
		grade         TEXT,
		status        TEXT NOT NULL DEFAULT 'enrolled',
		UNIQUE (student_id, section_id)
	)`,
}

// ─────────────────────────────────────────────────────────────────────────────
// catalog.Repository / catalog.SnapshotSource
// ─────────────────────────────────────────────────────────────────────────────

const courseColumns = "course_id, subject, catalog_number, title, credit_hours"

// GetCourse returns a course by surrogate id.
func (s *Store) GetCourse(ctx context.Context, id shared.CourseID) (*catalog.Course, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE course_id = ?", id.Int64())
	return scanCourse(row)
}

// GetCourseByKey returns a course by its natural key.
func (s *Store) GetCourseByKey(ctx context.Context, key catalog.CourseKey) (*catalog.Course, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE subject = ? AND catalog_number = ?",
		key.Subject, key.CatalogNumber)
	return scanCourse(row)
}

// ListCourses returns the full catalog.
func (s *Store) ListCourses(ctx context.Context) ([]catalog.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+courseColumns+" FROM courses ORDER BY subject, catalog_number")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListPrerequisites returns all prerequisite edges.
func (s *Store) ListPrerequisites(ctx context.Context) ([]catalog.PrerequisiteEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT course_id, prereq_course_id, min_grade FROM course_prereqs ORDER BY course_id, prereq_course_id")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list prerequisites: %w", err)
	}
	defer rows.Close()
	return collectEdges(rows)
}

// ListPrerequisitesOf returns the prerequisite edges for one course.
func (s *Store) ListPrerequisitesOf(ctx context.Context, id shared.CourseID) ([]catalog.PrerequisiteEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT course_id, prereq_course_id, min_grade FROM course_prereqs WHERE course_id = ? ORDER BY prereq_course_id",
		id.Int64())
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list prerequisites: %w", err)
	}
	defer rows.Close()
	return collectEdges(rows)
}

// SearchCourses finds courses matching a free-text query.
func (s *Store) SearchCourses(ctx context.Context, query, subject string, level, limit int) ([]catalog.Course, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		conds []string
		args  []interface{}
	)

	q := strings.TrimSpace(query)
	if key, err := catalog.ParseCourseKey(q); err == nil && q != "" {
		conds = append(conds, "(subject = ? AND catalog_number LIKE ?)")
		args = append(args, key.Subject, key.CatalogNumber+"%")
	} else if q != "" {
		like := "%" + strings.ToUpper(q) + "%"
		conds = append(conds, "(UPPER(subject) LIKE ? OR UPPER(title) LIKE ? OR UPPER(catalog_number) LIKE ?)")
		args = append(args, like, like, like)
	}
	if subject != "" {
		conds = append(conds, "subject = ?")
		args = append(args, strings.ToUpper(strings.TrimSpace(subject)))
	}
	if level > 0 {
		conds = append(conds, "catalog_number LIKE ?")
		args = append(args, strconv.Itoa(level/100)+"%")
	}

	sqlText := "SELECT " + courseColumns + " FROM courses"
	if len(conds) > 0 {
		sqlText += " WHERE " + strings.Join(conds, " AND ")
	}
	sqlText += " ORDER BY subject, catalog_number LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to search courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListSubjects returns the distinct subject codes, sorted.
func (s *Store) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT subject FROM courses ORDER BY subject")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subj string
		if err := rows.Scan(&subj); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan subject: %w", err)
		}
		subjects = append(subjects, subj)
	}
	return subjects, rows.Err()
}

// SaveCourse upserts a catalog row by natural key, writing the assigned id
// back for new courses.
func (s *Store) SaveCourse(ctx context.Context, c *catalog.Course) error {
	if !c.Key.IsValid() {
		return shared.ErrInvalidCourseKey
	}
	if !c.CreditHours.IsValid() {
		return shared.WrapError("sqlite", "SaveCourse", shared.ErrNegativeValue,
			fmt.Sprintf("course %s has negative credit hours", c.Key), nil)
	}

	existing, err := s.GetCourseByKey(ctx, c.Key)
	switch {
	case err == nil:
		c.ID = existing.ID
		_, err = s.db.ExecContext(ctx,
			"UPDATE courses SET title = ?, credit_hours = ? WHERE course_id = ?",
			c.Title, c.CreditHours.Int(), c.ID.Int64())
		if err != nil {
			return fmt.Errorf("sqlite: failed to update course: %w", err)
		}
		return nil

	case shared.IsNotFound(err):
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO courses (subject, catalog_number, title, credit_hours) VALUES (?, ?, ?, ?)",
			c.Key.Subject, c.Key.CatalogNumber, c.Title, c.CreditHours.Int())
		if err != nil {
			return fmt.Errorf("sqlite: failed to insert course: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: failed to read new course id: %w", err)
		}
		c.ID = shared.CourseID(id)
		return nil

	default:
		return err
	}
}

// SavePrerequisite upserts a prerequisite edge.
func (s *Store) SavePrerequisite(ctx context.Context, e *catalog.PrerequisiteEdge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	var minGrade interface{}
	if e.MinGrade != "" {
		minGrade = string(e.MinGrade)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO course_prereqs (course_id, prereq_course_id, min_grade)
		VALUES (?, ?, ?)
		ON CONFLICT (course_id, prereq_course_id) DO UPDATE SET min_grade = excluded.min_grade
	`, e.CourseID.Int64(), e.PrereqCourseID.Int64(), minGrade)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save prerequisite: %w", err)
	}
	return nil
}

// LoadSnapshot implements catalog.SnapshotSource with a single read
// transaction over courses and edges.
func (s *Store) LoadSnapshot(ctx context.Context) ([]catalog.Course, []catalog.PrerequisiteEdge, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: failed to begin snapshot read: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT "+courseColumns+" FROM courses ORDER BY course_id")
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: failed to read courses: %w", err)
	}
	courses, err := collectCourses(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	rows, err = tx.QueryContext(ctx,
		"SELECT course_id, prereq_course_id, min_grade FROM course_prereqs ORDER BY course_id, prereq_course_id")
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: failed to read prerequisites: %w", err)
	}
	edges, err := collectEdges(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	return courses, edges, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// student.Repository
// ─────────────────────────────────────────────────────────────────────────────

const studentColumns = `student_id, login_id, first_name, last_name, email,
	COALESCE(expected_grad_term, 0), catalog_year_id, COALESCE(advisor_id, 0), created_at`

// GetByID returns a student by internal id.
func (s *Store) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE student_id = ?", id.Int64())
	return scanStudent(row)
}

// GetByLogin returns a student by institutional login.
func (s *Store) GetByLogin(ctx context.Context, login student.LoginID) (*student.Student, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE login_id = ?", login.Normalize().String())
	return scanStudent(row)
}

// Create inserts a student record and writes the assigned id back.
func (s *Store) Create(ctx context.Context, st *student.Student) error {
	if !st.LoginID.IsValid() {
		return shared.WrapError("sqlite", "CreateStudent", shared.ErrInvalidInput,
			"login id is malformed", nil)
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO students (login_id, first_name, last_name, email, catalog_year_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, st.LoginID.Normalize().String(), st.FirstName, st.LastName, st.Email, st.CatalogYearID, st.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.WrapError("sqlite", "CreateStudent", shared.ErrAlreadyExists,
				"login id is already registered", err)
		}
		return fmt.Errorf("sqlite: failed to create student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read new student id: %w", err)
	}
	st.ID = shared.StudentID(id)
	return nil
}

// ListAdvisors returns all advisors, ordered by last then first name.
func (s *Store) ListAdvisors(ctx context.Context) ([]student.Advisor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT advisor_id, first_name, last_name, email FROM advisors ORDER BY last_name, first_name")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list advisors: %w", err)
	}
	defer rows.Close()

	var advisors []student.Advisor
	for rows.Next() {
		var a student.Advisor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan advisor: %w", err)
		}
		advisors = append(advisors, a)
	}
	return advisors, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// program.Repository
// ─────────────────────────────────────────────────────────────────────────────

const programColumns = "program_id, name, program_type, catalog_year_id"

// GetProgram returns a program by id.
func (s *Store) GetProgram(ctx context.Context, id shared.ProgramID) (*program.Program, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+programColumns+" FROM programs WHERE program_id = ?", int64(id))
	return scanProgram(row)
}

// ListPrograms returns all programs, ordered by name.
func (s *Store) ListPrograms(ctx context.Context) ([]program.Program, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+programColumns+" FROM programs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list programs: %w", err)
	}
	defer rows.Close()

	var programs []program.Program
	for rows.Next() {
		var (
			p     program.Program
			id    int64
			ptype string
		)
		if err := rows.Scan(&id, &p.Name, &ptype, &p.CatalogYearID); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan program: %w", err)
		}
		p.ID = shared.ProgramID(id)
		p.Type = program.Type(ptype)
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// GetPrimaryProgram returns the student's primary program.
func (s *Store) GetPrimaryProgram(ctx context.Context, studentID shared.StudentID) (*program.Program, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT p.program_id, p.name, p.program_type, p.catalog_year_id
		FROM programs p
		JOIN student_programs sp ON sp.program_id = p.program_id
		WHERE sp.student_id = ? AND sp.is_primary = 1
	`, studentID.Int64())

	p, err := scanProgram(row)
	if shared.IsNotFound(err) {
		return nil, shared.ErrNoPrimaryMajor
	}
	return p, err
}

// SetPrimaryProgram makes programID the student's primary program.
func (s *Store) SetPrimaryProgram(ctx context.Context, studentID shared.StudentID, programID shared.ProgramID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE student_programs SET is_primary = 0 WHERE student_id = ? AND is_primary = 1",
			studentID.Int64()); err != nil {
			return fmt.Errorf("sqlite: failed to clear primary program: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO student_programs (student_id, program_id, is_primary)
			VALUES (?, ?, 1)
			ON CONFLICT (student_id, program_id) DO UPDATE SET is_primary = 1
		`, studentID.Int64(), int64(programID))
		if err != nil {
			if isForeignKeyViolation(err) {
				return shared.ErrProgramNotFound
			}
			return fmt.Errorf("sqlite: failed to set primary program: %w", err)
		}
		return nil
	})
}

// ListEligibleCourses returns the program's full eligible-course roster.
func (s *Store) ListEligibleCourses(ctx context.Context, id shared.ProgramID) ([]catalog.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.course_id, c.subject, c.catalog_number, c.title, c.credit_hours
		FROM courses c
		JOIN program_courses pc ON pc.course_id = c.course_id
		WHERE pc.program_id = ?
		ORDER BY c.subject, c.catalog_number
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list program courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

// SaveProgram upserts a program by (name, type) and writes the assigned id
// back.
func (s *Store) SaveProgram(ctx context.Context, p *program.Program) error {
	if p.Name == "" {
		return shared.WrapError("sqlite", "SaveProgram", shared.ErrInvalidInput,
			"program name must not be empty", nil)
	}
	if p.Type == "" {
		p.Type = program.TypeMajor
	}
	if p.CatalogYearID == 0 {
		p.CatalogYearID = 1
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT program_id FROM programs WHERE name = ? AND program_type = ?",
		p.Name, string(p.Type)).Scan(&id)
	switch {
	case err == nil:
		p.ID = shared.ProgramID(id)
		_, err = s.db.ExecContext(ctx,
			"UPDATE programs SET catalog_year_id = ? WHERE program_id = ?",
			p.CatalogYearID, id)
		if err != nil {
			return fmt.Errorf("sqlite: failed to update program: %w", err)
		}
		return nil

	case errors.Is(err, sql.ErrNoRows):
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO programs (name, program_type, catalog_year_id) VALUES (?, ?, ?)",
			p.Name, string(p.Type), p.CatalogYearID)
		if err != nil {
			return fmt.Errorf("sqlite: failed to insert program: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: failed to read new program id: %w", err)
		}
		p.ID = shared.ProgramID(id)
		return nil

	default:
		return fmt.Errorf("sqlite: failed to look up program: %w", err)
	}
}

// AddEligibleCourse attaches a course to a program's roster.
func (s *Store) AddEligibleCourse(ctx context.Context, programID shared.ProgramID, courseID shared.CourseID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO program_courses (program_id, course_id)
		VALUES (?, ?)
		ON CONFLICT (program_id, course_id) DO NOTHING
	`, int64(programID), courseID.Int64())
	if err != nil {
		if isForeignKeyViolation(err) {
			return shared.ErrProgramNotFound
		}
		return fmt.Errorf("sqlite: failed to add program course: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row rowScanner) (*catalog.Course, error) {
	var (
		c           catalog.Course
		id          int64
		creditHours int
	)
	err := row.Scan(&id, &c.Key.Subject, &c.Key.CatalogNumber, &c.Title, &creditHours)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("sqlite: failed to scan course: %w", err)
	}
	c.ID = shared.CourseID(id)
	c.CreditHours = shared.CreditHours(creditHours)
	return &c, nil
}

func collectCourses(rows *sql.Rows) ([]catalog.Course, error) {
	var courses []catalog.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func collectEdges(rows *sql.Rows) ([]catalog.PrerequisiteEdge, error) {
	var edges []catalog.PrerequisiteEdge
	for rows.Next() {
		var (
			e                  catalog.PrerequisiteEdge
			courseID, prereqID int64
			minGrade           sql.NullString
		)
		if err := rows.Scan(&courseID, &prereqID, &minGrade); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan prerequisite: %w", err)
		}
		e.CourseID = shared.CourseID(courseID)
		e.PrereqCourseID = shared.CourseID(prereqID)
		if minGrade.Valid {
			e.MinGrade = shared.Grade(minGrade.String)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func scanStudent(row rowScanner) (*student.Student, error) {
	var (
		st           student.Student
		id           int64
		login        string
		expectedTerm int64
	)
	err := row.Scan(&id, &login, &st.FirstName, &st.LastName, &st.Email,
		&expectedTerm, &st.CatalogYearID, &st.AdvisorID, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("sqlite: failed to scan student: %w", err)
	}
	st.ID = shared.StudentID(id)
	st.LoginID = student.LoginID(login)
	st.ExpectedGradTerm = shared.TermID(expectedTerm)
	return &st, nil
}

func scanProgram(row rowScanner) (*program.Program, error) {
	var (
		p     program.Program
		id    int64
		ptype string
	)
	err := row.Scan(&id, &p.Name, &ptype, &p.CatalogYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrProgramNotFound
		}
		return nil, fmt.Errorf("sqlite: failed to scan program: %w", err)
	}
	p.ID = shared.ProgramID(id)
	p.Type = program.Type(ptype)
	return &p, nil
}

func collectMeetings(rows *sql.Rows) ([]schedule.Meeting, error) {
	var meetings []schedule.Meeting
	for rows.Next() {
		var (
			m          schedule.Meeting
			sid        int64
			days       string
			start, end string
		)
		if err := rows.Scan(&sid, &days, &start, &end, &m.Location,
			&m.CourseKey.Subject, &m.CourseKey.CatalogNumber, &m.Title); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan meeting: %w", err)
		}
		m.SectionID = shared.SectionID(sid)

		var err error
		if m.Days, err = timeutil.ParseDays(days); err != nil {
			return nil, fmt.Errorf("sqlite: meeting for section %d has malformed days %q: %w", sid, days, err)
		}
		if m.Start, err = timeutil.ParseClock(start); err != nil {
			return nil, fmt.Errorf("sqlite: meeting for section %d has malformed start %q: %w", sid, start, err)
		}
		if m.End, err = timeutil.ParseClock(end); err != nil {
			return nil, fmt.Errorf("sqlite: meeting for section %d has malformed end %q: %w", sid, end, err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}
