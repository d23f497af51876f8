package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CatalogRepository implements catalog.Repository and catalog.SnapshotSource
// for PostgreSQL.
type CatalogRepository struct {
	conn *Connection
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(conn *Connection) *CatalogRepository {
	return &CatalogRepository{conn: conn}
}

const courseColumns = "course_id, subject, catalog_number, title, credit_hours"

// GetCourse returns a course by surrogate id.
func (r *CatalogRepository) GetCourse(ctx context.Context, id shared.CourseID) (*catalog.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE course_id = $1", courseColumns)
	return r.scanCourse(r.conn.QueryRow(ctx, query, id.Int64()))
}

// GetCourseByKey returns a course by its natural key.
func (r *CatalogRepository) GetCourseByKey(ctx context.Context, key catalog.CourseKey) (*catalog.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE subject = $1 AND catalog_number = $2", courseColumns)
	return r.scanCourse(r.conn.QueryRow(ctx, query, key.Subject, key.CatalogNumber))
}

// ListCourses returns the full catalog.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]catalog.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses ORDER BY subject, catalog_number", courseColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	return r.collectCourses(rows)
}

// ListPrerequisites returns all prerequisite edges in the catalog.
func (r *CatalogRepository) ListPrerequisites(ctx context.Context) ([]catalog.PrerequisiteEdge, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT course_id, prereq_course_id, min_grade FROM course_prereqs ORDER BY course_id, prereq_course_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list prerequisites: %w", err)
	}
	defer rows.Close()

	return collectEdges(rows)
}

// ListPrerequisitesOf returns the prerequisite edges for one course.
func (r *CatalogRepository) ListPrerequisitesOf(ctx context.Context, id shared.CourseID) ([]catalog.PrerequisiteEdge, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT course_id, prereq_course_id, min_grade FROM course_prereqs WHERE course_id = $1 ORDER BY prereq_course_id",
		id.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list prerequisites: %w", err)
	}
	defer rows.Close()

	return collectEdges(rows)
}

// SearchCourses finds courses matching a free-text query. A "SUBJ 123"
// shaped query matches subject plus number prefix; anything else matches
// subject, title or catalog number substrings.
func (r *CatalogRepository) SearchCourses(ctx context.Context, query, subject string, level, limit int) ([]catalog.Course, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	q := strings.TrimSpace(query)
	if key, err := catalog.ParseCourseKey(q); err == nil && q != "" {
		conds = append(conds, fmt.Sprintf("(subject = %s AND catalog_number LIKE %s)",
			arg(key.Subject), arg(key.CatalogNumber+"%")))
	} else if q != "" {
		like := "%" + strings.ToUpper(q) + "%"
		conds = append(conds, fmt.Sprintf(
			"(UPPER(subject) LIKE %s OR UPPER(title) LIKE %s OR UPPER(catalog_number) LIKE %s)",
			arg(like), arg(like), arg(like)))
	}
	if subject != "" {
		conds = append(conds, "subject = "+arg(strings.ToUpper(strings.TrimSpace(subject))))
	}
	if level > 0 {
		prefix := strconv.Itoa(level / 100)
		conds = append(conds, "catalog_number LIKE "+arg(prefix+"%"))
	}

	sql := fmt.Sprintf("SELECT %s FROM courses", courseColumns)
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY subject, catalog_number LIMIT " + arg(limit)

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	defer rows.Close()

	return r.collectCourses(rows)
}

// ListSubjects returns the distinct subject codes, sorted.
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx, "SELECT DISTINCT subject FROM courses ORDER BY subject")
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// SaveCourse upserts a catalog row.
func (r *CatalogRepository) SaveCourse(ctx context.Context, c *catalog.Course) error {
	if !c.Key.IsValid() {
		return shared.ErrInvalidCourseKey
	}
	if !c.CreditHours.IsValid() {
		return shared.WrapError("postgres", "SaveCourse", shared.ErrNegativeValue,
			fmt.Sprintf("course %s has negative credit hours", c.Key), nil)
	}

	// The id column is identity-assigned; new courses come back with their
	// surrogate id so importers can wire prerequisite edges.
	query := `
		INSERT INTO courses (subject, catalog_number, title, credit_hours)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject, catalog_number) DO UPDATE
		SET title = EXCLUDED.title, credit_hours = EXCLUDED.credit_hours
		RETURNING course_id
	`
	var id int64
	err := r.conn.QueryRow(ctx, query,
		c.Key.Subject, c.Key.CatalogNumber, c.Title, c.CreditHours.Int()).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to save course: %w", err)
	}
	c.ID = shared.CourseID(id)
	return nil
}

// SavePrerequisite upserts a prerequisite edge.
func (r *CatalogRepository) SavePrerequisite(ctx context.Context, e *catalog.PrerequisiteEdge) error {
	if err := e.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO course_prereqs (course_id, prereq_course_id, min_grade)
		VALUES ($1, $2, $3)
		ON CONFLICT (course_id, prereq_course_id) DO UPDATE
		SET min_grade = EXCLUDED.min_grade
	`
	var minGrade interface{}
	if e.MinGrade != "" {
		minGrade = string(e.MinGrade)
	}
	_, err := r.conn.Exec(ctx, query, e.CourseID.Int64(), e.PrereqCourseID.Int64(), minGrade)
	if err != nil {
		return fmt.Errorf("failed to save prerequisite: %w", err)
	}
	return nil
}

// LoadSnapshot implements catalog.SnapshotSource: courses and edges are read
// inside one repeatable-read transaction, so the engine never sees a course
// list and an edge list from different points in time.
func (r *CatalogRepository) LoadSnapshot(ctx context.Context) ([]catalog.Course, []catalog.PrerequisiteEdge, error) {
	var (
		courses []catalog.Course
		edges   []catalog.PrerequisiteEdge
	)

	err := r.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			fmt.Sprintf("SELECT %s FROM courses ORDER BY course_id", courseColumns))
		if err != nil {
			return fmt.Errorf("failed to read courses: %w", err)
		}
		courses, err = r.collectCourses(rows)
		rows.Close()
		if err != nil {
			return err
		}

		rows, err = tx.Query(ctx,
			"SELECT course_id, prereq_course_id, min_grade FROM course_prereqs ORDER BY course_id, prereq_course_id")
		if err != nil {
			return fmt.Errorf("failed to read prerequisites: %w", err)
		}
		edges, err = collectEdges(rows)
		rows.Close()
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return courses, edges, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *CatalogRepository) scanCourse(row pgx.Row) (*catalog.Course, error) {
	var (
		c           catalog.Course
		id          int64
		creditHours int
	)
	err := row.Scan(&id, &c.Key.Subject, &c.Key.CatalogNumber, &c.Title, &creditHours)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}
	c.ID = shared.CourseID(id)
	c.CreditHours = shared.CreditHours(creditHours)
	return &c, nil
}

func (r *CatalogRepository) collectCourses(rows pgx.Rows) ([]catalog.Course, error) {
	var courses []catalog.Course
	for rows.Next() {
		var (
			c           catalog.Course
			id          int64
			creditHours int
		)
		if err := rows.Scan(&id, &c.Key.Subject, &c.Key.CatalogNumber, &c.Title, &creditHours); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		c.ID = shared.CourseID(id)
		c.CreditHours = shared.CreditHours(creditHours)
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func collectEdges(rows pgx.Rows) ([]catalog.PrerequisiteEdge, error) {
	var edges []catalog.PrerequisiteEdge
	for rows.Next() {
		var (
			e        catalog.PrerequisiteEdge
			courseID int64
			prereqID int64
			minGrade *string
		)
		if err := rows.Scan(&courseID, &prereqID, &minGrade); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite: %w", err)
		}
		e.CourseID = shared.CourseID(courseID)
		e.PrereqCourseID = shared.CourseID(prereqID)
		if minGrade != nil {
			e.MinGrade = shared.Grade(*minGrade)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
