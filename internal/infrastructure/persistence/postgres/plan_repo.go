package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAN REPOSITORY IMPLEMENTATION
// Completion records are not a table of their own: they are derived from
// graded enrollment rows joined back to sections and courses. Completions
// recorded by hand get a synthetic "history" section so the derivation
// stays uniform.
// ══════════════════════════════════════════════════════════════════════════════

// historyClassNum marks synthetic sections behind hand-recorded completions.
const historyClassNum = "HIST"

// PlanRepository implements plan.Repository for PostgreSQL.
type PlanRepository struct {
	conn *Connection
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(conn *Connection) *PlanRepository {
	return &PlanRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Plan operations
// ─────────────────────────────────────────────────────────────────────────────

// GetPlan returns a degree plan by id.
func (r *PlanRepository) GetPlan(ctx context.Context, id shared.PlanID) (*plan.DegreePlan, error) {
	query := `
		SELECT plan_id, student_id, catalog_year_id, COALESCE(target_grad_term, 0), created_at
		FROM degree_plans WHERE plan_id = $1
	`
	return scanPlan(r.conn.QueryRow(ctx, query, id.Int64()))
}

// GetPlanForStudent returns the student's first plan, creating one when none
// exists.
func (r *PlanRepository) GetPlanForStudent(ctx context.Context, studentID shared.StudentID) (*plan.DegreePlan, error) {
	query := `
		SELECT plan_id, student_id, catalog_year_id, COALESCE(target_grad_term, 0), created_at
		FROM degree_plans WHERE student_id = $1 ORDER BY plan_id LIMIT 1
	`
	p, err := scanPlan(r.conn.QueryRow(ctx, query, studentID.Int64()))
	if err == nil {
		return p, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	created := time.Now().UTC()
	insert := `
		INSERT INTO degree_plans (student_id, catalog_year_id, created_at)
		VALUES ($1, 1, $2)
		RETURNING plan_id
	`
	var planID int64
	if err := r.conn.QueryRow(ctx, insert, studentID.Int64(), created).Scan(&planID); err != nil {
		if IsForeignKeyViolation(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	return &plan.DegreePlan{
		ID:            shared.PlanID(planID),
		StudentID:     studentID,
		CatalogYearID: 1,
		CreatedAt:     created,
	}, nil
}

// ListPlannedEntries returns a plan's entries with course attributes
// resolved. Entries referencing a section resolve through it to the course.
func (r *PlanRepository) ListPlannedEntries(ctx context.Context, planID shared.PlanID) ([]plan.PlannedEntry, error) {
	query := `
		SELECT pc.planned_id, pc.plan_id, pc.term_id,
		       COALESCE(pc.course_id, 0), COALESCE(pc.section_id, 0),
		       COALESCE(c.subject, ''), COALESCE(c.catalog_number, ''),
		       COALESCE(c.title, ''), COALESCE(c.credit_hours, 0),
		       COALESCE(t.code, '')
		FROM planned_courses pc
		LEFT JOIN sections s ON s.section_id = pc.section_id
		LEFT JOIN courses c ON c.course_id = COALESCE(pc.course_id, s.course_id)
		LEFT JOIN terms t ON t.term_id = pc.term_id
		WHERE pc.plan_id = $1
		ORDER BY pc.term_id, c.subject, c.catalog_number, pc.planned_id
	`

	rows, err := r.conn.Query(ctx, query, planID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list planned entries: %w", err)
	}
	defer rows.Close()

	var entries []plan.PlannedEntry
	for rows.Next() {
		var (
			e                  plan.PlannedEntry
			pid, tid, cid, sid int64
			subject, number    string
			creditHours        int
		)
		if err := rows.Scan(&e.ID, &pid, &tid, &cid, &sid,
			&subject, &number, &e.Title, &creditHours, &e.TermCode); err != nil {
			return nil, fmt.Errorf("failed to scan planned entry: %w", err)
		}
		e.PlanID = shared.PlanID(pid)
		e.TermID = shared.TermID(tid)
		e.CourseID = shared.CourseID(cid)
		e.SectionID = shared.SectionID(sid)
		e.CreditHours = shared.CreditHours(creditHours)
		if subject != "" {
			e.Key = catalog.CourseKey{Subject: subject, CatalogNumber: number}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddPlannedEntry inserts a new planned course row and returns its id.
func (r *PlanRepository) AddPlannedEntry(ctx context.Context, entry *plan.PlannedEntry) (int64, error) {
	if err := entry.Validate(); err != nil {
		return 0, err
	}

	var courseID, sectionID interface{}
	if entry.CourseID.IsValid() {
		courseID = entry.CourseID.Int64()
	}
	if entry.SectionID.IsValid() {
		sectionID = int64(entry.SectionID)
	}

	query := `
		INSERT INTO planned_courses (plan_id, term_id, course_id, section_id)
		VALUES ($1, $2, $3, $4)
		RETURNING planned_id
	`
	var id int64
	err := r.conn.QueryRow(ctx, query,
		entry.PlanID.Int64(), int64(entry.TermID), courseID, sectionID).Scan(&id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return 0, shared.ErrCourseNotFound
		}
		return 0, fmt.Errorf("failed to insert planned entry: %w", err)
	}
	return id, nil
}

// RemovePlannedEntry deletes one planned course row.
func (r *PlanRepository) RemovePlannedEntry(ctx context.Context, entryID int64) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM planned_courses WHERE planned_id = $1", entryID)
	if err != nil {
		return fmt.Errorf("failed to delete planned entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPlannedEntryNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Transcript operations
// ─────────────────────────────────────────────────────────────────────────────

const completionQuery = `
	SELECT e.enrollment_id, e.student_id, c.course_id,
	       c.subject, c.catalog_number, c.title, e.grade, c.credit_hours,
	       COALESCE(t.code, '')
	FROM enrollments e
	JOIN sections s ON s.section_id = e.section_id
	JOIN courses c ON c.course_id = s.course_id
	LEFT JOIN terms t ON t.term_id = s.term_id
	WHERE e.student_id = $1 AND e.grade IS NOT NULL
`

// ListCompletions returns all graded completion records for a student.
func (r *PlanRepository) ListCompletions(ctx context.Context, studentID shared.StudentID) ([]plan.CompletionRecord, error) {
	rows, err := r.conn.Query(ctx, completionQuery+" ORDER BY c.subject, c.catalog_number", studentID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	return collectCompletions(rows)
}

// ListPassingCompletions returns the completion records whose grade is in
// the passing set.
func (r *PlanRepository) ListPassingCompletions(ctx context.Context, studentID shared.StudentID) ([]plan.CompletionRecord, error) {
	query := completionQuery + " AND e.grade = ANY($2) ORDER BY c.subject, c.catalog_number"

	rows, err := r.conn.Query(ctx, query, studentID.Int64(), passingGradeStrings())
	if err != nil {
		return nil, fmt.Errorf("failed to list passing completions: %w", err)
	}
	defer rows.Close()

	return collectCompletions(rows)
}

// TotalEarnedCredits sums credit hours over passing completions.
func (r *PlanRepository) TotalEarnedCredits(ctx context.Context, studentID shared.StudentID) (shared.CreditHours, error) {
	query := `
		SELECT COALESCE(SUM(c.credit_hours), 0)
		FROM enrollments e
		JOIN sections s ON s.section_id = e.section_id
		JOIN courses c ON c.course_id = s.course_id
		WHERE e.student_id = $1 AND e.grade = ANY($2)
	`
	var total int
	if err := r.conn.QueryRow(ctx, query, studentID.Int64(), passingGradeStrings()).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum earned credits: %w", err)
	}
	return shared.CreditHours(total), nil
}

// RecordCompletion records (or overwrites) a completed course with a grade.
// When the student has no graded enrollment for the course yet, a synthetic
// history section carries the record.
func (r *PlanRepository) RecordCompletion(ctx context.Context, studentID shared.StudentID, courseID shared.CourseID, grade shared.Grade) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var enrollmentID int64
		err := tx.QueryRow(ctx, `
			SELECT e.enrollment_id
			FROM enrollments e
			JOIN sections s ON s.section_id = e.section_id
			WHERE e.student_id = $1 AND s.course_id = $2
			ORDER BY e.enrollment_id LIMIT 1
		`, studentID.Int64(), courseID.Int64()).Scan(&enrollmentID)

		switch {
		case err == nil:
			_, err = tx.Exec(ctx,
				"UPDATE enrollments SET grade = $1, status = 'completed' WHERE enrollment_id = $2",
				grade.String(), enrollmentID)
			if err != nil {
				return fmt.Errorf("failed to update grade: %w", err)
			}
			return nil

		case IsNoRows(err):
			var sectionID int64
			err = tx.QueryRow(ctx, `
				INSERT INTO sections (course_id, class_num, campus, capacity)
				VALUES ($1, $2, '', 0)
				RETURNING section_id
			`, courseID.Int64(), historyClassNum).Scan(&sectionID)
			if err != nil {
				if IsForeignKeyViolation(err) {
					return shared.ErrCourseNotFound
				}
				return fmt.Errorf("failed to create history section: %w", err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO enrollments (student_id, section_id, grade, status)
				VALUES ($1, $2, $3, 'completed')
			`, studentID.Int64(), sectionID, grade.String())
			if err != nil {
				if IsForeignKeyViolation(err) {
					return shared.ErrStudentNotFound
				}
				return fmt.Errorf("failed to insert completion: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("failed to look up enrollment: %w", err)
		}
	})
}

// UpdateGrade changes the grade on an existing enrollment record.
func (r *PlanRepository) UpdateGrade(ctx context.Context, studentID shared.StudentID, enrollmentID int64, grade shared.Grade) error {
	tag, err := r.conn.Exec(ctx,
		"UPDATE enrollments SET grade = $1 WHERE enrollment_id = $2 AND student_id = $3",
		grade.String(), enrollmentID, studentID.Int64())
	if err != nil {
		return fmt.Errorf("failed to update grade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.WrapError("postgres", "UpdateGrade", shared.ErrNotFound,
			"enrollment not found for this student", nil)
	}
	return nil
}

// RemoveCompletion deletes an enrollment record and any synthetic history
// section it leaves orphaned.
func (r *PlanRepository) RemoveCompletion(ctx context.Context, studentID shared.StudentID, enrollmentID int64) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var sectionID int64
		err := tx.QueryRow(ctx, `
			DELETE FROM enrollments
			WHERE enrollment_id = $1 AND student_id = $2
			RETURNING section_id
		`, enrollmentID, studentID.Int64()).Scan(&sectionID)
		if err != nil {
			if IsNoRows(err) {
				return shared.WrapError("postgres", "RemoveCompletion", shared.ErrNotFound,
					"enrollment not found for this student", nil)
			}
			return fmt.Errorf("failed to delete enrollment: %w", err)
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM sections
			WHERE section_id = $1 AND class_num = $2
			  AND NOT EXISTS (SELECT 1 FROM enrollments WHERE section_id = $1)
			  AND NOT EXISTS (SELECT 1 FROM planned_courses WHERE section_id = $1)
		`, sectionID, historyClassNum)
		if err != nil {
			return fmt.Errorf("failed to clean up history section: %w", err)
		}
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanPlan(row pgx.Row) (*plan.DegreePlan, error) {
	var (
		p        plan.DegreePlan
		pid, sid int64
		target   int64
	)
	err := row.Scan(&pid, &sid, &p.CatalogYearID, &target, &p.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	p.ID = shared.PlanID(pid)
	p.StudentID = shared.StudentID(sid)
	p.TargetGradTerm = shared.TermID(target)
	return &p, nil
}

func collectCompletions(rows pgx.Rows) ([]plan.CompletionRecord, error) {
	var records []plan.CompletionRecord
	for rows.Next() {
		var (
			rec         plan.CompletionRecord
			sid, cid    int64
			grade       string
			creditHours int
		)
		if err := rows.Scan(&rec.EnrollmentID, &sid, &cid,
			&rec.Key.Subject, &rec.Key.CatalogNumber, &rec.Title,
			&grade, &creditHours, &rec.TermCode); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		rec.StudentID = shared.StudentID(sid)
		rec.CourseID = shared.CourseID(cid)
		rec.Grade = shared.Grade(grade)
		rec.CreditHours = shared.CreditHours(creditHours)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func passingGradeStrings() []string {
	grades := shared.PassingGrades()
	out := make([]string, len(grades))
	for i, g := range grades {
		out[i] = g.String()
	}
	return out
}
