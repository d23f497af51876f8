package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// plan.Repository
// ─────────────────────────────────────────────────────────────────────────────

// GetPlan returns a degree plan by id.
func (s *Store) GetPlan(ctx context.Context, id shared.PlanID) (*plan.DegreePlan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT plan_id, student_id, catalog_year_id, COALESCE(target_grad_term, 0), created_at
		FROM degree_plans WHERE plan_id = ?
	`, id.Int64())
	return scanPlan(row)
}

// GetPlanForStudent returns the student's first plan, creating one when none
// exists.
func (s *Store) GetPlanForStudent(ctx context.Context, studentID shared.StudentID) (*plan.DegreePlan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT plan_id, student_id, catalog_year_id, COALESCE(target_grad_term, 0), created_at
		FROM degree_plans WHERE student_id = ?
		ORDER BY plan_id LIMIT 1
	`, studentID.Int64())

	p, err := scanPlan(row)
	if err == nil {
		return p, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO degree_plans (student_id, catalog_year_id, created_at) VALUES (?, 1, ?)",
		studentID.Int64(), now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("sqlite: failed to create plan: %w", err)
	}
	planID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read new plan id: %w", err)
	}
	return &plan.DegreePlan{
		ID:            shared.PlanID(planID),
		StudentID:     studentID,
		CatalogYearID: 1,
		CreatedAt:     now,
	}, nil
}

// ListPlannedEntries returns a plan's entries with course attributes resolved.
func (s *Store) ListPlannedEntries(ctx context.Context, planID shared.PlanID) ([]plan.PlannedEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pc.planned_id, pc.plan_id, pc.term_id,
		       COALESCE(pc.course_id, 0), COALESCE(pc.section_id, 0),
		       COALESCE(c.subject, ''), COALESCE(c.catalog_number, ''),
		       COALESCE(c.title, ''), COALESCE(c.credit_hours, 0),
		       COALESCE(t.code, '')
		FROM planned_courses pc
		LEFT JOIN sections s ON s.section_id = pc.section_id
		LEFT JOIN courses c ON c.course_id = COALESCE(pc.course_id, s.course_id)
		LEFT JOIN terms t ON t.term_id = pc.term_id
		WHERE pc.plan_id = ?
		ORDER BY pc.term_id, c.subject, c.catalog_number, pc.planned_id
	`, planID.Int64())
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list planned entries: %w", err)
	}
	defer rows.Close()

	var entries []plan.PlannedEntry
	for rows.Next() {
		var (
			e                   plan.PlannedEntry
			pid, termID         int64
			courseID, sectionID int64
			subject, number     string
			creditHours         int
		)
		if err := rows.Scan(&e.ID, &pid, &termID, &courseID, &sectionID,
			&subject, &number, &e.Title, &creditHours, &e.TermCode); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan planned entry: %w", err)
		}
		e.PlanID = shared.PlanID(pid)
		e.TermID = shared.TermID(termID)
		e.CourseID = shared.CourseID(courseID)
		e.SectionID = shared.SectionID(sectionID)
		e.CreditHours = shared.CreditHours(creditHours)
		if subject != "" {
			e.Key.Subject = subject
			e.Key.CatalogNumber = number
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddPlannedEntry inserts a planned course row and returns its id.
func (s *Store) AddPlannedEntry(ctx context.Context, entry *plan.PlannedEntry) (int64, error) {
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

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO planned_courses (plan_id, term_id, course_id, section_id) VALUES (?, ?, ?, ?)",
		entry.PlanID.Int64(), int64(entry.TermID), courseID, sectionID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, shared.ErrCourseNotFound
		}
		return 0, fmt.Errorf("sqlite: failed to add planned entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to read new planned entry id: %w", err)
	}
	entry.ID = id
	return id, nil
}

// RemovePlannedEntry deletes one planned course row.
func (s *Store) RemovePlannedEntry(ctx context.Context, entryID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM planned_courses WHERE planned_id = ?", entryID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to remove planned entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shared.ErrPlannedEntryNotFound
	}
	return nil
}

const completionQuery = `
	SELECT e.enrollment_id, e.student_id, c.course_id,
	       c.subject, c.catalog_number, c.title, e.grade, c.credit_hours,
	       COALESCE(t.code, '')
	FROM enrollments e
	JOIN sections s ON s.section_id = e.section_id
	JOIN courses c ON c.course_id = s.course_id
	LEFT JOIN terms t ON t.term_id = s.term_id
	WHERE e.student_id = ? AND e.grade IS NOT NULL`

// ListCompletions returns all graded completion records for a student.
func (s *Store) ListCompletions(ctx context.Context, studentID shared.StudentID) ([]plan.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		completionQuery+" ORDER BY c.subject, c.catalog_number", studentID.Int64())
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// ListPassingCompletions returns the completion records with passing grades.
func (s *Store) ListPassingCompletions(ctx context.Context, studentID shared.StudentID) ([]plan.CompletionRecord, error) {
	grades := passingGradePlaceholders()
	args := []interface{}{studentID.Int64()}
	for _, g := range shared.PassingGrades() {
		args = append(args, string(g))
	}

	rows, err := s.db.QueryContext(ctx,
		completionQuery+" AND e.grade IN ("+grades+") ORDER BY c.subject, c.catalog_number", args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list passing completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// TotalEarnedCredits sums credit hours over passing completions.
func (s *Store) TotalEarnedCredits(ctx context.Context, studentID shared.StudentID) (shared.CreditHours, error) {
	grades := passingGradePlaceholders()
	args := []interface{}{studentID.Int64()}
	for _, g := range shared.PassingGrades() {
		args = append(args, string(g))
	}

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(c.credit_hours), 0)
		FROM enrollments e
		JOIN sections s ON s.section_id = e.section_id
		JOIN courses c ON c.course_id = s.course_id
		WHERE e.student_id = ? AND e.grade IN (`+grades+`)
	`, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to sum earned credits: %w", err)
	}
	return shared.CreditHours(total), nil
}

// RecordCompletion records (or overwrites) a completed course with a grade.
func (s *Store) RecordCompletion(ctx context.Context, studentID shared.StudentID, courseID shared.CourseID, grade shared.Grade) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var enrollmentID int64
		err := tx.QueryRowContext(ctx, `
			SELECT e.enrollment_id
			FROM enrollments e
			JOIN sections s ON s.section_id = e.section_id
			WHERE e.student_id = ? AND s.course_id = ?
			ORDER BY e.enrollment_id LIMIT 1
		`, studentID.Int64(), courseID.Int64()).Scan(&enrollmentID)

		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx,
				"UPDATE enrollments SET grade = ?, status = 'completed' WHERE enrollment_id = ?",
				string(grade), enrollmentID)
			if err != nil {
				return fmt.Errorf("sqlite: failed to update completion grade: %w", err)
			}
			return nil

		case errors.Is(err, sql.ErrNoRows):
			// No enrollment history for this course. Synthesize a history
			// section so the completion joins like any other.
			res, err := tx.ExecContext(ctx,
				"INSERT INTO sections (course_id, class_num) VALUES (?, ?)",
				courseID.Int64(), historyClassNum)
			if err != nil {
				if isForeignKeyViolation(err) {
					return shared.ErrCourseNotFound
				}
				return fmt.Errorf("sqlite: failed to create history section: %w", err)
			}
			sectionID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("sqlite: failed to read history section id: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO enrollments (student_id, section_id, grade, status) VALUES (?, ?, ?, 'completed')",
				studentID.Int64(), sectionID, string(grade))
			if err != nil {
				if isForeignKeyViolation(err) {
					return shared.ErrStudentNotFound
				}
				return fmt.Errorf("sqlite: failed to record completion: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("sqlite: failed to look up enrollment: %w", err)
		}
	})
}

// UpdateGrade changes the grade on an existing enrollment record.
func (s *Store) UpdateGrade(ctx context.Context, studentID shared.StudentID, enrollmentID int64, grade shared.Grade) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE enrollments SET grade = ? WHERE enrollment_id = ? AND student_id = ?",
		string(grade), enrollmentID, studentID.Int64())
	if err != nil {
		return fmt.Errorf("sqlite: failed to update grade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shared.WrapError("sqlite", "UpdateGrade", shared.ErrNotFound,
			fmt.Sprintf("enrollment %d not found for student %d", enrollmentID, studentID), nil)
	}
	return nil
}

// RemoveCompletion deletes an enrollment record and any synthetic section it
// leaves orphaned.
func (s *Store) RemoveCompletion(ctx context.Context, studentID shared.StudentID, enrollmentID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var sectionID int64
		err := tx.QueryRowContext(ctx,
			"SELECT section_id FROM enrollments WHERE enrollment_id = ? AND student_id = ?",
			enrollmentID, studentID.Int64()).Scan(&sectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return shared.WrapError("sqlite", "RemoveCompletion", shared.ErrNotFound,
					fmt.Sprintf("enrollment %d not found for student %d", enrollmentID, studentID), nil)
			}
			return fmt.Errorf("sqlite: failed to look up enrollment: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM enrollments WHERE enrollment_id = ?", enrollmentID); err != nil {
			return fmt.Errorf("sqlite: failed to remove completion: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM sections
			WHERE section_id = ? AND class_num = ?
			  AND NOT EXISTS (SELECT 1 FROM enrollments WHERE section_id = ?)
			  AND NOT EXISTS (SELECT 1 FROM planned_courses WHERE section_id = ?)
		`, sectionID, historyClassNum, sectionID, sectionID)
		if err != nil {
			return fmt.Errorf("sqlite: failed to prune history section: %w", err)
		}
		return nil
	})
}

func scanPlan(row rowScanner) (*plan.DegreePlan, error) {
	var (
		p                  plan.DegreePlan
		id, studentID      int64
		targetGradTerm     int64
	)
	err := row.Scan(&id, &studentID, &p.CatalogYearID, &targetGradTerm, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrPlanNotFound
		}
		return nil, fmt.Errorf("sqlite: failed to scan plan: %w", err)
	}
	p.ID = shared.PlanID(id)
	p.StudentID = shared.StudentID(studentID)
	p.TargetGradTerm = shared.TermID(targetGradTerm)
	return &p, nil
}

func collectCompletions(rows *sql.Rows) ([]plan.CompletionRecord, error) {
	var records []plan.CompletionRecord
	for rows.Next() {
		var (
			r                     plan.CompletionRecord
			studentID, courseID   int64
			grade                 string
			creditHours           int
		)
		if err := rows.Scan(&r.EnrollmentID, &studentID, &courseID,
			&r.Key.Subject, &r.Key.CatalogNumber, &r.Title, &grade, &creditHours,
			&r.TermCode); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan completion: %w", err)
		}
		r.StudentID = shared.StudentID(studentID)
		r.CourseID = shared.CourseID(courseID)
		r.Grade = shared.Grade(grade)
		r.CreditHours = shared.CreditHours(creditHours)
		records = append(records, r)
	}
	return records, rows.Err()
}

func passingGradePlaceholders() string {
	return strings.TrimSuffix(strings.Repeat("?, ", len(shared.PassingGrades())), ", ")
}
