package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// schedule.Repository
// ─────────────────────────────────────────────────────────────────────────────

// GetSection returns a section by id.
func (s *Store) GetSection(ctx context.Context, id shared.SectionID) (*schedule.Section, error) {
	var (
		sec              schedule.Section
		sid, courseID    int64
		termID           sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT section_id, course_id, term_id, class_num, campus, capacity
		FROM sections WHERE section_id = ?
	`, int64(id)).Scan(&sid, &courseID, &termID, &sec.ClassNum, &sec.Campus, &sec.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrSectionNotFound
		}
		return nil, fmt.Errorf("sqlite: failed to get section: %w", err)
	}
	sec.ID = shared.SectionID(sid)
	sec.CourseID = shared.CourseID(courseID)
	if termID.Valid {
		sec.TermID = shared.TermID(termID.Int64)
	}
	return &sec, nil
}

const meetingQuery = `
	SELECT m.section_id, m.days_of_week, m.start_time, m.end_time, m.location,
	       c.subject, c.catalog_number, c.title
	FROM meetings m
	JOIN sections s ON s.section_id = m.section_id
	JOIN courses c ON c.course_id = s.course_id`

// ListMeetingsForSection returns one section's meeting blocks.
func (s *Store) ListMeetingsForSection(ctx context.Context, sectionID shared.SectionID) ([]schedule.Meeting, error) {
	rows, err := s.db.QueryContext(ctx,
		meetingQuery+" WHERE m.section_id = ? ORDER BY m.meeting_id", int64(sectionID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list section meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

// ListMeetingsForPlan returns the meetings of every section offering a course
// planned in the given plan.
func (s *Store) ListMeetingsForPlan(ctx context.Context, planID shared.PlanID) ([]schedule.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, meetingQuery+`
		WHERE m.section_id IN (
			SELECT pc.section_id FROM planned_courses pc
			WHERE pc.plan_id = ? AND pc.section_id IS NOT NULL
			UNION
			SELECT sec.section_id FROM planned_courses pc
			JOIN sections sec ON sec.course_id = pc.course_id AND sec.term_id = pc.term_id
			WHERE pc.plan_id = ? AND pc.course_id IS NOT NULL
		)
		ORDER BY m.section_id, m.meeting_id
	`, planID.Int64(), planID.Int64())
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list plan meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

// ListEnrolledMeetings returns the meetings of the sections a student is
// currently enrolled in.
func (s *Store) ListEnrolledMeetings(ctx context.Context, studentID shared.StudentID) ([]schedule.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, meetingQuery+`
		JOIN enrollments e ON e.section_id = m.section_id
		WHERE e.student_id = ? AND e.status = 'enrolled'
		ORDER BY m.section_id, m.meeting_id
	`, studentID.Int64())
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list enrolled meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

// EnrollSection enrolls a student in a section.
func (s *Store) EnrollSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO enrollments (student_id, section_id, status) VALUES (?, ?, 'enrolled')",
		studentID.Int64(), int64(sectionID))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.WrapError("sqlite", "EnrollSection", shared.ErrAlreadyExists,
				fmt.Sprintf("student %d is already enrolled in section %d", studentID, sectionID), err)
		}
		if isForeignKeyViolation(err) {
			return 0, shared.ErrSectionNotFound
		}
		return 0, fmt.Errorf("sqlite: failed to enroll: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to read new enrollment id: %w", err)
	}
	return id, nil
}

// DropSection removes a student's active enrollment in a section.
func (s *Store) DropSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM enrollments WHERE student_id = ? AND section_id = ? AND status = 'enrolled'",
		studentID.Int64(), int64(sectionID))
	if err != nil {
		return fmt.Errorf("sqlite: failed to drop section: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shared.WrapError("sqlite", "DropSection", shared.ErrNotFound,
			fmt.Sprintf("student %d has no active enrollment in section %d", studentID, sectionID), nil)
	}
	return nil
}

// SaveSection upserts a section row, writing the assigned id back for new
// sections.
func (s *Store) SaveSection(ctx context.Context, sec *schedule.Section) error {
	if !sec.CourseID.IsValid() {
		return shared.WrapError("sqlite", "SaveSection", shared.ErrInvalidID,
			"section must reference a course", nil)
	}

	var termID interface{}
	if sec.TermID.IsValid() {
		termID = int64(sec.TermID)
	}

	if sec.ID.IsValid() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO sections (section_id, course_id, term_id, class_num, campus, capacity)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (section_id) DO UPDATE
			SET course_id = excluded.course_id, term_id = excluded.term_id,
			    class_num = excluded.class_num, campus = excluded.campus,
			    capacity = excluded.capacity
		`, int64(sec.ID), sec.CourseID.Int64(), termID, sec.ClassNum, sec.Campus, sec.Capacity)
		if err != nil {
			if isForeignKeyViolation(err) {
				return shared.ErrCourseNotFound
			}
			return fmt.Errorf("sqlite: failed to save section: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO sections (course_id, term_id, class_num, campus, capacity) VALUES (?, ?, ?, ?, ?)",
		sec.CourseID.Int64(), termID, sec.ClassNum, sec.Campus, sec.Capacity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shared.ErrCourseNotFound
		}
		return fmt.Errorf("sqlite: failed to save section: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read new section id: %w", err)
	}
	sec.ID = shared.SectionID(id)
	return nil
}

// SaveMeeting inserts a meeting row.
func (s *Store) SaveMeeting(ctx context.Context, m *schedule.Meeting) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meetings (section_id, days_of_week, start_time, end_time, location) VALUES (?, ?, ?, ?, ?)",
		int64(m.SectionID), m.Days.String(), m.Start.String(), m.End.String(), m.Location)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shared.ErrSectionNotFound
		}
		return fmt.Errorf("sqlite: failed to save meeting: %w", err)
	}
	return nil
}
