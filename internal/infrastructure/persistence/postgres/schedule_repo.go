package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleRepository implements schedule.Repository for PostgreSQL.
type ScheduleRepository struct {
	conn *Connection
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(conn *Connection) *ScheduleRepository {
	return &ScheduleRepository{conn: conn}
}

// GetSection returns a section by id.
func (r *ScheduleRepository) GetSection(ctx context.Context, id shared.SectionID) (*schedule.Section, error) {
	query := `
		SELECT section_id, course_id, COALESCE(term_id, 0), class_num, campus, capacity
		FROM sections WHERE section_id = $1
	`
	var (
		s        schedule.Section
		sid, cid int64
		tid      int64
	)
	err := r.conn.QueryRow(ctx, query, int64(id)).Scan(
		&sid, &cid, &tid, &s.ClassNum, &s.Campus, &s.Capacity)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to scan section: %w", err)
	}
	s.ID = shared.SectionID(sid)
	s.CourseID = shared.CourseID(cid)
	s.TermID = shared.TermID(tid)
	return &s, nil
}

const meetingQuery = `
	SELECT m.section_id, m.days_of_week, m.start_time, m.end_time, m.location,
	       c.subject, c.catalog_number, c.title
	FROM meetings m
	JOIN sections s ON s.section_id = m.section_id
	JOIN courses c ON c.course_id = s.course_id
`

// ListMeetingsForSection returns one section's meeting blocks.
func (r *ScheduleRepository) ListMeetingsForSection(ctx context.Context, sectionID shared.SectionID) ([]schedule.Meeting, error) {
	rows, err := r.conn.Query(ctx, meetingQuery+" WHERE m.section_id = $1", int64(sectionID))
	if err != nil {
		return nil, fmt.Errorf("failed to list section meetings: %w", err)
	}
	defer rows.Close()

	return collectMeetings(rows)
}

// ListMeetingsForPlan returns the meetings of every section offering a
// course planned in the given plan. Entries planned by course pull in all
// of that course's sections for the planned term; entries planned by
// section pull in just that section.
func (r *ScheduleRepository) ListMeetingsForPlan(ctx context.Context, planID shared.PlanID) ([]schedule.Meeting, error) {
	query := meetingQuery + `
		WHERE m.section_id IN (
			SELECT s2.section_id
			FROM planned_courses pc
			JOIN sections s2 ON s2.section_id = pc.section_id
			WHERE pc.plan_id = $1
			UNION
			SELECT s3.section_id
			FROM planned_courses pc2
			JOIN sections s3 ON s3.course_id = pc2.course_id AND s3.term_id = pc2.term_id
			WHERE pc2.plan_id = $1
		)
	`

	rows, err := r.conn.Query(ctx, query, planID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list plan meetings: %w", err)
	}
	defer rows.Close()

	return collectMeetings(rows)
}

// ListEnrolledMeetings returns the meetings of the sections a student is
// currently enrolled in.
func (r *ScheduleRepository) ListEnrolledMeetings(ctx context.Context, studentID shared.StudentID) ([]schedule.Meeting, error) {
	query := meetingQuery + `
		JOIN enrollments e ON e.section_id = m.section_id
		WHERE e.student_id = $1 AND e.status = 'enrolled'
	`

	rows, err := r.conn.Query(ctx, query, studentID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled meetings: %w", err)
	}
	defer rows.Close()

	return collectMeetings(rows)
}

// EnrollSection enrolls a student in a section.
func (r *ScheduleRepository) EnrollSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) (int64, error) {
	query := `
		INSERT INTO enrollments (student_id, section_id, status)
		VALUES ($1, $2, 'enrolled')
		RETURNING enrollment_id
	`
	var id int64
	err := r.conn.QueryRow(ctx, query, studentID.Int64(), int64(sectionID)).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, shared.WrapError("postgres", "EnrollSection", shared.ErrAlreadyExists,
				"student is already enrolled in this section", err)
		}
		if IsForeignKeyViolation(err) {
			return 0, shared.ErrSectionNotFound
		}
		return 0, fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return id, nil
}

// DropSection removes a student's active enrollment in a section.
func (r *ScheduleRepository) DropSection(ctx context.Context, studentID shared.StudentID, sectionID shared.SectionID) error {
	tag, err := r.conn.Exec(ctx,
		"DELETE FROM enrollments WHERE student_id = $1 AND section_id = $2 AND status = 'enrolled'",
		studentID.Int64(), int64(sectionID))
	if err != nil {
		return fmt.Errorf("failed to drop enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.WrapError("postgres", "DropSection", shared.ErrNotFound,
			"no active enrollment in this section", nil)
	}
	return nil
}

// SaveSection upserts a section row.
func (r *ScheduleRepository) SaveSection(ctx context.Context, s *schedule.Section) error {
	if !s.CourseID.IsValid() {
		return shared.WrapError("postgres", "SaveSection", shared.ErrInvalidID,
			"section must reference a course", nil)
	}

	var termID interface{}
	if s.TermID.IsValid() {
		termID = int64(s.TermID)
	}

	if s.ID.IsValid() {
		query := `
			INSERT INTO sections (section_id, course_id, term_id, class_num, campus, capacity)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (section_id) DO UPDATE
			SET course_id = EXCLUDED.course_id, term_id = EXCLUDED.term_id,
			    class_num = EXCLUDED.class_num, campus = EXCLUDED.campus,
			    capacity = EXCLUDED.capacity
		`
		_, err := r.conn.Exec(ctx, query,
			int64(s.ID), s.CourseID.Int64(), termID, s.ClassNum, s.Campus, s.Capacity)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return shared.ErrCourseNotFound
			}
			return fmt.Errorf("failed to save section: %w", err)
		}
		return nil
	}

	// New sections take an identity-assigned id, written back for callers
	// that go on to attach meetings.
	query := `
		INSERT INTO sections (course_id, term_id, class_num, campus, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING section_id
	`
	var id int64
	err := r.conn.QueryRow(ctx, query,
		s.CourseID.Int64(), termID, s.ClassNum, s.Campus, s.Capacity).Scan(&id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrCourseNotFound
		}
		return fmt.Errorf("failed to save section: %w", err)
	}
	s.ID = shared.SectionID(id)
	return nil
}

// SaveMeeting upserts a meeting row.
func (r *ScheduleRepository) SaveMeeting(ctx context.Context, m *schedule.Meeting) error {
	if err := m.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO meetings (section_id, days_of_week, start_time, end_time, location)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.conn.Exec(ctx, query,
		int64(m.SectionID), m.Days.String(), m.Start.String(), m.End.String(), m.Location)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrSectionNotFound
		}
		return fmt.Errorf("failed to save meeting: %w", err)
	}
	return nil
}

func collectMeetings(rows pgx.Rows) ([]schedule.Meeting, error) {
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
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		m.SectionID = shared.SectionID(sid)

		var err error
		if m.Days, err = timeutil.ParseDays(days); err != nil {
			return nil, fmt.Errorf("meeting for section %d has malformed days %q: %w", sid, days, err)
		}
		if m.Start, err = timeutil.ParseClock(start); err != nil {
			return nil, fmt.Errorf("meeting for section %d has malformed start %q: %w", sid, start, err)
		}
		if m.End, err = timeutil.ParseClock(end); err != nil {
			return nil, fmt.Errorf("meeting for section %d has malformed end %q: %w", sid, end, err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}
