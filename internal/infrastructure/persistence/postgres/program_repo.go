package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRAM REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgramRepository implements program.Repository for PostgreSQL.
type ProgramRepository struct {
	conn *Connection
}

// NewProgramRepository creates a new ProgramRepository.
func NewProgramRepository(conn *Connection) *ProgramRepository {
	return &ProgramRepository{conn: conn}
}

const programColumns = "program_id, name, program_type, catalog_year_id"

// GetProgram returns a program by id.
func (r *ProgramRepository) GetProgram(ctx context.Context, id shared.ProgramID) (*program.Program, error) {
	query := fmt.Sprintf("SELECT %s FROM programs WHERE program_id = $1", programColumns)
	return scanProgram(r.conn.QueryRow(ctx, query, int64(id)))
}

// ListPrograms returns all programs, ordered by name.
func (r *ProgramRepository) ListPrograms(ctx context.Context) ([]program.Program, error) {
	query := fmt.Sprintf("SELECT %s FROM programs ORDER BY name", programColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var programs []program.Program
	for rows.Next() {
		p, err := scanProgramRow(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *p)
	}
	return programs, rows.Err()
}

// GetPrimaryProgram returns the student's primary program.
func (r *ProgramRepository) GetPrimaryProgram(ctx context.Context, studentID shared.StudentID) (*program.Program, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM programs p
		JOIN student_programs sp ON sp.program_id = p.program_id
		WHERE sp.student_id = $1 AND sp.is_primary
	`, "p.program_id, p.name, p.program_type, p.catalog_year_id")

	p, err := scanProgram(r.conn.QueryRow(ctx, query, studentID.Int64()))
	if shared.IsNotFound(err) {
		return nil, shared.ErrNoPrimaryMajor
	}
	return p, err
}

// SetPrimaryProgram makes programID the student's primary program, clearing
// any previous primary flag in the same transaction.
func (r *ProgramRepository) SetPrimaryProgram(ctx context.Context, studentID shared.StudentID, programID shared.ProgramID) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"UPDATE student_programs SET is_primary = FALSE WHERE student_id = $1 AND is_primary",
			studentID.Int64()); err != nil {
			return fmt.Errorf("failed to clear primary program: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO student_programs (student_id, program_id, is_primary)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (student_id, program_id) DO UPDATE SET is_primary = TRUE
		`, studentID.Int64(), int64(programID))
		if err != nil {
			if IsForeignKeyViolation(err) {
				return shared.ErrProgramNotFound
			}
			return fmt.Errorf("failed to set primary program: %w", err)
		}
		return nil
	})
}

// ListEligibleCourses returns the program's full eligible-course roster.
func (r *ProgramRepository) ListEligibleCourses(ctx context.Context, id shared.ProgramID) ([]catalog.Course, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM courses c
		JOIN program_courses pc ON pc.course_id = c.course_id
		WHERE pc.program_id = $1
		ORDER BY c.subject, c.catalog_number
	`, "c.course_id, c.subject, c.catalog_number, c.title, c.credit_hours")

	rows, err := r.conn.Query(ctx, query, int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to list program courses: %w", err)
	}
	defer rows.Close()

	return (&CatalogRepository{conn: r.conn}).collectCourses(rows)
}

// SaveProgram upserts a program by (name, type) and writes the assigned id
// back.
func (r *ProgramRepository) SaveProgram(ctx context.Context, p *program.Program) error {
	if p.Name == "" {
		return shared.WrapError("postgres", "SaveProgram", shared.ErrInvalidInput,
			"program name must not be empty", nil)
	}
	if p.Type == "" {
		p.Type = program.TypeMajor
	}
	if p.CatalogYearID == 0 {
		p.CatalogYearID = 1
	}

	query := `
		INSERT INTO programs (name, program_type, catalog_year_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (name, program_type) DO UPDATE
		SET catalog_year_id = EXCLUDED.catalog_year_id
		RETURNING program_id
	`
	var id int64
	if err := r.conn.QueryRow(ctx, query,
		p.Name, string(p.Type), p.CatalogYearID).Scan(&id); err != nil {
		return fmt.Errorf("failed to save program: %w", err)
	}
	p.ID = shared.ProgramID(id)
	return nil
}

// AddEligibleCourse attaches a course to a program's roster.
func (r *ProgramRepository) AddEligibleCourse(ctx context.Context, programID shared.ProgramID, courseID shared.CourseID) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO program_courses (program_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (program_id, course_id) DO NOTHING
	`, int64(programID), courseID.Int64())
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrProgramNotFound
		}
		return fmt.Errorf("failed to add program course: %w", err)
	}
	return nil
}

func scanProgram(row pgx.Row) (*program.Program, error) {
	var (
		p     program.Program
		id    int64
		ptype string
	)
	err := row.Scan(&id, &p.Name, &ptype, &p.CatalogYearID)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to scan program: %w", err)
	}
	p.ID = shared.ProgramID(id)
	p.Type = program.Type(ptype)
	return &p, nil
}

func scanProgramRow(rows pgx.Rows) (*program.Program, error) {
	var (
		p     program.Program
		id    int64
		ptype string
	)
	if err := rows.Scan(&id, &p.Name, &ptype, &p.CatalogYearID); err != nil {
		return nil, fmt.Errorf("failed to scan program: %w", err)
	}
	p.ID = shared.ProgramID(id)
	p.Type = program.Type(ptype)
	return &p, nil
}
