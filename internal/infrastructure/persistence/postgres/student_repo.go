package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

const studentColumns = `student_id, login_id, first_name, last_name, email,
	COALESCE(expected_grad_term, 0), catalog_year_id, COALESCE(advisor_id, 0), created_at`

// GetByID returns a student by internal id.
func (r *StudentRepository) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id = $1", studentColumns)
	return scanStudent(r.conn.QueryRow(ctx, query, id.Int64()))
}

// GetByLogin returns a student by institutional login.
func (r *StudentRepository) GetByLogin(ctx context.Context, login student.LoginID) (*student.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE login_id = $1", studentColumns)
	return scanStudent(r.conn.QueryRow(ctx, query, login.Normalize().String()))
}

// Create inserts a student record. The store assigns the id and writes it
// back into the entity.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	if !s.LoginID.IsValid() {
		return shared.WrapError("postgres", "CreateStudent", shared.ErrInvalidInput,
			"login id is malformed", nil)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO students (login_id, first_name, last_name, email, catalog_year_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING student_id
	`
	var id int64
	err := r.conn.QueryRow(ctx, query,
		s.LoginID.Normalize().String(),
		s.FirstName,
		s.LastName,
		s.Email,
		s.CatalogYearID,
		s.CreatedAt,
	).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("postgres", "CreateStudent", shared.ErrAlreadyExists,
				"login id is already registered", err)
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	s.ID = shared.StudentID(id)
	return nil
}

// ListAdvisors returns all advisors, ordered by last then first name.
func (r *StudentRepository) ListAdvisors(ctx context.Context) ([]student.Advisor, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT advisor_id, first_name, last_name, email FROM advisors ORDER BY last_name, first_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list advisors: %w", err)
	}
	defer rows.Close()

	var advisors []student.Advisor
	for rows.Next() {
		var a student.Advisor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email); err != nil {
			return nil, fmt.Errorf("failed to scan advisor: %w", err)
		}
		advisors = append(advisors, a)
	}
	return advisors, rows.Err()
}

func scanStudent(row pgx.Row) (*student.Student, error) {
	var (
		s            student.Student
		id           int64
		login        string
		expectedTerm int64
	)
	err := row.Scan(&id, &login, &s.FirstName, &s.LastName, &s.Email,
		&expectedTerm, &s.CatalogYearID, &s.AdvisorID, &s.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	s.ID = shared.StudentID(id)
	s.LoginID = student.LoginID(login)
	s.ExpectedGradTerm = shared.TermID(expectedTerm)
	return &s, nil
}
