package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator handles database migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if it doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	_, err := m.conn.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

// GetAppliedMigrations returns all applied migrations.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time

		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}

		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, isApplied := applied[mig.Version]; isApplied {
			continue
		}

		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}

			insertQuery := fmt.Sprintf(
				"INSERT INTO %s (version, name) VALUES ($1, $2)",
				m.tableName,
			)
			_, err := tx.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_catalog",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_students_and_plans",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_schedule",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS courses (
	course_id      BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	subject        TEXT NOT NULL,
	catalog_number TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	credit_hours   INTEGER NOT NULL DEFAULT 3,
	UNIQUE (subject, catalog_number)
);

CREATE TABLE IF NOT EXISTS course_prereqs (
	course_id        BIGINT NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
	prereq_course_id BIGINT NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
	min_grade        TEXT,
	PRIMARY KEY (course_id, prereq_course_id)
);

CREATE TABLE IF NOT EXISTS programs (
	program_id      BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name            TEXT NOT NULL,
	program_type    TEXT NOT NULL DEFAULT 'major',
	catalog_year_id BIGINT NOT NULL DEFAULT 1,
	UNIQUE (name, program_type)
);

CREATE TABLE IF NOT EXISTS program_courses (
	program_id BIGINT NOT NULL REFERENCES programs(program_id) ON DELETE CASCADE,
	course_id  BIGINT NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
	PRIMARY KEY (program_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_courses_subject ON courses(subject);
CREATE INDEX IF NOT EXISTS idx_course_prereqs_course ON course_prereqs(course_id);
`

const migration001Down = `
DROP TABLE IF EXISTS program_courses;
DROP TABLE IF EXISTS programs;
DROP TABLE IF EXISTS course_prereqs;
DROP TABLE IF EXISTS courses;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS advisors (
	advisor_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS terms (
	term_id    BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	start_date DATE,
	end_date   DATE
);

CREATE TABLE IF NOT EXISTS students (
	student_id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	login_id           TEXT NOT NULL UNIQUE,
	first_name         TEXT NOT NULL DEFAULT '',
	last_name          TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	expected_grad_term BIGINT REFERENCES terms(term_id),
	catalog_year_id    BIGINT NOT NULL DEFAULT 1,
	advisor_id         BIGINT REFERENCES advisors(advisor_id),
	created_at         TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS student_programs (
	student_id BIGINT NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
	program_id BIGINT NOT NULL REFERENCES programs(program_id) ON DELETE CASCADE,
	is_primary BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (student_id, program_id)
);

CREATE TABLE IF NOT EXISTS degree_plans (
	plan_id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	student_id       BIGINT NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
	catalog_year_id  BIGINT NOT NULL DEFAULT 1,
	target_grad_term BIGINT REFERENCES terms(term_id),
	created_at       TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_degree_plans_student ON degree_plans(student_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_student_primary_program
	ON student_programs(student_id) WHERE is_primary;
`

const migration002Down = `
DROP TABLE IF EXISTS degree_plans;
DROP TABLE IF EXISTS student_programs;
DROP TABLE IF EXISTS students;
DROP TABLE IF EXISTS terms;
DROP TABLE IF EXISTS advisors;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS sections (
	section_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	course_id  BIGINT NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
	term_id    BIGINT REFERENCES terms(term_id),
	class_num  TEXT NOT NULL DEFAULT '',
	campus     TEXT NOT NULL DEFAULT '',
	capacity   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS meetings (
	meeting_id  BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	section_id  BIGINT NOT NULL REFERENCES sections(section_id) ON DELETE CASCADE,
	days_of_week TEXT NOT NULL,
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS planned_courses (
	planned_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	plan_id    BIGINT NOT NULL REFERENCES degree_plans(plan_id) ON DELETE CASCADE,
	term_id    BIGINT NOT NULL,
	course_id  BIGINT REFERENCES courses(course_id),
	section_id BIGINT REFERENCES sections(section_id),
	CHECK ((course_id IS NULL) <> (section_id IS NULL))
);

CREATE TABLE IF NOT EXISTS enrollments (
	enrollment_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	student_id    BIGINT NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
	section_id    BIGINT NOT NULL REFERENCES sections(section_id) ON DELETE CASCADE,
	grade         TEXT,
	status        TEXT NOT NULL DEFAULT 'enrolled',
	UNIQUE (student_id, section_id)
);

CREATE INDEX IF NOT EXISTS idx_sections_course ON sections(course_id);
CREATE INDEX IF NOT EXISTS idx_meetings_section ON meetings(section_id);
CREATE INDEX IF NOT EXISTS idx_planned_courses_plan ON planned_courses(plan_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(student_id);
`

const migration003Down = `
DROP TABLE IF EXISTS enrollments;
DROP TABLE IF EXISTS planned_courses;
DROP TABLE IF EXISTS meetings;
DROP TABLE IF EXISTS sections;
`
