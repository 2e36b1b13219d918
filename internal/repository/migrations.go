package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migration is one forward schema step. Foreign keys are plain indexed
// columns: deleting a parent row leaves its dependents in place.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(50) NOT NULL,
    last_name VARCHAR(50) NOT NULL,
    email VARCHAR(255) NOT NULL,
    phone VARCHAR(20) NOT NULL DEFAULT '',
    date_of_birth VARCHAR(10) NOT NULL DEFAULT '',
    skill_level VARCHAR(20) NOT NULL DEFAULT 'BEGINNER',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    CONSTRAINT valid_student_level CHECK (skill_level IN ('BEGINNER', 'INTERMEDIATE', 'ADVANCED'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_students_email ON students(LOWER(email));

CREATE TABLE IF NOT EXISTS instructors (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(50) NOT NULL,
    last_name VARCHAR(50) NOT NULL,
    email VARCHAR(255) NOT NULL,
    phone VARCHAR(20) NOT NULL DEFAULT '',
    specialization VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_instructors_email ON instructors(LOWER(email));

CREATE TABLE IF NOT EXISTS courses (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    term VARCHAR(10) NOT NULL,
    skill_level VARCHAR(20) NOT NULL,
    instructor_id BIGINT NOT NULL,
    max_capacity INTEGER NOT NULL DEFAULT 20,
    fee NUMERIC(12,2) NOT NULL DEFAULT 0,
    start_date VARCHAR(10) NOT NULL DEFAULT '',
    end_date VARCHAR(10) NOT NULL DEFAULT '',
    CONSTRAINT valid_course_term CHECK (term IN ('SUMMER', 'WINTER')),
    CONSTRAINT valid_course_capacity CHECK (max_capacity > 0)
);
CREATE INDEX IF NOT EXISTS idx_courses_instructor ON courses(instructor_id);

CREATE TABLE IF NOT EXISTS sessions (
    id BIGSERIAL PRIMARY KEY,
    course_id BIGINT NOT NULL,
    session_date VARCHAR(10) NOT NULL,
    start_time VARCHAR(5) NOT NULL DEFAULT '',
    end_time VARCHAR(5) NOT NULL DEFAULT '',
    topic VARCHAR(200) NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sessions_course ON sessions(course_id);

CREATE TABLE IF NOT EXISTS enrollments (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL,
    course_id BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
    enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    CONSTRAINT valid_enrollment_status CHECK (status IN ('ACTIVE', 'COMPLETED', 'DROPPED'))
);
CREATE INDEX IF NOT EXISTS idx_enrollments_course_status ON enrollments(course_id, status);
CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(student_id);

CREATE TABLE IF NOT EXISTS attendance (
    id BIGSERIAL PRIMARY KEY,
    enrollment_id BIGINT NOT NULL,
    session_id BIGINT NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'PRESENT',
    notes TEXT NOT NULL DEFAULT '',
    UNIQUE (enrollment_id, session_id)
);
CREATE INDEX IF NOT EXISTS idx_attendance_session ON attendance(session_id);

CREATE TABLE IF NOT EXISTS skill_tests (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL,
    tested_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    score INTEGER NOT NULL,
    assigned_level VARCHAR(20) NOT NULL,
    notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_skill_tests_student ON skill_tests(student_id);

CREATE TABLE IF NOT EXISTS payments (
    id BIGSERIAL PRIMARY KEY,
    enrollment_id BIGINT NOT NULL,
    amount NUMERIC(12,2) NOT NULL,
    payment_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    payment_method VARCHAR(50),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    CONSTRAINT valid_payment_status CHECK (status IN ('PENDING', 'COMPLETED', 'REFUNDED'))
);
CREATE INDEX IF NOT EXISTS idx_payments_enrollment ON payments(enrollment_id);
`

// Migrations returns the schema steps in version order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_school_tables", UpSQL: migration001Up},
	}
}

// Migrator applies pending migrations and records them in schema_migrations.
type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
}

// NewMigrator constructs a Migrator over the built-in migrations.
func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{db: db, migrations: Migrations()}
}

// Migrate applies every migration not yet recorded, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	const ensure = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`
	if _, err := m.db.ExecContext(ctx, ensure); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var applied []int
	if err := m.db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[int]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", mig.Version, err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, mig.UpSQL); err != nil {
		return fmt.Errorf("apply migration %d: %w", mig.Version, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", mig.Version, mig.Name); err != nil {
		return fmt.Errorf("record migration %d: %w", mig.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", mig.Version, err)
	}
	commit = true
	return nil
}
