package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

const studentColumns = "id, first_name, last_name, email, phone, date_of_birth, skill_level, created_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student and stores the generated id on it.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (first_name, last_name, email, phone, date_of_birth, skill_level, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, student.FirstName, student.LastName, student.Email, student.Phone,
		student.DateOfBirth, student.SkillLevel, student.CreatedAt).Scan(&student.ID); err != nil {
		return emailConflict(fmt.Errorf("create student: %w", err), "student email already registered")
	}
	return nil
}

// FindByID fetches a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// List returns every student ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, "SELECT "+studentColumns+" FROM students ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ExistsByEmail checks case-insensitively whether an email is taken, optionally excluding an id.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM students WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student email: %w", err)
	}
	return true, nil
}

func (r *StudentRepository) ListBySkillLevel(ctx context.Context, level models.SkillLevel) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, "SELECT "+studentColumns+" FROM students WHERE skill_level = $1 ORDER BY id", level); err != nil {
		return nil, fmt.Errorf("list students by level: %w", err)
	}
	return students, nil
}

func (r *StudentRepository) SearchByName(ctx context.Context, name string) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE LOWER(first_name) LIKE $1 ESCAPE '\\' OR LOWER(last_name) LIKE $1 ESCAPE '\\' ORDER BY id"
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, containsPattern(name)); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

// Update overwrites the mutable student columns.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, date_of_birth = :date_of_birth, skill_level = :skill_level WHERE id = :id`
	return emailConflict(namedUpdate(ctx, r.db, query, student, "update student"), "student email already registered")
}

// Delete removes a student and reports whether a row existed.
func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "students", id)
}

func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "students")
}
