package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

const instructorColumns = "id, first_name, last_name, email, phone, specialization, created_at"

// InstructorRepository manages persistence for instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// Create inserts an instructor and stores the generated id on it.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO instructors (first_name, last_name, email, phone, specialization, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, instructor.FirstName, instructor.LastName, instructor.Email,
		instructor.Phone, instructor.Specialization, instructor.CreatedAt).Scan(&instructor.ID); err != nil {
		return emailConflict(fmt.Errorf("create instructor: %w", err), "instructor email already registered")
	}
	return nil
}

func (r *InstructorRepository) FindByID(ctx context.Context, id int64) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, "SELECT "+instructorColumns+" FROM instructors WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, "SELECT "+instructorColumns+" FROM instructors ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// ExistsByEmail checks case-insensitively whether an email is taken, optionally excluding an id.
func (r *InstructorRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM instructors WHERE LOWER(email) = LOWER($1)"
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
		return false, fmt.Errorf("check instructor email: %w", err)
	}
	return true, nil
}

func (r *InstructorRepository) ListBySpecialization(ctx context.Context, specialization string) ([]models.Instructor, error) {
	var instructors []models.Instructor
	query := "SELECT " + instructorColumns + " FROM instructors WHERE LOWER(specialization) = LOWER($1) ORDER BY id"
	if err := r.db.SelectContext(ctx, &instructors, query, specialization); err != nil {
		return nil, fmt.Errorf("list instructors by specialization: %w", err)
	}
	return instructors, nil
}

func (r *InstructorRepository) SearchByName(ctx context.Context, name string) ([]models.Instructor, error) {
	query := "SELECT " + instructorColumns + " FROM instructors WHERE LOWER(first_name) LIKE $1 ESCAPE '\\' OR LOWER(last_name) LIKE $1 ESCAPE '\\' ORDER BY id"
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, containsPattern(name)); err != nil {
		return nil, fmt.Errorf("search instructors: %w", err)
	}
	return instructors, nil
}

func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	const query = `UPDATE instructors SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, specialization = :specialization WHERE id = :id`
	return emailConflict(namedUpdate(ctx, r.db, query, instructor, "update instructor"), "instructor email already registered")
}

func (r *InstructorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "instructors", id)
}

func (r *InstructorRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "instructors")
}
