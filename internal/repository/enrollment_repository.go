package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

const enrollmentColumns = "id, student_id, course_id, status, enrolled_at"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment, defaulting to ACTIVE.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (student_id, course_id, status, enrolled_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, enrollment.StudentID, enrollment.CourseID, enrollment.Status,
		enrollment.EnrolledAt).Scan(&enrollment.ID); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, "SELECT "+enrollmentColumns+" FROM enrollments WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByStudentAndCourse returns the earliest enrollment for the pair regardless of status.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE student_id = $1 AND course_id = $2 ORDER BY id LIMIT 1"
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) List(ctx context.Context) ([]models.Enrollment, error) {
	return r.selectWhere(ctx, "list enrollments", "")
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return r.selectWhere(ctx, "list enrollments by student", "student_id = $1", studentID)
}

func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Enrollment, error) {
	return r.selectWhere(ctx, "list enrollments by course", "course_id = $1", courseID)
}

func (r *EnrollmentRepository) ListActive(ctx context.Context) ([]models.Enrollment, error) {
	return r.selectWhere(ctx, "list active enrollments", "status = $1", models.EnrollmentStatusActive)
}

func (r *EnrollmentRepository) selectWhere(ctx context.Context, op, where string, args ...interface{}) ([]models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM enrollments"
	if where != "" {
		query += " WHERE " + where
	}
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollments, nil
}

// CountActiveByCourse counts ACTIVE enrollments for a course.
func (r *EnrollmentRepository) CountActiveByCourse(ctx context.Context, courseID int64) (int, error) {
	var total int
	const query = "SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2"
	if err := r.db.GetContext(ctx, &total, query, courseID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return total, nil
}

// UpdateStatus changes only the status column.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = :status WHERE id = :id`
	return namedUpdate(ctx, r.db, query, map[string]interface{}{"id": id, "status": status}, "update enrollment status")
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "enrollments", id)
}

func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "enrollments")
}
