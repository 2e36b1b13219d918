package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/noah-isme/artschool-api/internal/models"
)

// EnrollmentRepository stores enrollments in memory.
type EnrollmentRepository struct {
	rows *table[models.Enrollment]
}

// NewEnrollmentRepository constructs an empty EnrollmentRepository.
func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{rows: newTable(func(e *models.Enrollment, id int64) { e.ID = id })}
}

// Create stores the enrollment, defaulting status to ACTIVE and stamping EnrolledAt.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	r.rows.insert(enrollment)
	return nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	return r.rows.get(id)
}

func (r *EnrollmentRepository) List(ctx context.Context) ([]models.Enrollment, error) {
	return r.rows.filter(nil), nil
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return r.rows.filter(func(e models.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Enrollment, error) {
	return r.rows.filter(func(e models.Enrollment) bool { return e.CourseID == courseID }), nil
}

func (r *EnrollmentRepository) ListActive(ctx context.Context) ([]models.Enrollment, error) {
	return r.rows.filter(func(e models.Enrollment) bool { return e.Status == models.EnrollmentStatusActive }), nil
}

// FindByStudentAndCourse returns the first row for the pair regardless of status.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	row, ok := r.rows.first(func(e models.Enrollment) bool {
		return e.StudentID == studentID && e.CourseID == courseID
	})
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

// CountActiveByCourse counts ACTIVE enrollments only.
func (r *EnrollmentRepository) CountActiveByCourse(ctx context.Context, courseID int64) (int, error) {
	return r.rows.countWhere(func(e models.Enrollment) bool {
		return e.CourseID == courseID && e.Status == models.EnrollmentStatusActive
	}), nil
}

// UpdateStatus leaves EnrolledAt untouched.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	current, err := r.rows.get(id)
	if err != nil {
		return err
	}
	current.Status = status
	return r.rows.replace(id, *current)
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.rows.remove(id), nil
}

func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	return r.rows.count(), nil
}
