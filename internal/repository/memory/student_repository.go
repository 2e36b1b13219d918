package memory

import (
	"context"
	"strings"
	"time"

	"github.com/noah-isme/artschool-api/internal/models"
)

// StudentRepository stores students in memory.
type StudentRepository struct {
	rows *table[models.Student]
}

// NewStudentRepository constructs an empty StudentRepository.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{rows: newTable(func(s *models.Student, id int64) { s.ID = id })}
}

// Create assigns an id and stores the student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	r.rows.insert(student)
	return nil
}

// FindByID returns sql.ErrNoRows when the id is unknown.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.rows.get(id)
}

func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	return r.rows.filter(nil), nil
}

// ExistsByEmail matches case-insensitively, optionally ignoring one student.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	_, ok := r.rows.first(func(s models.Student) bool {
		return s.ID != excludeID && strings.EqualFold(s.Email, email)
	})
	return ok, nil
}

func (r *StudentRepository) ListBySkillLevel(ctx context.Context, level models.SkillLevel) ([]models.Student, error) {
	return r.rows.filter(func(s models.Student) bool { return s.SkillLevel == level }), nil
}

// SearchByName matches a case-insensitive substring of the first or last name.
func (r *StudentRepository) SearchByName(ctx context.Context, name string) ([]models.Student, error) {
	needle := strings.ToLower(name)
	return r.rows.filter(func(s models.Student) bool {
		return strings.Contains(strings.ToLower(s.FirstName), needle) ||
			strings.Contains(strings.ToLower(s.LastName), needle)
	}), nil
}

func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.rows.replace(student.ID, *student)
}

func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.rows.remove(id), nil
}

func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	return r.rows.count(), nil
}
