package memory

import (
	"context"
	"strings"
	"time"

	"github.com/noah-isme/artschool-api/internal/models"
)

// InstructorRepository stores instructors in memory.
type InstructorRepository struct {
	rows *table[models.Instructor]
}

// NewInstructorRepository constructs an empty InstructorRepository.
func NewInstructorRepository() *InstructorRepository {
	return &InstructorRepository{rows: newTable(func(i *models.Instructor, id int64) { i.ID = id })}
}

func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = time.Now().UTC()
	}
	r.rows.insert(instructor)
	return nil
}

func (r *InstructorRepository) FindByID(ctx context.Context, id int64) (*models.Instructor, error) {
	return r.rows.get(id)
}

func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	return r.rows.filter(nil), nil
}

func (r *InstructorRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	_, ok := r.rows.first(func(i models.Instructor) bool {
		return i.ID != excludeID && strings.EqualFold(i.Email, email)
	})
	return ok, nil
}

// ListBySpecialization matches the whole specialization, ignoring case.
func (r *InstructorRepository) ListBySpecialization(ctx context.Context, specialization string) ([]models.Instructor, error) {
	return r.rows.filter(func(i models.Instructor) bool {
		return strings.EqualFold(i.Specialization, specialization)
	}), nil
}

func (r *InstructorRepository) SearchByName(ctx context.Context, name string) ([]models.Instructor, error) {
	needle := strings.ToLower(name)
	return r.rows.filter(func(i models.Instructor) bool {
		return strings.Contains(strings.ToLower(i.FirstName), needle) ||
			strings.Contains(strings.ToLower(i.LastName), needle)
	}), nil
}

func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	return r.rows.replace(instructor.ID, *instructor)
}

func (r *InstructorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.rows.remove(id), nil
}

func (r *InstructorRepository) Count(ctx context.Context) (int, error) {
	return r.rows.count(), nil
}
