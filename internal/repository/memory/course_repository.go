package memory

import (
	"context"
	"strings"

	"github.com/noah-isme/artschool-api/internal/models"
)

// CourseRepository stores courses in memory.
type CourseRepository struct {
	rows *table[models.Course]
}

// NewCourseRepository constructs an empty CourseRepository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{rows: newTable(func(c *models.Course, id int64) { c.ID = id })}
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	r.rows.insert(course)
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.rows.get(id)
}

func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	return r.rows.filter(nil), nil
}

func (r *CourseRepository) ListByTerm(ctx context.Context, term models.Term) ([]models.Course, error) {
	return r.rows.filter(func(c models.Course) bool { return c.Term == term }), nil
}

func (r *CourseRepository) ListBySkillLevel(ctx context.Context, level models.SkillLevel) ([]models.Course, error) {
	return r.rows.filter(func(c models.Course) bool { return c.SkillLevel == level }), nil
}

func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	return r.rows.filter(func(c models.Course) bool { return c.InstructorID == instructorID }), nil
}

func (r *CourseRepository) SearchByName(ctx context.Context, name string) ([]models.Course, error) {
	needle := strings.ToLower(name)
	return r.rows.filter(func(c models.Course) bool {
		return strings.Contains(strings.ToLower(c.Name), needle)
	}), nil
}

func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.rows.replace(course.ID, *course)
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.rows.remove(id), nil
}

func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	return r.rows.count(), nil
}
