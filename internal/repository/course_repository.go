package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

const courseColumns = "id, name, description, term, skill_level, instructor_id, max_capacity, fee, start_date, end_date"

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a course and stores the generated id on it.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (name, description, term, skill_level, instructor_id, max_capacity, fee, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, course.Name, course.Description, course.Term, course.SkillLevel,
		course.InstructorID, course.MaxCapacity, course.Fee, course.StartDate, course.EndDate).Scan(&course.ID); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	return r.selectWhere(ctx, "list courses", "")
}

func (r *CourseRepository) ListByTerm(ctx context.Context, term models.Term) ([]models.Course, error) {
	return r.selectWhere(ctx, "list courses by term", "term = $1", term)
}

func (r *CourseRepository) ListBySkillLevel(ctx context.Context, level models.SkillLevel) ([]models.Course, error) {
	return r.selectWhere(ctx, "list courses by level", "skill_level = $1", level)
}

func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	return r.selectWhere(ctx, "list courses by instructor", "instructor_id = $1", instructorID)
}

func (r *CourseRepository) SearchByName(ctx context.Context, name string) ([]models.Course, error) {
	return r.selectWhere(ctx, "search courses", `LOWER(name) LIKE $1 ESCAPE '\'`, containsPattern(name))
}

func (r *CourseRepository) selectWhere(ctx context.Context, op, where string, args ...interface{}) ([]models.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses"
	if where != "" {
		query += " WHERE " + where
	}
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return courses, nil
}

func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET name = :name, description = :description, term = :term, skill_level = :skill_level, instructor_id = :instructor_id, max_capacity = :max_capacity, fee = :fee, start_date = :start_date, end_date = :end_date WHERE id = :id`
	return namedUpdate(ctx, r.db, query, course, "update course")
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "courses", id)
}

func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "courses")
}
