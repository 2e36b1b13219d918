package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

// SkillTestRepository stores graded skill tests.
type SkillTestRepository struct {
	db *sqlx.DB
}

// NewSkillTestRepository constructs a SkillTestRepository.
func NewSkillTestRepository(db *sqlx.DB) *SkillTestRepository {
	return &SkillTestRepository{db: db}
}

func (r *SkillTestRepository) Create(ctx context.Context, test *models.SkillTest) error {
	if test.TestedAt.IsZero() {
		test.TestedAt = time.Now().UTC()
	}
	const query = `INSERT INTO skill_tests (student_id, tested_at, score, assigned_level, notes)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, test.StudentID, test.TestedAt, test.Score,
		test.AssignedLevel, test.Notes).Scan(&test.ID); err != nil {
		return fmt.Errorf("create skill test: %w", err)
	}
	return nil
}

func (r *SkillTestRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.SkillTest, error) {
	var tests []models.SkillTest
	const query = "SELECT id, student_id, tested_at, score, assigned_level, notes FROM skill_tests WHERE student_id = $1 ORDER BY id"
	if err := r.db.SelectContext(ctx, &tests, query, studentID); err != nil {
		return nil, fmt.Errorf("list skill tests: %w", err)
	}
	return tests, nil
}
