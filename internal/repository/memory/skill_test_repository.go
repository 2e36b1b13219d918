package memory

import (
	"context"
	"time"

	"github.com/noah-isme/artschool-api/internal/models"
)

// SkillTestRepository stores skill test results in memory.
type SkillTestRepository struct {
	rows *table[models.SkillTest]
}

// NewSkillTestRepository constructs an empty SkillTestRepository.
func NewSkillTestRepository() *SkillTestRepository {
	return &SkillTestRepository{rows: newTable(func(t *models.SkillTest, id int64) { t.ID = id })}
}

func (r *SkillTestRepository) Create(ctx context.Context, test *models.SkillTest) error {
	if test.TestedAt.IsZero() {
		test.TestedAt = time.Now().UTC()
	}
	r.rows.insert(test)
	return nil
}

func (r *SkillTestRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.SkillTest, error) {
	return r.rows.filter(func(t models.SkillTest) bool { return t.StudentID == studentID }), nil
}
