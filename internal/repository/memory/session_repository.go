package memory

import (
	"context"

	"github.com/noah-isme/artschool-api/internal/models"
)

// SessionRepository stores course sessions in memory.
type SessionRepository struct {
	rows *table[models.Session]
}

// NewSessionRepository constructs an empty SessionRepository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{rows: newTable(func(s *models.Session, id int64) { s.ID = id })}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.rows.insert(session)
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	return r.rows.get(id)
}

func (r *SessionRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Session, error) {
	return r.rows.filter(func(s models.Session) bool { return s.CourseID == courseID }), nil
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.rows.remove(id), nil
}
