package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

const sessionColumns = "id, course_id, session_date, start_time, end_time, topic"

// SessionRepository manages persistence for course sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	const query = `INSERT INTO sessions (course_id, session_date, start_time, end_time, topic)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, session.CourseID, session.Date, session.StartTime,
		session.EndTime, session.Topic).Scan(&session.ID); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	var session models.Session
	if err := r.db.GetContext(ctx, &session, "SELECT "+sessionColumns+" FROM sessions WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByCourse returns a course's sessions in chronological order.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Session, error) {
	var sessions []models.Session
	query := "SELECT " + sessionColumns + " FROM sessions WHERE course_id = $1 ORDER BY session_date, start_time, id"
	if err := r.db.SelectContext(ctx, &sessions, query, courseID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "sessions", id)
}
