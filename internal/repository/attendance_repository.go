package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

const attendanceColumns = "id, enrollment_id, session_id, status, notes"

// AttendanceRepository persists attendance, one row per enrollment and session.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts a record or overwrites status and notes of the existing pair.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	if record.Status == "" {
		record.Status = models.AttendanceStatusPresent
	}
	query := `INSERT INTO attendance (enrollment_id, session_id, status, notes)
VALUES ($1, $2, $3, $4)
ON CONFLICT (enrollment_id, session_id)
DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes
RETURNING ` + attendanceColumns
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query, record.EnrollmentID, record.SessionID, record.Status, record.Notes); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

func (r *AttendanceRepository) FindByEnrollmentAndSession(ctx context.Context, enrollmentID, sessionID int64) (*models.Attendance, error) {
	var record models.Attendance
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE enrollment_id = $1 AND session_id = $2"
	if err := r.db.GetContext(ctx, &record, query, enrollmentID, sessionID); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Attendance, error) {
	var records []models.Attendance
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE enrollment_id = $1 ORDER BY id"
	if err := r.db.SelectContext(ctx, &records, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attendance by enrollment: %w", err)
	}
	return records, nil
}

func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.Attendance, error) {
	var records []models.Attendance
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE session_id = $1 ORDER BY id"
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance by session: %w", err)
	}
	return records, nil
}
