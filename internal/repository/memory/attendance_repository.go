package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/noah-isme/artschool-api/internal/models"
)

// AttendanceRepository stores attendance rows in memory.
type AttendanceRepository struct {
	upsertMu sync.Mutex
	rows     *table[models.Attendance]
}

// NewAttendanceRepository constructs an empty AttendanceRepository.
func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{rows: newTable(func(a *models.Attendance, id int64) { a.ID = id })}
}

// Upsert inserts a record or overwrites status and notes of the existing pair.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	if record.Status == "" {
		record.Status = models.AttendanceStatusPresent
	}
	r.upsertMu.Lock()
	defer r.upsertMu.Unlock()

	existing, err := r.FindByEnrollmentAndSession(ctx, record.EnrollmentID, record.SessionID)
	if err == sql.ErrNoRows {
		stored := *record
		r.rows.insert(&stored)
		return &stored, nil
	}
	existing.Status = record.Status
	existing.Notes = record.Notes
	if err := r.rows.replace(existing.ID, *existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *AttendanceRepository) FindByEnrollmentAndSession(ctx context.Context, enrollmentID, sessionID int64) (*models.Attendance, error) {
	row, ok := r.rows.first(func(a models.Attendance) bool {
		return a.EnrollmentID == enrollmentID && a.SessionID == sessionID
	})
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Attendance, error) {
	return r.rows.filter(func(a models.Attendance) bool { return a.EnrollmentID == enrollmentID }), nil
}

func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.Attendance, error) {
	return r.rows.filter(func(a models.Attendance) bool { return a.SessionID == sessionID }), nil
}
