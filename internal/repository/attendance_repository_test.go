package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/artschool-api/internal/models"
)

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (enrollment_id, session_id)")).
		WithArgs(int64(1), int64(2), models.AttendanceStatusPresent, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_id", "session_id", "status", "notes"}).
			AddRow(9, 1, 2, "PRESENT", ""))

	stored, err := repo.Upsert(context.Background(), &models.Attendance{EnrollmentID: 1, SessionID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(9), stored.ID)
	assert.Equal(t, models.AttendanceStatusPresent, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
