package memory

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/artschool-api/internal/models"
)

func TestStudentRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository()

	ana := &models.Student{FirstName: "Ana", LastName: "Lopez", Email: "ana@x.io", SkillLevel: models.SkillBeginner}
	ben := &models.Student{FirstName: "Ben", LastName: "Marsh", Email: "ben@x.io", SkillLevel: models.SkillAdvanced}
	require.NoError(t, repo.Create(ctx, ana))
	require.NoError(t, repo.Create(ctx, ben))
	assert.Equal(t, int64(1), ana.ID)
	assert.Equal(t, int64(2), ben.ID)
	assert.False(t, ana.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", found.FirstName)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	exists, err := repo.ExistsByEmail(ctx, "ANA@X.IO", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByEmail(ctx, "ana@x.io", ana.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	advanced, err := repo.ListBySkillLevel(ctx, models.SkillAdvanced)
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, ben.ID, advanced[0].ID)

	matches, err := repo.SearchByName(ctx, "mar")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Ben", matches[0].FirstName)

	// mutating the returned copy must not leak into the store
	found.FirstName = "Changed"
	again, err := repo.FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.FirstName)

	ok, err := repo.Delete(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, ana.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStudentRepositoryUpdateUnknown(t *testing.T) {
	repo := NewStudentRepository()
	err := repo.Update(context.Background(), &models.Student{ID: 7})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentRepositoryCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository()

	first := &models.Enrollment{StudentID: 1, CourseID: 10}
	second := &models.Enrollment{StudentID: 2, CourseID: 10}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &models.Enrollment{StudentID: 1, CourseID: 11}))
	assert.Equal(t, models.EnrollmentStatusActive, first.Status)

	count, err := repo.CountActiveByCourse(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.UpdateStatus(ctx, second.ID, models.EnrollmentStatusDropped))
	count, err = repo.CountActiveByCourse(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	dropped, err := repo.FindByStudentAndCourse(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, dropped.Status)
	assert.Equal(t, second.EnrolledAt, dropped.EnrolledAt)

	_, err = repo.FindByStudentAndCourse(ctx, 3, 10)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	byStudent, err := repo.ListByStudent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestPaymentRepositoryDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()

	payment := &models.Payment{EnrollmentID: 4, Amount: decimal.NewFromInt(150)}
	require.NoError(t, repo.Create(ctx, payment))
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.False(t, payment.PaymentDate.IsZero())

	payment.Status = models.PaymentStatusCompleted
	require.NoError(t, repo.Update(ctx, payment))

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	byEnrollment, err := repo.ListByEnrollment(ctx, 4)
	require.NoError(t, err)
	require.Len(t, byEnrollment, 1)
	assert.True(t, byEnrollment[0].Amount.Equal(decimal.NewFromInt(150)))
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()

	first, err := repo.Upsert(ctx, &models.Attendance{EnrollmentID: 1, SessionID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, first.Status)

	second, err := repo.Upsert(ctx, &models.Attendance{EnrollmentID: 1, SessionID: 2, Status: models.AttendanceStatusLate, Notes: "bus"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = repo.FindByEnrollmentAndSession(ctx, 1, 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	rows, err := repo.ListBySession(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendanceStatusLate, rows[0].Status)
	assert.Equal(t, "bus", rows[0].Notes)
}

func TestCourseRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository()
	require.NoError(t, repo.Create(ctx, &models.Course{Name: "Oil Painting", Term: models.TermSummer, SkillLevel: models.SkillBeginner, InstructorID: 1}))
	require.NoError(t, repo.Create(ctx, &models.Course{Name: "Figure Drawing", Term: models.TermWinter, SkillLevel: models.SkillAdvanced, InstructorID: 2}))

	summer, err := repo.ListByTerm(ctx, models.TermSummer)
	require.NoError(t, err)
	require.Len(t, summer, 1)
	assert.Equal(t, "Oil Painting", summer[0].Name)

	byInstructor, err := repo.ListByInstructor(ctx, 2)
	require.NoError(t, err)
	require.Len(t, byInstructor, 1)

	search, err := repo.SearchByName(ctx, "DRAW")
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, models.SkillAdvanced, search[0].SkillLevel)
}
