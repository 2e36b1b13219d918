package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/artschool-api/internal/models"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

func TestSchoolTermWalkthrough(t *testing.T) {
	s := newSchool(t)
	ctx := context.Background()

	i1 := s.instructor(t, "iris@school.test")
	c1 := s.course(t, i1.ID, models.SkillIntermediate, 1, "250.00")

	s1 := s.student(t, "Ana", "ana@school.test")
	assert.Equal(t, models.SkillBeginner, s1.SkillLevel)

	_, err := s.enrollments.Enroll(ctx, EnrollRequest{StudentID: s1.ID, CourseID: c1.ID})
	require.True(t, errors.Is(err, appErrors.ErrSkillMismatch))

	test, err := s.students.ConductSkillTest(ctx, s1.ID, SkillTestRequest{Score: 60})
	require.NoError(t, err)
	assert.Equal(t, models.SkillIntermediate, test.AssignedLevel)

	e1, err := s.enrollments.Enroll(ctx, EnrollRequest{StudentID: s1.ID, CourseID: c1.ID})
	require.NoError(t, err)
	payments, err := s.enrollments.Payments(ctx, e1.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusPending, payments[0].Status)
	assert.Equal(t, "250.00", payments[0].Amount.StringFixed(2))

	s2 := s.student(t, "Ben", "ben@school.test")
	_, err = s.students.ConductSkillTest(ctx, s2.ID, SkillTestRequest{Score: 80})
	require.NoError(t, err)
	reloaded, err := s.students.Get(ctx, s2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SkillAdvanced, reloaded.SkillLevel)

	s3 := s.student(t, "Cleo", "cleo@school.test")
	_, err = s.students.Update(ctx, s3.ID, UpdateStudentRequest{FirstName: "Cleo", LastName: "Student", Email: "cleo@school.test", SkillLevel: models.SkillIntermediate})
	require.NoError(t, err)
	_, err = s.enrollments.Enroll(ctx, EnrollRequest{StudentID: s3.ID, CourseID: c1.ID})
	assert.True(t, errors.Is(err, appErrors.ErrCourseFull))

	paid, err := s.enrollments.ProcessPayment(ctx, e1.ID, ProcessPaymentRequest{Method: "CARD"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, paid.Status)

	dashboard, _, err := s.reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dashboard.Students)
	assert.Equal(t, 1, dashboard.ActiveEnrollments)
	assert.Zero(t, dashboard.PendingPayments)
	assert.Zero(t, dashboard.AvailableCourses)
	assert.Len(t, dashboard.StudentsNotEnrolled, 2)
}
