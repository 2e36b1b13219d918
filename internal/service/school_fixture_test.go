package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/lock"
	"github.com/noah-isme/artschool-api/internal/models"
	"github.com/noah-isme/artschool-api/internal/repository/memory"
)

// school wires every service over the in-memory backend.
type school struct {
	students    *StudentService
	instructors *InstructorService
	courses     *CourseService
	enrollments *EnrollmentService
	attendance  *AttendanceService
	reports     *ReportService

	enrollmentRepo *memory.EnrollmentRepository
	paymentRepo    *memory.PaymentRepository
	metrics        *MetricsService
}

func newSchool(t *testing.T) *school {
	t.Helper()
	studentRepo := memory.NewStudentRepository()
	instructorRepo := memory.NewInstructorRepository()
	courseRepo := memory.NewCourseRepository()
	sessionRepo := memory.NewSessionRepository()
	enrollmentRepo := memory.NewEnrollmentRepository()
	paymentRepo := memory.NewPaymentRepository()
	metrics := NewMetricsService()
	locker := lock.NewLocal()
	validate := NewValidator()
	logger := zap.NewNop()

	reports := NewReportService(ReportServiceParams{
		Students:    studentRepo,
		Instructors: instructorRepo,
		Courses:     courseRepo,
		Enrollments: enrollmentRepo,
		Payments:    paymentRepo,
		Logger:      logger,
	})

	return &school{
		students:    NewStudentService(studentRepo, memory.NewSkillTestRepository(), enrollmentRepo, metrics, reports, locker, validate, logger),
		instructors: NewInstructorService(instructorRepo, reports, locker, validate, logger),
		courses:     NewCourseService(courseRepo, sessionRepo, instructorRepo, enrollmentRepo, reports, CourseServiceConfig{}, validate, logger),
		enrollments: NewEnrollmentService(EnrollmentServiceParams{
			Enrollments: enrollmentRepo,
			Payments:    paymentRepo,
			Students:    studentRepo,
			Courses:     courseRepo,
			Locker:      locker,
			Metrics:     metrics,
			Reports:     reports,
			Validator:   validate,
			Logger:      logger,
		}),
		attendance:     NewAttendanceService(memory.NewAttendanceRepository(), enrollmentRepo, sessionRepo, locker, validate, logger),
		reports:        reports,
		enrollmentRepo: enrollmentRepo,
		paymentRepo:    paymentRepo,
		metrics:        metrics,
	}
}

func (s *school) instructor(t *testing.T, email string) *models.Instructor {
	t.Helper()
	instructor, err := s.instructors.Register(context.Background(), InstructorRequest{
		FirstName:      "Iris",
		LastName:       "Painter",
		Email:          email,
		Specialization: "Oil Painting",
	})
	require.NoError(t, err)
	return instructor
}

func (s *school) course(t *testing.T, instructorID int64, level models.SkillLevel, capacity int, fee string) *models.Course {
	t.Helper()
	course, err := s.courses.CreateCourse(context.Background(), CourseRequest{
		Name:         "Course " + string(level),
		Term:         models.TermSummer,
		SkillLevel:   level,
		InstructorID: instructorID,
		MaxCapacity:  capacity,
		Fee:          decimal.RequireFromString(fee),
		StartDate:    "2026-06-01",
		EndDate:      "2026-08-31",
	})
	require.NoError(t, err)
	return course
}

func (s *school) student(t *testing.T, first, email string) *models.Student {
	t.Helper()
	student, err := s.students.Register(context.Background(), RegisterStudentRequest{
		FirstName: first,
		LastName:  "Student",
		Email:     email,
	})
	require.NoError(t, err)
	return student
}
