package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/lock"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

// Repositories groups the persistence backends the services run on. The
// memory and postgres packages both satisfy every field.
type Repositories struct {
	Students    studentRepository
	SkillTests  skillTestRepository
	Instructors instructorRepository
	Courses     courseRepository
	Sessions    sessionRepository
	Enrollments enrollmentRepository
	Payments    paymentRepository
	Attendance  attendanceRepository
}

// Options carries the shared collaborators and tunables.
type Options struct {
	Cache                 *CacheService
	Locker                lock.Locker
	Metrics               *MetricsService
	Validator             *validator.Validate
	Logger                *zap.Logger
	DefaultCourseCapacity int
	DashboardCacheTTL     time.Duration
}

// Services is the wired set of use-case services.
type Services struct {
	Students    *StudentService
	Instructors *InstructorService
	Courses     *CourseService
	Enrollments *EnrollmentService
	Attendance  *AttendanceService
	Reports     *ReportService
}

// NewServices wires every service over repos. All services share one
// validator and one locker so registrations, enroll, payment and attendance
// writes are serialised against each other.
func NewServices(repos Repositories, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Validator == nil {
		opts.Validator = NewValidator()
	}
	if opts.Locker == nil {
		opts.Locker = lock.NewLocal()
	}

	reports := NewReportService(ReportServiceParams{
		Students:    repos.Students,
		Instructors: repos.Instructors,
		Courses:     repos.Courses,
		Enrollments: repos.Enrollments,
		Payments:    repos.Payments,
		Cache:       opts.Cache,
		Logger:      opts.Logger.Named("reports"),
		Config:      ReportServiceConfig{CacheTTL: opts.DashboardCacheTTL},
	})

	return &Services{
		Students:    NewStudentService(repos.Students, repos.SkillTests, repos.Enrollments, opts.Metrics, reports, opts.Locker, opts.Validator, opts.Logger.Named("students")),
		Instructors: NewInstructorService(repos.Instructors, reports, opts.Locker, opts.Validator, opts.Logger.Named("instructors")),
		Courses: NewCourseService(repos.Courses, repos.Sessions, repos.Instructors, repos.Enrollments, reports,
			CourseServiceConfig{DefaultCapacity: opts.DefaultCourseCapacity}, opts.Validator, opts.Logger.Named("courses")),
		Enrollments: NewEnrollmentService(EnrollmentServiceParams{
			Enrollments: repos.Enrollments,
			Payments:    repos.Payments,
			Students:    repos.Students,
			Courses:     repos.Courses,
			Locker:      opts.Locker,
			Metrics:     opts.Metrics,
			Reports:     reports,
			Validator:   opts.Validator,
			Logger:      opts.Logger.Named("enrollments"),
		}),
		Attendance: NewAttendanceService(repos.Attendance, repos.Enrollments, repos.Sessions, opts.Locker, opts.Validator, opts.Logger.Named("attendance")),
		Reports:    reports,
	}
}

// acquireKey takes key on locker, reporting a failure as ErrLocked.
func acquireKey(ctx context.Context, locker lock.Locker, logger *zap.Logger, key string) (func(), error) {
	release, err := locker.Acquire(ctx, key)
	if err != nil {
		logger.Warn("lock not acquired", zap.String("key", key), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrLocked.Code, appErrors.ErrLocked.Status, appErrors.ErrLocked.Message)
	}
	return release, nil
}

// emailLockKey guards the uniqueness check and write for one address. Emails
// compare case-insensitively, so the key is lowercased.
func emailLockKey(kind, email string) string {
	return fmt.Sprintf("email:%s:%s", kind, strings.ToLower(email))
}

func studentLockKey(id int64) string { return fmt.Sprintf("student:%d", id) }
