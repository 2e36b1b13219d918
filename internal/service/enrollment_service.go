package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/lock"
	"github.com/noah-isme/artschool-api/internal/models"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	List(ctx context.Context) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Enrollment, error)
	ListActive(ctx context.Context) ([]models.Enrollment, error)
	CountActiveByCourse(ctx context.Context, courseID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context) ([]models.Payment, error)
	ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Payment, error)
	ListPending(ctx context.Context) ([]models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// EnrollRequest identifies the student and course to bind. Ids are not
// validated; an unknown or missing one surfaces as NOT_FOUND.
type EnrollRequest struct {
	StudentID int64 `json:"student_id"`
	CourseID  int64 `json:"course_id"`
}

// ProcessPaymentRequest settles the pending payment of an enrollment.
type ProcessPaymentRequest struct {
	Method string `json:"method" validate:"required,max=50"`
}

// EnrollmentServiceParams groups constructor dependencies.
type EnrollmentServiceParams struct {
	Enrollments enrollmentRepository
	Payments    paymentRepository
	Students    studentReader
	Courses     courseReader
	Locker      lock.Locker
	Metrics     *MetricsService
	Reports     dashboardInvalidator
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// EnrollmentService runs the enrollment workflow and payment processing.
type EnrollmentService struct {
	enrollments enrollmentRepository
	payments    paymentRepository
	students    studentReader
	courses     courseReader
	locker      lock.Locker
	metrics     *MetricsService
	reports     dashboardInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs the service. A nil Locker falls back to an
// in-process one.
func NewEnrollmentService(params EnrollmentServiceParams) *EnrollmentService {
	if params.Locker == nil {
		params.Locker = lock.NewLocal()
	}
	if params.Validator == nil {
		params.Validator = NewValidator()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: params.Enrollments,
		payments:    params.Payments,
		students:    params.Students,
		courses:     params.Courses,
		locker:      params.Locker,
		metrics:     params.Metrics,
		reports:     params.Reports,
		validator:   params.Validator,
		logger:      params.Logger,
	}
}

func courseLockKey(courseID int64) string         { return fmt.Sprintf("course:%d", courseID) }
func enrollmentLockKey(enrollmentID int64) string { return fmt.Sprintf("enrollment:%d", enrollmentID) }

func (s *EnrollmentService) acquire(ctx context.Context, key string) (func(), error) {
	return acquireKey(ctx, s.locker, s.logger, key)
}

// Enroll binds a student to a course and opens a PENDING payment for the
// course fee. Checks run in order: student exists, course exists, levels
// match, no prior enrollment of any status, an ACTIVE seat is free. The check
// and both inserts run under a per-course lock; if the payment insert fails
// the enrollment is deleted again.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (enrollment *models.Enrollment, err error) {
	defer func() { s.metrics.RecordEnrollment(enrollmentResult(err)) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	release, err := s.acquire(ctx, courseLockKey(req.CourseID))
	if err != nil {
		return nil, err
	}
	defer release()

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, notFoundOr(err, "course not found", "failed to load course")
	}
	if student.SkillLevel != course.SkillLevel {
		return nil, appErrors.Clone(appErrors.ErrSkillMismatch,
			fmt.Sprintf("student level %s does not match course level %s", student.SkillLevel, course.SkillLevel))
	}
	if _, err := s.enrollments.FindByStudentAndCourse(ctx, student.ID, course.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "student already enrolled in course")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check existing enrollment")
	}
	active, err := s.enrollments.CountActiveByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count enrollments")
	}
	if active >= course.MaxCapacity {
		return nil, appErrors.Clone(appErrors.ErrCourseFull, "course is full")
	}

	enrollment = &models.Enrollment{
		StudentID: student.ID,
		CourseID:  course.ID,
		Status:    models.EnrollmentStatusActive,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Internal(err, "failed to create enrollment")
	}

	payment := &models.Payment{
		EnrollmentID: enrollment.ID,
		Amount:       course.Fee,
		Status:       models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.compensate(enrollment.ID, err)
		return nil, appErrors.Internal(err, "failed to create payment")
	}

	s.logger.Info("enrollment created",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int64("student_id", student.ID),
		zap.Int64("course_id", course.ID),
		zap.Int64("payment_id", payment.ID),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)
	invalidate(ctx, s.reports)
	return enrollment, nil
}

// compensate deletes a reserved enrollment whose payment could not be created.
func (s *EnrollmentService) compensate(enrollmentID int64, cause error) {
	ctx := context.Background()
	deleted, err := s.enrollments.Delete(ctx, enrollmentID)
	if err != nil || !deleted {
		s.logger.Error("enrollment rollback failed",
			zap.Int64("enrollment_id", enrollmentID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("enrollment rolled back after payment failure",
		zap.Int64("enrollment_id", enrollmentID),
		zap.Error(cause),
	)
}

func enrollmentResult(err error) string {
	if err == nil {
		return "created"
	}
	return strings.ToLower(appErrors.FromError(err).Code)
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

// Drop marks an enrollment DROPPED. It returns false for an unknown id.
func (s *EnrollmentService) Drop(ctx context.Context, id int64) (bool, error) {
	return s.transition(ctx, id, models.EnrollmentStatusDropped)
}

// Complete marks an enrollment COMPLETED. It returns false for an unknown id.
func (s *EnrollmentService) Complete(ctx context.Context, id int64) (bool, error) {
	return s.transition(ctx, id, models.EnrollmentStatusCompleted)
}

// transition does not inspect the current status.
func (s *EnrollmentService) transition(ctx context.Context, id int64, status models.EnrollmentStatus) (bool, error) {
	if err := s.enrollments.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Internal(err, "failed to update enrollment")
	}
	s.logger.Info("enrollment status changed", zap.Int64("enrollment_id", id), zap.String("status", string(status)))
	invalidate(ctx, s.reports)
	return true, nil
}

// ProcessPayment completes the lowest-id PENDING payment of an enrollment.
func (s *EnrollmentService) ProcessPayment(ctx context.Context, enrollmentID int64, req ProcessPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	release, err := s.acquire(ctx, enrollmentLockKey(enrollmentID))
	if err != nil {
		return nil, err
	}
	defer release()

	payments, err := s.payments.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	for i := range payments {
		payment := payments[i]
		if payment.Status != models.PaymentStatusPending {
			continue
		}
		method := strings.TrimSpace(req.Method)
		payment.Method = &method
		payment.Status = models.PaymentStatusCompleted
		payment.PaymentDate = time.Now().UTC()
		if err := s.payments.Update(ctx, &payment); err != nil {
			return nil, appErrors.Internal(err, "failed to update payment")
		}
		s.metrics.RecordPaymentProcessed()
		s.logger.Info("payment processed",
			zap.Int64("payment_id", payment.ID),
			zap.Int64("enrollment_id", enrollmentID),
			zap.String("method", method),
		)
		invalidate(ctx, s.reports)
		return &payment, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNoPendingPayment, "no pending payment for enrollment")
}

// Get returns an enrollment by id.
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) List(ctx context.Context) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, nil
}

func (s *EnrollmentService) ByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, nil
}

func (s *EnrollmentService) ByCourse(ctx context.Context, courseID int64) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, nil
}

func (s *EnrollmentService) Active(ctx context.Context) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// Payments lists the payments of one enrollment.
func (s *EnrollmentService) Payments(ctx context.Context, enrollmentID int64) ([]models.Payment, error) {
	if _, err := s.Get(ctx, enrollmentID); err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	return payments, nil
}

func (s *EnrollmentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	return payments, nil
}

func (s *EnrollmentService) PendingPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.payments.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	return payments, nil
}
