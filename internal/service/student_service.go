package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/lock"
	"github.com/noah-isme/artschool-api/internal/models"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

// Score thresholds for level assignment. Scores up to BeginnerMaxScore are
// BEGINNER, up to IntermediateMaxScore INTERMEDIATE, anything above ADVANCED.
const (
	BeginnerMaxScore     = 40
	IntermediateMaxScore = 70
)

// AssignLevel maps a skill test score onto a level.
func AssignLevel(score int) models.SkillLevel {
	switch {
	case score <= BeginnerMaxScore:
		return models.SkillBeginner
	case score <= IntermediateMaxScore:
		return models.SkillIntermediate
	default:
		return models.SkillAdvanced
	}
}

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ListBySkillLevel(ctx context.Context, level models.SkillLevel) ([]models.Student, error)
	SearchByName(ctx context.Context, name string) ([]models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

type skillTestRepository interface {
	Create(ctx context.Context, test *models.SkillTest) error
	ListByStudent(ctx context.Context, studentID int64) ([]models.SkillTest, error)
}

type enrollmentLister interface {
	List(ctx context.Context) ([]models.Enrollment, error)
}

// dashboardInvalidator drops cached report aggregates after a mutation.
type dashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context)
}

func invalidate(ctx context.Context, inv dashboardInvalidator) {
	if inv != nil {
		inv.InvalidateDashboard(ctx)
	}
}

// RegisterStudentRequest holds payload for registering students.
type RegisterStudentRequest struct {
	FirstName   string `json:"first_name" validate:"required,person_name"`
	LastName    string `json:"last_name" validate:"required,person_name"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,past_date"`
}

// UpdateStudentRequest holds payload for updating students. An empty skill
// level keeps the current one.
type UpdateStudentRequest struct {
	FirstName   string            `json:"first_name" validate:"required,person_name"`
	LastName    string            `json:"last_name" validate:"required,person_name"`
	Email       string            `json:"email" validate:"required,email"`
	Phone       string            `json:"phone" validate:"omitempty,phone"`
	DateOfBirth string            `json:"date_of_birth" validate:"omitempty,past_date"`
	SkillLevel  models.SkillLevel `json:"skill_level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
}

// SkillTestRequest holds a graded test result.
type SkillTestRequest struct {
	Score int    `json:"score" validate:"gte=0,lte=100"`
	Notes string `json:"notes" validate:"max=500"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	tests       skillTestRepository
	enrollments enrollmentLister
	metrics     *MetricsService
	reports     dashboardInvalidator
	locker      lock.Locker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service. metrics and reports may
// be nil; a nil locker falls back to an in-process one.
func NewStudentService(repo studentRepository, tests skillTestRepository, enrollments enrollmentLister, metrics *MetricsService, reports dashboardInvalidator, locker lock.Locker, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:        repo,
		tests:       tests,
		enrollments: enrollments,
		metrics:     metrics,
		reports:     reports,
		locker:      locker,
		validator:   validate,
		logger:      logger,
	}
}

// Register creates a student. New students always start at BEGINNER. The
// email check and insert run under a lock on the address.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	email := strings.TrimSpace(req.Email)
	release, err := acquireKey(ctx, s.locker, s.logger, emailLockKey("student", email))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	student := &models.Student{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		SkillLevel:  models.SkillBeginner,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, studentWriteError(err, "failed to create student")
	}
	s.logger.Info("student registered", zap.Int64("student_id", student.ID))
	invalidate(ctx, s.reports)
	return student, nil
}

// ConductSkillTest records a test and overwrites the student's level with the
// one derived from the score, whether higher or lower than before. It holds
// the student's lock so a concurrent Update cannot clobber the new level.
func (s *StudentService) ConductSkillTest(ctx context.Context, studentID int64, req SkillTestRequest) (*models.SkillTest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid skill test payload")
	}
	release, err := acquireKey(ctx, s.locker, s.logger, studentLockKey(studentID))
	if err != nil {
		return nil, err
	}
	defer release()

	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	level := AssignLevel(req.Score)
	test := &models.SkillTest{
		StudentID:     studentID,
		Score:         req.Score,
		AssignedLevel: level,
		Notes:         req.Notes,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, appErrors.Internal(err, "failed to record skill test")
	}
	previous := student.SkillLevel
	student.SkillLevel = level
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to update student level")
	}
	s.metrics.RecordSkillTest(level)
	s.logger.Info("skill test recorded",
		zap.Int64("student_id", studentID),
		zap.Int("score", req.Score),
		zap.String("from", string(previous)),
		zap.String("to", string(level)),
	)
	invalidate(ctx, s.reports)
	return test, nil
}

// SkillTests returns a student's test history.
func (s *StudentService) SkillTests(ctx context.Context, studentID int64) ([]models.SkillTest, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	tests, err := s.tests.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list skill tests")
	}
	return tests, nil
}

func (s *StudentService) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check student email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateEmail, "student email already registered")
	}
	return nil
}

// studentWriteError keeps a duplicate email reported by the store as a 409.
func studentWriteError(err error, message string) error {
	switch {
	case errors.Is(err, appErrors.ErrDuplicateEmail):
		return appErrors.Clone(appErrors.ErrDuplicateEmail, "student email already registered")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	default:
		return appErrors.Internal(err, message)
	}
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// List returns every student.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

func (s *StudentService) ListByLevel(ctx context.Context, level models.SkillLevel) ([]models.Student, error) {
	if !level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown skill level")
	}
	students, err := s.repo.ListBySkillLevel(ctx, level)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

// Search matches a case-insensitive substring of first or last name.
func (s *StudentService) Search(ctx context.Context, name string) ([]models.Student, error) {
	students, err := s.repo.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search students")
	}
	return students, nil
}

func (s *StudentService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count students")
	}
	return total, nil
}

// Unenrolled returns students with no enrollment rows of any status.
func (s *StudentService) Unenrolled(ctx context.Context) ([]models.Student, error) {
	students, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return studentsWithoutEnrollment(students, enrollments), nil
}

func studentsWithoutEnrollment(students []models.Student, enrollments []models.Enrollment) []models.Student {
	enrolled := make(map[int64]struct{}, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.StudentID] = struct{}{}
	}
	out := make([]models.Student, 0)
	for _, st := range students {
		if _, ok := enrolled[st.ID]; !ok {
			out = append(out, st)
		}
	}
	return out
}

// Update overwrites a student's details. The student's lock is taken before
// the lock on the new address; Register only ever takes the latter.
func (s *StudentService) Update(ctx context.Context, id int64, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	releaseStudent, err := acquireKey(ctx, s.locker, s.logger, studentLockKey(id))
	if err != nil {
		return nil, err
	}
	defer releaseStudent()

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	releaseEmail, err := acquireKey(ctx, s.locker, s.logger, emailLockKey("student", email))
	if err != nil {
		return nil, err
	}
	defer releaseEmail()

	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return nil, err
	}
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = email
	student.Phone = req.Phone
	student.DateOfBirth = req.DateOfBirth
	if req.SkillLevel != "" {
		student.SkillLevel = req.SkillLevel
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, studentWriteError(err, "failed to update student")
	}
	invalidate(ctx, s.reports)
	return student, nil
}

// Delete removes a student and reports whether one existed. Enrollments and
// skill tests are left in place.
func (s *StudentService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, appErrors.Internal(err, "failed to delete student")
	}
	if deleted {
		invalidate(ctx, s.reports)
	}
	return deleted, nil
}
