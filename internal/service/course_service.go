package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/models"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	ListByTerm(ctx context.Context, term models.Term) ([]models.Course, error)
	ListBySkillLevel(ctx context.Context, level models.SkillLevel) ([]models.Course, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error)
	SearchByName(ctx context.Context, name string) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

type sessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Session, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type instructorReader interface {
	FindByID(ctx context.Context, id int64) (*models.Instructor, error)
}

// activeEnrollmentCounter reports how many ACTIVE enrollments hold a seat.
type activeEnrollmentCounter interface {
	CountActiveByCourse(ctx context.Context, courseID int64) (int, error)
}

// CourseRequest is used for both creating and updating courses. A zero
// capacity falls back to the configured default.
type CourseRequest struct {
	Name         string            `json:"name" validate:"required,max=100"`
	Description  string            `json:"description" validate:"max=1000"`
	Term         models.Term       `json:"term" validate:"required,oneof=SUMMER WINTER"`
	SkillLevel   models.SkillLevel `json:"skill_level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	InstructorID int64             `json:"instructor_id" validate:"required,gt=0"`
	MaxCapacity  int               `json:"max_capacity" validate:"gte=0"`
	Fee          decimal.Decimal   `json:"fee"`
	StartDate    string            `json:"start_date" validate:"omitempty,date"`
	EndDate      string            `json:"end_date" validate:"omitempty,date"`
}

// SessionRequest schedules one meeting of a course.
type SessionRequest struct {
	Date      string `json:"date" validate:"required,date"`
	StartTime string `json:"start_time" validate:"omitempty,clock"`
	EndTime   string `json:"end_time" validate:"omitempty,clock"`
	Topic     string `json:"topic" validate:"max=200"`
}

// CourseServiceConfig tunes course defaults.
type CourseServiceConfig struct {
	DefaultCapacity int
}

// CourseService handles courses and their sessions.
type CourseService struct {
	courses     courseRepository
	sessions    sessionRepository
	instructors instructorReader
	counter     activeEnrollmentCounter
	reports     dashboardInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         CourseServiceConfig
}

// NewCourseService constructs the course service. With a nil counter,
// Available returns every course.
func NewCourseService(courses courseRepository, sessions sessionRepository, instructors instructorReader, counter activeEnrollmentCounter, reports dashboardInvalidator, cfg CourseServiceConfig, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultCapacity <= 0 {
		cfg.DefaultCapacity = models.DefaultCourseCapacity
	}
	return &CourseService{
		courses:     courses,
		sessions:    sessions,
		instructors: instructors,
		counter:     counter,
		reports:     reports,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

func (s *CourseService) validateCourse(req CourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if req.Fee.IsNegative() {
		return appErrors.Clone(appErrors.ErrValidation, "fee must not be negative")
	}
	// ISO dates compare correctly as strings
	if req.StartDate != "" && req.EndDate != "" && req.EndDate < req.StartDate {
		return appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}
	return nil
}

func (s *CourseService) ensureInstructor(ctx context.Context, id int64) error {
	if _, err := s.instructors.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Internal(err, "failed to load instructor")
	}
	return nil
}

// CreateCourse creates a course taught by an existing instructor.
func (s *CourseService) CreateCourse(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validateCourse(req); err != nil {
		return nil, err
	}
	if err := s.ensureInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}
	course := &models.Course{}
	s.apply(course, req)
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to create course")
	}
	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("level", string(course.SkillLevel)))
	invalidate(ctx, s.reports)
	return course, nil
}

func (s *CourseService) apply(course *models.Course, req CourseRequest) {
	course.Name = strings.TrimSpace(req.Name)
	course.Description = req.Description
	course.Term = req.Term
	course.SkillLevel = req.SkillLevel
	course.InstructorID = req.InstructorID
	course.MaxCapacity = req.MaxCapacity
	if course.MaxCapacity == 0 {
		course.MaxCapacity = s.cfg.DefaultCapacity
	}
	course.Fee = req.Fee
	course.StartDate = req.StartDate
	course.EndDate = req.EndDate
}

// CreateSession schedules a session on an existing course.
func (s *CourseService) CreateSession(ctx context.Context, courseID int64, req SessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if req.StartTime != "" && req.EndTime != "" && req.EndTime < req.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must not be before start time")
	}
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	session := &models.Session{
		CourseID:  courseID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Topic:     strings.TrimSpace(req.Topic),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}
	return session, nil
}

// Available returns courses whose ACTIVE enrollments are below capacity.
func (s *CourseService) Available(ctx context.Context) ([]models.Course, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.counter == nil {
		return courses, nil
	}
	available := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		active, err := s.counter.CountActiveByCourse(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count enrollments")
		}
		if active < course.MaxCapacity {
			available = append(available, course)
		}
	}
	return available, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, nil
}

func (s *CourseService) ListByTerm(ctx context.Context, term models.Term) ([]models.Course, error) {
	if !term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	courses, err := s.courses.ListByTerm(ctx, term)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, nil
}

func (s *CourseService) ListBySkillLevel(ctx context.Context, level models.SkillLevel) ([]models.Course, error) {
	if !level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown skill level")
	}
	courses, err := s.courses.ListBySkillLevel(ctx, level)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, nil
}

func (s *CourseService) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	courses, err := s.courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, nil
}

func (s *CourseService) Search(ctx context.Context, name string) ([]models.Course, error) {
	courses, err := s.courses.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search courses")
	}
	return courses, nil
}

func (s *CourseService) Count(ctx context.Context) (int, error) {
	total, err := s.courses.Count(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count courses")
	}
	return total, nil
}

// Update overwrites a course. The instructor must exist.
func (s *CourseService) Update(ctx context.Context, id int64, req CourseRequest) (*models.Course, error) {
	if err := s.validateCourse(req); err != nil {
		return nil, err
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}
	s.apply(course, req)
	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to update course")
	}
	invalidate(ctx, s.reports)
	return course, nil
}

// Delete removes a course. Sessions and enrollments are left in place.
func (s *CourseService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.courses.Delete(ctx, id)
	if err != nil {
		return false, appErrors.Internal(err, "failed to delete course")
	}
	if deleted {
		invalidate(ctx, s.reports)
	}
	return deleted, nil
}

// Sessions lists a course's sessions.
func (s *CourseService) Sessions(ctx context.Context, courseID int64) ([]models.Session, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}
	return sessions, nil
}

func (s *CourseService) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	return session, nil
}

func (s *CourseService) DeleteSession(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.sessions.Delete(ctx, id)
	if err != nil {
		return false, appErrors.Internal(err, "failed to delete session")
	}
	return deleted, nil
}
