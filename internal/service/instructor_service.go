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

type instructorRepository interface {
	Create(ctx context.Context, instructor *models.Instructor) error
	FindByID(ctx context.Context, id int64) (*models.Instructor, error)
	List(ctx context.Context) ([]models.Instructor, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ListBySpecialization(ctx context.Context, specialization string) ([]models.Instructor, error)
	SearchByName(ctx context.Context, name string) ([]models.Instructor, error)
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// InstructorRequest is used for both registration and updates.
type InstructorRequest struct {
	FirstName      string `json:"first_name" validate:"required,person_name"`
	LastName       string `json:"last_name" validate:"required,person_name"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"omitempty,phone"`
	Specialization string `json:"specialization" validate:"max=100"`
}

// InstructorService handles instructor use-cases.
type InstructorService struct {
	repo      instructorRepository
	reports   dashboardInvalidator
	locker    lock.Locker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs the instructor service.
func NewInstructorService(repo instructorRepository, reports dashboardInvalidator, locker lock.Locker, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, reports: reports, locker: locker, validator: validate, logger: logger}
}

// Register creates an instructor with a unique email.
func (s *InstructorService) Register(ctx context.Context, req InstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	email := strings.TrimSpace(req.Email)
	release, err := acquireKey(ctx, s.locker, s.logger, emailLockKey("instructor", email))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	instructor := &models.Instructor{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          email,
		Phone:          req.Phone,
		Specialization: strings.TrimSpace(req.Specialization),
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		return nil, instructorWriteError(err, "failed to create instructor")
	}
	s.logger.Info("instructor registered", zap.Int64("instructor_id", instructor.ID))
	invalidate(ctx, s.reports)
	return instructor, nil
}

func (s *InstructorService) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check instructor email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateEmail, "instructor email already registered")
	}
	return nil
}

func instructorWriteError(err error, message string) error {
	switch {
	case errors.Is(err, appErrors.ErrDuplicateEmail):
		return appErrors.Clone(appErrors.ErrDuplicateEmail, "instructor email already registered")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	default:
		return appErrors.Internal(err, message)
	}
}

// Get returns an instructor by id.
func (s *InstructorService) Get(ctx context.Context, id int64) (*models.Instructor, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Internal(err, "failed to load instructor")
	}
	return instructor, nil
}

func (s *InstructorService) List(ctx context.Context) ([]models.Instructor, error) {
	instructors, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list instructors")
	}
	return instructors, nil
}

// ListBySpecialization matches the whole specialization, ignoring case.
func (s *InstructorService) ListBySpecialization(ctx context.Context, specialization string) ([]models.Instructor, error) {
	instructors, err := s.repo.ListBySpecialization(ctx, strings.TrimSpace(specialization))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list instructors")
	}
	return instructors, nil
}

func (s *InstructorService) Search(ctx context.Context, name string) ([]models.Instructor, error) {
	instructors, err := s.repo.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search instructors")
	}
	return instructors, nil
}

func (s *InstructorService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count instructors")
	}
	return total, nil
}

// Update overwrites an instructor's details.
func (s *InstructorService) Update(ctx context.Context, id int64, req InstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	instructor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	release, err := acquireKey(ctx, s.locker, s.logger, emailLockKey("instructor", email))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return nil, err
	}
	instructor.FirstName = strings.TrimSpace(req.FirstName)
	instructor.LastName = strings.TrimSpace(req.LastName)
	instructor.Email = email
	instructor.Phone = req.Phone
	instructor.Specialization = strings.TrimSpace(req.Specialization)
	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, instructorWriteError(err, "failed to update instructor")
	}
	return instructor, nil
}

// Delete removes an instructor. Courses referencing it are not touched.
func (s *InstructorService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, appErrors.Internal(err, "failed to delete instructor")
	}
	if deleted {
		invalidate(ctx, s.reports)
	}
	return deleted, nil
}
