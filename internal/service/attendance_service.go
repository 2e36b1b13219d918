package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/lock"
	"github.com/noah-isme/artschool-api/internal/models"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error)
	ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Attendance, error)
	ListBySession(ctx context.Context, sessionID int64) ([]models.Attendance, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
}

type sessionReader interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
}

// RecordAttendanceRequest marks a student at one session. An empty status
// means PRESENT; unknown ids surface as NOT_FOUND.
type RecordAttendanceRequest struct {
	EnrollmentID int64                   `json:"enrollment_id"`
	SessionID    int64                   `json:"session_id"`
	Status       models.AttendanceStatus `json:"status" validate:"omitempty,oneof=PRESENT ABSENT LATE"`
	Notes        string                  `json:"notes" validate:"max=500"`
}

// AttendanceService records session attendance.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments enrollmentReader
	sessions    sessionReader
	locker      lock.Locker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the service. A nil locker falls back to an
// in-process one.
func NewAttendanceService(repo attendanceRepository, enrollments enrollmentReader, sessions sessionReader, locker lock.Locker, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, enrollments: enrollments, sessions: sessions, locker: locker, validator: validate, logger: logger}
}

// Record inserts attendance for the pair or overwrites status and notes of
// the existing row.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	if _, err := s.sessions.FindByID(ctx, req.SessionID); err != nil {
		return nil, notFoundOr(err, "session not found", "failed to load session")
	}
	status := req.Status
	if status == "" {
		status = models.AttendanceStatusPresent
	}

	key := fmt.Sprintf("attendance:%d:%d", req.EnrollmentID, req.SessionID)
	release, err := acquireKey(ctx, s.locker, s.logger, key)
	if err != nil {
		return nil, err
	}
	defer release()

	record, err := s.repo.Upsert(ctx, &models.Attendance{
		EnrollmentID: req.EnrollmentID,
		SessionID:    req.SessionID,
		Status:       status,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to record attendance")
	}
	s.logger.Debug("attendance recorded",
		zap.Int64("enrollment_id", record.EnrollmentID),
		zap.Int64("session_id", record.SessionID),
		zap.String("status", string(record.Status)),
	)
	return record, nil
}

// Percentage returns the share of PRESENT or LATE rows for an enrollment, in
// the range 0-100. An enrollment without rows scores 0.
func (s *AttendanceService) Percentage(ctx context.Context, enrollmentID int64) (float64, error) {
	records, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to list attendance")
	}
	return attendancePercentage(records), nil
}

func attendancePercentage(records []models.Attendance) float64 {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, r := range records {
		if r.Status.CountsAsPresent() {
			present++
		}
	}
	return float64(present) / float64(len(records)) * 100
}

func (s *AttendanceService) ByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Attendance, error) {
	records, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance")
	}
	return records, nil
}

func (s *AttendanceService) BySession(ctx context.Context, sessionID int64) ([]models.Attendance, error) {
	records, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance")
	}
	return records, nil
}
