package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/models"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
	"github.com/noah-isme/artschool-api/pkg/export"
)

const (
	dashboardCacheKey     = "reports:dashboard"
	dashboardCachePattern = "reports:*"
)

type reportStudentSource interface {
	List(ctx context.Context) ([]models.Student, error)
}

type reportInstructorSource interface {
	Count(ctx context.Context) (int, error)
}

type reportCourseSource interface {
	List(ctx context.Context) ([]models.Course, error)
}

type reportEnrollmentSource interface {
	List(ctx context.Context) ([]models.Enrollment, error)
}

type reportPaymentSource interface {
	ListPending(ctx context.Context) ([]models.Payment, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportServiceConfig tunes report behaviour.
type ReportServiceConfig struct {
	CacheTTL time.Duration
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Students    reportStudentSource
	Instructors reportInstructorSource
	Courses     reportCourseSource
	Enrollments reportEnrollmentSource
	Payments    reportPaymentSource
	Cache       *CacheService
	CSV         csvRenderer
	PDF         pdfRenderer
	Logger      *zap.Logger
	Config      ReportServiceConfig
}

// ReportService builds the staff dashboard and exportable rosters.
type ReportService struct {
	students    reportStudentSource
	instructors reportInstructorSource
	courses     reportCourseSource
	enrollments reportEnrollmentSource
	payments    reportPaymentSource
	cache       *CacheService
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         func() time.Time
	cfg         ReportServiceConfig
}

// NewReportService constructs a ReportService.
func NewReportService(params ReportServiceParams) *ReportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.CSV == nil {
		params.CSV = export.NewCSVExporter()
	}
	if params.PDF == nil {
		params.PDF = export.NewPDFExporter()
	}
	return &ReportService{
		students:    params.Students,
		instructors: params.Instructors,
		courses:     params.Courses,
		enrollments: params.Enrollments,
		payments:    params.Payments,
		cache:       params.Cache,
		csv:         params.CSV,
		pdf:         params.PDF,
		logger:      params.Logger,
		now:         func() time.Time { return time.Now().UTC() },
		cfg:         params.Config,
	}
}

// InvalidateDashboard drops the cached dashboard. Failures are logged only.
func (s *ReportService) InvalidateDashboard(ctx context.Context) {
	if s == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
}

// Dashboard returns headline counts, served from cache when possible. The
// boolean reports a cache hit. A dashboard computed across an invalidation is
// returned but not cached.
func (s *ReportService) Dashboard(ctx context.Context) (*models.Dashboard, bool, error) {
	gen := s.cache.Generation()
	var cached models.Dashboard
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list students")
	}
	instructors, err := s.instructors.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to count instructors")
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list courses")
	}
	enrollments, err := s.enrollments.List(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list enrollments")
	}
	pending, err := s.payments.ListPending(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list payments")
	}

	activeByCourse := activeCounts(enrollments)
	dashboard := &models.Dashboard{
		Students:            len(students),
		Instructors:         instructors,
		Courses:             len(courses),
		PendingPayments:     len(pending),
		StudentsByLevel:     make(map[models.SkillLevel]int, len(models.SkillLevels)),
		StudentsNotEnrolled: studentsWithoutEnrollment(students, enrollments),
		GeneratedAt:         s.now(),
	}
	for _, n := range activeByCourse {
		dashboard.ActiveEnrollments += n
	}
	for _, level := range models.SkillLevels {
		dashboard.StudentsByLevel[level] = 0
	}
	for _, st := range students {
		dashboard.StudentsByLevel[st.SkillLevel]++
	}
	for _, c := range courses {
		if activeByCourse[c.ID] < c.MaxCapacity {
			dashboard.AvailableCourses++
		}
	}

	if err := s.cache.SetFresh(ctx, dashboardCacheKey, dashboard, s.cfg.CacheTTL, gen); err != nil {
		s.logger.Debug("dashboard not cached", zap.Error(err))
	}
	return dashboard, false, nil
}

func activeCounts(enrollments []models.Enrollment) map[int64]int {
	counts := make(map[int64]int)
	for _, e := range enrollments {
		if e.Status == models.EnrollmentStatusActive {
			counts[e.CourseID]++
		}
	}
	return counts
}

// Export renders one of the rosters as CSV or PDF.
func (s *ReportService) Export(ctx context.Context, kind models.ReportKind, format models.ReportFormat) (*models.ExportFile, error) {
	var (
		data  export.Dataset
		title string
		err   error
	)
	switch kind {
	case models.ReportStudents:
		data, err = s.studentDataset(ctx)
		title = "Student Roster"
	case models.ReportCourses:
		data, err = s.courseDataset(ctx)
		title = "Course Roster"
	case models.ReportPendingPayments:
		data, err = s.pendingPaymentDataset(ctx)
		title = "Pending Payments"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report %q", kind))
	}
	if err != nil {
		return nil, err
	}

	file := &models.ExportFile{Name: fmt.Sprintf("%s-%s.%s", kind, s.now().Format("20060102"), format)}
	switch format {
	case models.ReportFormatCSV:
		file.ContentType = "text/csv"
		file.Content, err = s.csv.Render(data)
	case models.ReportFormatPDF:
		file.ContentType = "application/pdf"
		file.Content, err = s.pdf.Render(data, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown format %q", format))
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}
	s.logger.Info("report exported", zap.String("kind", string(kind)), zap.String("format", string(format)), zap.Int("rows", len(data.Rows)))
	return file, nil
}

func (s *ReportService) studentDataset(ctx context.Context) (export.Dataset, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Internal(err, "failed to list students")
	}
	data := export.Dataset{Headers: []string{"ID", "First Name", "Last Name", "Email", "Phone", "Date of Birth", "Skill Level"}}
	for _, st := range students {
		data.Rows = append(data.Rows, map[string]string{
			"ID":            strconv.FormatInt(st.ID, 10),
			"First Name":    st.FirstName,
			"Last Name":     st.LastName,
			"Email":         st.Email,
			"Phone":         st.Phone,
			"Date of Birth": st.DateOfBirth,
			"Skill Level":   string(st.SkillLevel),
		})
	}
	return data, nil
}

func (s *ReportService) courseDataset(ctx context.Context) (export.Dataset, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Internal(err, "failed to list courses")
	}
	enrollments, err := s.enrollments.List(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Internal(err, "failed to list enrollments")
	}
	active := activeCounts(enrollments)
	data := export.Dataset{Headers: []string{"ID", "Name", "Term", "Level", "Instructor", "Enrolled", "Capacity", "Fee", "Start", "End"}}
	for _, c := range courses {
		data.Rows = append(data.Rows, map[string]string{
			"ID":         strconv.FormatInt(c.ID, 10),
			"Name":       c.Name,
			"Term":       string(c.Term),
			"Level":      string(c.SkillLevel),
			"Instructor": strconv.FormatInt(c.InstructorID, 10),
			"Enrolled":   strconv.Itoa(active[c.ID]),
			"Capacity":   strconv.Itoa(c.MaxCapacity),
			"Fee":        c.Fee.StringFixed(2),
			"Start":      c.StartDate,
			"End":        c.EndDate,
		})
	}
	return data, nil
}

func (s *ReportService) pendingPaymentDataset(ctx context.Context) (export.Dataset, error) {
	payments, err := s.payments.ListPending(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Internal(err, "failed to list payments")
	}
	data := export.Dataset{Headers: []string{"Payment", "Enrollment", "Amount", "Created"}}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
		data.Rows = append(data.Rows, map[string]string{
			"Payment":    strconv.FormatInt(p.ID, 10),
			"Enrollment": strconv.FormatInt(p.EnrollmentID, 10),
			"Amount":     p.Amount.StringFixed(2),
			"Created":    p.PaymentDate.Format("2006-01-02"),
		})
	}
	data.Totals = map[string]string{"Payment": "Total", "Amount": total.StringFixed(2)}
	return data, nil
}
