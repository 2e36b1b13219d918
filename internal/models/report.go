package models

import "time"

// Dashboard aggregates the headline numbers shown to staff.
type Dashboard struct {
	Students            int                `json:"students"`
	Instructors         int                `json:"instructors"`
	Courses             int                `json:"courses"`
	ActiveEnrollments   int                `json:"active_enrollments"`
	PendingPayments     int                `json:"pending_payments"`
	AvailableCourses    int                `json:"available_courses"`
	StudentsByLevel     map[SkillLevel]int `json:"students_by_level"`
	StudentsNotEnrolled []Student          `json:"students_not_enrolled"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

// ReportKind names an exportable dataset.
type ReportKind string

// Exportable datasets.
const (
	ReportStudents        ReportKind = "students"
	ReportCourses         ReportKind = "courses"
	ReportPendingPayments ReportKind = "pending-payments"
)

// ReportFormat names an export encoding.
type ReportFormat string

// Export encodings.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}
