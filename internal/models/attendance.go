package models

import "strings"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// CountsAsPresent reports whether the status counts toward attendance percentage.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// ParseAttendanceStatus normalises input; empty input yields PRESENT.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AttendanceStatusPresent, true
	}
	status := AttendanceStatus(strings.ToUpper(raw))
	return status, status.Valid()
}

// Attendance records a student's presence at one session. At most one row
// exists per (enrollment, session).
type Attendance struct {
	ID           int64            `db:"id" json:"id"`
	EnrollmentID int64            `db:"enrollment_id" json:"enrollment_id"`
	SessionID    int64            `db:"session_id" json:"session_id"`
	Status       AttendanceStatus `db:"status" json:"status"`
	Notes        string           `db:"notes" json:"notes"`
}
