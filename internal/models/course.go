package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Term identifies the season a course runs in.
type Term string

// Supported terms.
const (
	TermSummer Term = "SUMMER"
	TermWinter Term = "WINTER"
)

// Valid returns true when the term is a supported value.
func (t Term) Valid() bool {
	return t == TermSummer || t == TermWinter
}

// ParseTerm normalises user input into a Term.
func ParseTerm(raw string) (Term, bool) {
	term := Term(strings.ToUpper(strings.TrimSpace(raw)))
	return term, term.Valid()
}

// DefaultCourseCapacity applies when a course is created without a capacity.
const DefaultCourseCapacity = 20

// Course is a term-bound class taught by one instructor.
type Course struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Term         Term            `db:"term" json:"term"`
	SkillLevel   SkillLevel      `db:"skill_level" json:"skill_level"`
	InstructorID int64           `db:"instructor_id" json:"instructor_id"`
	MaxCapacity  int             `db:"max_capacity" json:"max_capacity"`
	Fee          decimal.Decimal `db:"fee" json:"fee"`
	StartDate    string          `db:"start_date" json:"start_date"`
	EndDate      string          `db:"end_date" json:"end_date"`
}

// Session is one scheduled meeting of a course.
type Session struct {
	ID        int64  `db:"id" json:"id"`
	CourseID  int64  `db:"course_id" json:"course_id"`
	Date      string `db:"session_date" json:"date"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Topic     string `db:"topic" json:"topic"`
}
