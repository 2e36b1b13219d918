package models

import "time"

// Student represents a learner registered at the school.
type Student struct {
	ID          int64      `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Email       string     `db:"email" json:"email"`
	Phone       string     `db:"phone" json:"phone"`
	DateOfBirth string     `db:"date_of_birth" json:"date_of_birth"`
	SkillLevel  SkillLevel `db:"skill_level" json:"skill_level"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
