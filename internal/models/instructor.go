package models

import "time"

// Instructor teaches courses.
type Instructor struct {
	ID             int64     `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	Specialization string    `db:"specialization" json:"specialization"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FullName joins first and last name.
func (i Instructor) FullName() string {
	return i.FirstName + " " + i.LastName
}
