package models

import "time"

// SkillTest is a graded assessment that assigns a student's level.
type SkillTest struct {
	ID            int64      `db:"id" json:"id"`
	StudentID     int64      `db:"student_id" json:"student_id"`
	TestedAt      time.Time  `db:"tested_at" json:"tested_at"`
	Score         int        `db:"score" json:"score"`
	AssignedLevel SkillLevel `db:"assigned_level" json:"assigned_level"`
	Notes         string     `db:"notes" json:"notes"`
}
