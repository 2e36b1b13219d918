package models

import "strings"

// SkillLevel classifies students and gates which courses they may join.
type SkillLevel string

// Supported skill levels.
const (
	SkillBeginner     SkillLevel = "BEGINNER"
	SkillIntermediate SkillLevel = "INTERMEDIATE"
	SkillAdvanced     SkillLevel = "ADVANCED"
)

// SkillLevels lists every level in ascending order.
var SkillLevels = []SkillLevel{SkillBeginner, SkillIntermediate, SkillAdvanced}

// Valid returns true when the level is a supported value.
func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	default:
		return false
	}
}

// ParseSkillLevel normalises user input into a SkillLevel.
func ParseSkillLevel(raw string) (SkillLevel, bool) {
	level := SkillLevel(strings.ToUpper(strings.TrimSpace(raw)))
	return level, level.Valid()
}
