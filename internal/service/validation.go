package service

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	personNamePattern = regexp.MustCompile(`^[\p{L}\s'\-]+$`)
	phonePattern      = regexp.MustCompile(`^[0-9+\-\s()]{7,15}$`)
	clockPattern      = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// NewValidator returns a validator with the school-specific tags registered:
// person_name, phone, date, past_date and clock.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterValidations(v)
	return v
}

// RegisterValidations adds the custom tags to an existing validator.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		n := utf8.RuneCountInString(name)
		return n >= 2 && n <= 50 && personNamePattern.MatchString(name)
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("past_date", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil && !d.After(time.Now().UTC())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
}
