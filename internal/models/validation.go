package models

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var mobilePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// RegisterValidators installs the domain tags used by request payloads.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("specialization", func(fl validator.FieldLevel) bool {
		return ValidSpecialization(Specialization(fl.Field().String()))
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("gpa", func(fl validator.FieldLevel) bool {
		return twoDecimals(fl.Field().Float())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
}

// TrimAll returns a copy of items with surrounding whitespace removed from each entry.
func TrimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.TrimSpace(item)
	}
	return out
}

// GPA columns are NUMERIC(3,2); anything finer would be rounded by the store.
func twoDecimals(f float64) bool {
	scaled := f * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

// NewValidator returns a validator with the domain tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}

func strongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
