package models

import (
	"fmt"
	"strings"
	"time"
)

// MaxPreferredLocations caps the ranked preference list of a student.
const MaxPreferredLocations = 3

// Student is an apprenticeship seeker's profile.
type Student struct {
	StudentID          string         `json:"student_id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	MobileNumber       string         `json:"mobile_number,omitempty"`
	GPA                float64        `json:"gpa"`
	Specialization     Specialization `json:"specialization"`
	PreferredLocations []string       `json:"preferred_locations"`
	Skills             []string       `json:"skills"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// PreferenceRank returns the zero-based rank of location in the preference list.
func (s Student) PreferenceRank(location string) (int, bool) {
	for i, pref := range s.PreferredLocations {
		if pref == location {
			return i, true
		}
	}
	return 0, false
}

// Details renders the profile for display.
func (s Student) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Student ID: %s\n", s.StudentID)
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	fmt.Fprintf(&b, "Email: %s\n", s.Email)
	if s.MobileNumber != "" {
		fmt.Fprintf(&b, "Mobile: %s\n", s.MobileNumber)
	}
	fmt.Fprintf(&b, "GPA: %.2f\n", s.GPA)
	fmt.Fprintf(&b, "Specialization: %s\n", s.Specialization)
	fmt.Fprintf(&b, "Preferred Locations: %s\n", strings.Join(s.PreferredLocations, ", "))
	fmt.Fprintf(&b, "Skills: %s", strings.Join(s.Skills, ", "))
	return b.String()
}

// StudentFilter captures the admin listing criteria.
type StudentFilter struct {
	Search         string
	Specialization Specialization
	MinGPA         *float64
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// StudentProfileRequest creates or fully replaces a profile.
type StudentProfileRequest struct {
	StudentID          string         `json:"student_id" validate:"required,max=32"`
	Name               string         `json:"name" validate:"required,max=120"`
	MobileNumber       string         `json:"mobile_number" validate:"omitempty,mobile"`
	GPA                float64        `json:"gpa" validate:"gte=0,lte=5,gpa"`
	Specialization     Specialization `json:"specialization" validate:"required,specialization"`
	PreferredLocations []string       `json:"preferred_locations" validate:"required,min=1,max=3,unique,dive,required,max=80,excludes=;"`
	Skills             []string       `json:"skills" validate:"omitempty,unique,dive,required,max=60,excludes=0x2C"`
}
