package models

import (
	"fmt"
	"strings"
	"time"
)

// Opening is an apprenticeship position posted by a company.
type Opening struct {
	ID             int64          `json:"id"`
	CompanyEmail   string         `json:"company_email"`
	Name           string         `json:"name"`
	Specialization Specialization `json:"specialization"`
	Location       string         `json:"location"`
	Stipend        float64        `json:"stipend"`
	RequiredSkills []string       `json:"required_skills"`
	RequiredGPA    float64        `json:"required_gpa"`
	Priority       Priority       `json:"priority"`
	Deadline       time.Time      `json:"deadline"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HasDeadline reports whether the opening closes at some point.
func (o Opening) HasDeadline() bool {
	return !o.Deadline.IsZero()
}

// DeadlinePassed reports whether applications are closed at now.
func (o Opening) DeadlinePassed(now time.Time) bool {
	return o.HasDeadline() && now.After(o.Deadline)
}

// Details renders the opening for display.
func (o Opening) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Opening: %s\n", o.Name)
	fmt.Fprintf(&b, "Company: %s\n", o.CompanyEmail)
	fmt.Fprintf(&b, "Specialization: %s\n", o.Specialization)
	fmt.Fprintf(&b, "Location: %s\n", o.Location)
	fmt.Fprintf(&b, "Stipend: %.2f\n", o.Stipend)
	fmt.Fprintf(&b, "Required GPA: %.2f\n", o.RequiredGPA)
	fmt.Fprintf(&b, "Required Skills: %s\n", strings.Join(o.RequiredSkills, ", "))
	fmt.Fprintf(&b, "Priority: %s\n", o.Priority)
	if o.HasDeadline() {
		fmt.Fprintf(&b, "Deadline: %s", o.Deadline.Format("2006-01-02 15:04"))
	} else {
		b.WriteString("Deadline: none")
	}
	return b.String()
}

// OpeningFilter narrows opening listings.
type OpeningFilter struct {
	CompanyEmail   string
	Specialization Specialization
	Location       string
	Page           int
	PageSize       int
}

// OpeningRequest creates or fully replaces an opening. A nil deadline falls back to the configured default.
type OpeningRequest struct {
	Name           string         `json:"name" validate:"required,max=160"`
	Specialization Specialization `json:"specialization" validate:"required,specialization"`
	Location       string         `json:"location" validate:"required,max=80,excludes=;"`
	Stipend        float64        `json:"stipend" validate:"gt=0"`
	RequiredSkills []string       `json:"required_skills" validate:"omitempty,unique,dive,required,max=60,excludes=0x2C"`
	RequiredGPA    float64        `json:"required_gpa" validate:"gte=0,lte=5,gpa"`
	Priority       Priority       `json:"priority" validate:"omitempty,oneof=location gpa"`
	Deadline       *time.Time     `json:"deadline"`
}

// RankedOpening is one entry of a student's match list.
type RankedOpening struct {
	Rank          int      `json:"rank"`
	Opening       Opening  `json:"opening"`
	MatchedSkills []string `json:"matched_skills"`
	SkillOverlap  float64  `json:"skill_overlap"`
	Applied       bool     `json:"applied"`
	Closed        bool     `json:"closed"`
}

// RankedApplicant is one entry of a company's applicant review list.
type RankedApplicant struct {
	Rank           int       `json:"rank"`
	Student        Student   `json:"student"`
	PreferenceRank *int      `json:"preference_rank,omitempty"`
	AppliedAt      time.Time `json:"applied_at"`
}
