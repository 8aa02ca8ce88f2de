package models

import "strings"

// Specialization is an engineering field students and openings are grouped by.
type Specialization string

const (
	SpecializationSoftware   Specialization = "Software Engineering"
	SpecializationElectrical Specialization = "Electrical Engineering"
	SpecializationMechanical Specialization = "Mechanical Engineering"
	SpecializationCivil      Specialization = "Civil Engineering"
	SpecializationChemical   Specialization = "Chemical Engineering"
	SpecializationNuclear    Specialization = "Nuclear Engineering"
	SpecializationIndustrial Specialization = "Industrial Engineering"
	SpecializationMining     Specialization = "Mining Engineering"
)

var specializations = []Specialization{
	SpecializationSoftware,
	SpecializationElectrical,
	SpecializationMechanical,
	SpecializationCivil,
	SpecializationChemical,
	SpecializationNuclear,
	SpecializationIndustrial,
	SpecializationMining,
}

// Specializations returns the supported fields in display order.
func Specializations() []Specialization {
	out := make([]Specialization, len(specializations))
	copy(out, specializations)
	return out
}

// ValidSpecialization reports whether s is one of the supported fields.
func ValidSpecialization(s Specialization) bool {
	for _, known := range specializations {
		if known == s {
			return true
		}
	}
	return false
}

// Priority selects how an opening orders its candidates.
type Priority string

const (
	PriorityLocation Priority = "location"
	PriorityGPA      Priority = "gpa"
)

// ParsePriority is case-insensitive and falls back to PriorityLocation.
func ParsePriority(raw string) Priority {
	if Priority(strings.ToLower(strings.TrimSpace(raw))) == PriorityGPA {
		return PriorityGPA
	}
	return PriorityLocation
}
