package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/ams-api/internal/models"
)

type snapshot struct {
	Students []studentEntry `yaml:"students"`
	Openings []openingEntry `yaml:"openings"`
}

type studentEntry struct {
	StudentID      string   `yaml:"student_id"`
	Name           string   `yaml:"name"`
	Email          string   `yaml:"email"`
	GPA            float64  `yaml:"gpa"`
	Specialization string   `yaml:"specialization"`
	Locations      []string `yaml:"preferred_locations"`
	Skills         []string `yaml:"skills"`
}

type openingEntry struct {
	ID             int64    `yaml:"id"`
	Company        string   `yaml:"company_email"`
	Name           string   `yaml:"name"`
	Specialization string   `yaml:"specialization"`
	Location       string   `yaml:"location"`
	Stipend        float64  `yaml:"stipend"`
	RequiredSkills []string `yaml:"required_skills"`
	RequiredGPA    float64  `yaml:"required_gpa"`
	Priority       string   `yaml:"priority"`
	Deadline       string   `yaml:"deadline"`
}

func decodeSnapshot(r io.Reader) ([]models.Student, []models.Opening, error) {
	var snap snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	students := make([]models.Student, 0, len(snap.Students))
	for i, s := range snap.Students {
		spec := models.Specialization(strings.TrimSpace(s.Specialization))
		if !models.ValidSpecialization(spec) {
			return nil, nil, fmt.Errorf("student %d (%s): unknown specialization %q", i, s.Email, s.Specialization)
		}
		if len(s.Locations) > models.MaxPreferredLocations {
			return nil, nil, fmt.Errorf("student %d (%s): at most %d preferred locations", i, s.Email, models.MaxPreferredLocations)
		}
		students = append(students, models.Student{
			StudentID:          s.StudentID,
			Name:               s.Name,
			Email:              s.Email,
			GPA:                s.GPA,
			Specialization:     spec,
			PreferredLocations: s.Locations,
			Skills:             s.Skills,
		})
	}

	openings := make([]models.Opening, 0, len(snap.Openings))
	for i, o := range snap.Openings {
		spec := models.Specialization(strings.TrimSpace(o.Specialization))
		if !models.ValidSpecialization(spec) {
			return nil, nil, fmt.Errorf("opening %d (%s): unknown specialization %q", i, o.Name, o.Specialization)
		}
		opening := models.Opening{
			ID:             o.ID,
			CompanyEmail:   o.Company,
			Name:           o.Name,
			Specialization: spec,
			Location:       o.Location,
			Stipend:        o.Stipend,
			RequiredSkills: o.RequiredSkills,
			RequiredGPA:    o.RequiredGPA,
			Priority:       models.ParsePriority(o.Priority),
		}
		if o.Deadline != "" {
			deadline, err := time.Parse(time.RFC3339, o.Deadline)
			if err != nil {
				return nil, nil, fmt.Errorf("opening %d (%s): deadline: %w", i, o.Name, err)
			}
			opening.Deadline = deadline
		}
		openings = append(openings, opening)
	}
	return students, openings, nil
}
