package matching

import (
	"strings"

	"github.com/noah-isme/ams-api/internal/models"
)

// Eligible keeps, in input order, the openings in the student's field whose GPA floor the student meets.
func Eligible(student models.Student, openings []models.Opening) []models.Opening {
	out := make([]models.Opening, 0, len(openings))
	for _, o := range openings {
		if o.Specialization == student.Specialization && student.GPA >= o.RequiredGPA {
			out = append(out, o)
		}
	}
	return out
}

// EligibleApplicants is the inverse filter used when a company reviews candidates.
// Besides field and GPA floor, the opening's location must be one of the student's preferences.
func EligibleApplicants(opening models.Opening, students []models.Student) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if s.Specialization != opening.Specialization || s.GPA < opening.RequiredGPA {
			continue
		}
		if _, ok := s.PreferenceRank(opening.Location); !ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SkillOverlap reports which required skills the student has, case-insensitively.
// It is informational only and never affects eligibility or order.
func SkillOverlap(studentSkills, requiredSkills []string) ([]string, float64) {
	matched := []string{}
	if len(requiredSkills) == 0 {
		return matched, 0
	}
	have := make(map[string]struct{}, len(studentSkills))
	for _, s := range studentSkills {
		have[normalizeSkill(s)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(requiredSkills))
	total := 0
	for _, req := range requiredSkills {
		key := normalizeSkill(req)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		total++
		if _, ok := have[key]; ok {
			matched = append(matched, req)
		}
	}
	if total == 0 {
		return matched, 0
	}
	return matched, float64(len(matched)) / float64(total)
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
