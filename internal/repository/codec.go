package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/noah-isme/ams-api/internal/models"
)

const (
	locationSeparator = ";"
	skillSeparator    = ","
)

// deadlineLayouts lists the textual forms accepted when reading a stored deadline.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type studentRow struct {
	StudentID          string    `db:"student_id"`
	Name               string    `db:"name"`
	Email              string    `db:"email"`
	MobileNumber       string    `db:"mobile_number"`
	GPA                float64   `db:"gpa"`
	Specialization     string    `db:"specialization"`
	PreferredLocations string    `db:"preferred_locations"`
	Skills             string    `db:"skills"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type openingRow struct {
	ID             int64          `db:"opening_id"`
	CompanyEmail   string         `db:"company_email"`
	Name           string         `db:"opening_name"`
	Specialization string         `db:"specialization"`
	Location       string         `db:"location"`
	Stipend        float64        `db:"stipend"`
	RequiredSkills string         `db:"required_skills"`
	RequiredGPA    float64        `db:"required_gpa"`
	Priority       string         `db:"priority"`
	Deadline       sql.NullString `db:"deadline"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func encodeStudent(s *models.Student) studentRow {
	return studentRow{
		StudentID:          s.StudentID,
		Name:               s.Name,
		Email:              s.Email,
		MobileNumber:       s.MobileNumber,
		GPA:                s.GPA,
		Specialization:     string(s.Specialization),
		PreferredLocations: joinList(s.PreferredLocations, locationSeparator),
		Skills:             joinList(s.Skills, skillSeparator),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (r studentRow) decode() models.Student {
	return models.Student{
		StudentID:          r.StudentID,
		Name:               r.Name,
		Email:              r.Email,
		MobileNumber:       r.MobileNumber,
		GPA:                r.GPA,
		Specialization:     models.Specialization(r.Specialization),
		PreferredLocations: splitList(r.PreferredLocations, locationSeparator),
		Skills:             splitList(r.Skills, skillSeparator),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func encodeOpening(o *models.Opening) openingRow {
	row := openingRow{
		ID:             o.ID,
		CompanyEmail:   o.CompanyEmail,
		Name:           o.Name,
		Specialization: string(o.Specialization),
		Location:       o.Location,
		Stipend:        o.Stipend,
		RequiredSkills: joinList(o.RequiredSkills, skillSeparator),
		RequiredGPA:    o.RequiredGPA,
		Priority:       string(models.ParsePriority(string(o.Priority))),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if !o.Deadline.IsZero() {
		row.Deadline = sql.NullString{String: o.Deadline.UTC().Format(time.RFC3339), Valid: true}
	}
	return row
}

func (r openingRow) decode() models.Opening {
	return models.Opening{
		ID:             r.ID,
		CompanyEmail:   r.CompanyEmail,
		Name:           r.Name,
		Specialization: models.Specialization(r.Specialization),
		Location:       r.Location,
		Stipend:        r.Stipend,
		RequiredSkills: splitList(r.RequiredSkills, skillSeparator),
		RequiredGPA:    r.RequiredGPA,
		Priority:       models.ParsePriority(r.Priority),
		Deadline:       parseDeadline(r.Deadline.String),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func decodeStudents(rows []studentRow) []models.Student {
	out := make([]models.Student, len(rows))
	for i, row := range rows {
		out[i] = row.decode()
	}
	return out
}

func decodeOpenings(rows []openingRow) []models.Opening {
	out := make([]models.Opening, len(rows))
	for i, row := range rows {
		out[i] = row.decode()
	}
	return out
}

// parseDeadline returns the zero time, meaning "no deadline", for empty or unreadable values.
// Zone-less values are read as UTC.
func parseDeadline(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func joinList(items []string, sep string) string {
	clean := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			clean = append(clean, item)
		}
	}
	return strings.Join(clean, sep)
}

func splitList(raw, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
