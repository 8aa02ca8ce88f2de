package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
	"github.com/noah-isme/ams-api/pkg/export"
)

type applicantRanker interface {
	ApplicantsForOpening(ctx context.Context, openingID int64, actor *models.JWTClaims) (*models.Opening, []models.RankedApplicant, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders ranked applicant lists for download.
type ExportService struct {
	ranker  applicantRanker
	logger  *zap.Logger
	enabled bool
	now     func() time.Time
}

func NewExportService(ranker applicantRanker, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{ranker: ranker, logger: logger, enabled: enabled, now: time.Now}
}

// ExportApplicants renders the opening's ranked applicants in the requested format.
func (s *ExportService) ExportApplicants(ctx context.Context, openingID int64, rawFormat string, actor *models.JWTClaims) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "exports are disabled")
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	opening, applicants, err := s.ranker.ApplicantsForOpening(ctx, openingID, actor)
	if err != nil {
		return nil, err
	}

	payload, err := export.For(format).Render(applicantTable(opening, applicants))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("applicants exported",
		zap.Int64("opening_id", openingID),
		zap.String("format", string(format)),
		zap.Int("rows", len(applicants)),
	)

	return &ExportFile{
		Filename:    fmt.Sprintf("opening-%d-applicants-%s.%s", openingID, s.now().UTC().Format("20060102"), format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func applicantTable(opening *models.Opening, applicants []models.RankedApplicant) export.Table {
	table := export.Table{
		Title:   fmt.Sprintf("Applicants for %s (%s)", opening.Name, opening.Location),
		Columns: []string{"Rank", "Student ID", "Name", "Email", "GPA", "Preferred Locations", "Preference", "Applied At"},
		Rows:    make([][]string, 0, len(applicants)),
	}
	for _, a := range applicants {
		preference := "-"
		if a.PreferenceRank != nil {
			preference = strconv.Itoa(*a.PreferenceRank)
		}
		applied := ""
		if !a.AppliedAt.IsZero() {
			applied = a.AppliedAt.UTC().Format("2006-01-02 15:04")
		}
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(a.Rank),
			a.Student.StudentID,
			a.Student.Name,
			a.Student.Email,
			strconv.FormatFloat(a.Student.GPA, 'f', 2, 64),
			strings.Join(a.Student.PreferredLocations, "; "),
			preference,
			applied,
		})
	}
	return table
}
