package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/matching"
	"github.com/noah-isme/ams-api/internal/models"
	appErrors "github.com/noah-isme/ams-api/pkg/errors"
)

type matchingOpeningRepository interface {
	ListBySpecialization(ctx context.Context, specialization models.Specialization) ([]models.Opening, error)
}

type matchingStudentRepository interface {
	ListByEmails(ctx context.Context, emails []string) ([]models.Student, error)
}

type matchingApplicationRepository interface {
	ListByOpening(ctx context.Context, openingID int64) ([]models.Application, error)
	ListByStudent(ctx context.Context, studentEmail string) ([]models.Application, error)
}

type studentLookup interface {
	Get(ctx context.Context, email string) (*models.Student, error)
}

type openingAuthorizer interface {
	Authorize(ctx context.Context, id int64, actor *models.JWTClaims) (*models.Opening, error)
}

// MatchingService serves ranked openings to students and ranked applicants to companies.
type MatchingService struct {
	students     studentLookup
	openings     openingAuthorizer
	openingRepo  matchingOpeningRepository
	studentRepo  matchingStudentRepository
	applications matchingApplicationRepository
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	cacheTTL     time.Duration
	now          func() time.Time
}

// MatchingDeps groups the collaborators of MatchingService.
type MatchingDeps struct {
	Students     studentLookup
	Openings     openingAuthorizer
	OpeningRepo  matchingOpeningRepository
	StudentRepo  matchingStudentRepository
	Applications matchingApplicationRepository
	Cache        *CacheService
	Metrics      *MetricsService
	Logger       *zap.Logger
	CacheTTL     time.Duration
}

// NewMatchingService constructs a MatchingService.
func NewMatchingService(deps MatchingDeps) *MatchingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingService{
		students:     deps.Students,
		openings:     deps.Openings,
		openingRepo:  deps.OpeningRepo,
		studentRepo:  deps.StudentRepo,
		applications: deps.Applications,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
		logger:       logger,
		cacheTTL:     deps.CacheTTL,
		now:          time.Now,
	}
}

// OpeningsForStudent returns the student's eligible openings in rank order, annotated for display.
// cached reports whether the ranking came from the cache.
func (s *MatchingService) OpeningsForStudent(ctx context.Context, email string) ([]models.RankedOpening, bool, error) {
	student, err := s.students.Get(ctx, email)
	if err != nil {
		return nil, false, err
	}

	openings, cached, err := s.rankedOpenings(ctx, student)
	if err != nil {
		return nil, false, err
	}

	apps, err := s.applications.ListByStudent(ctx, email)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}
	applied := make(map[int64]struct{}, len(apps))
	for _, app := range apps {
		applied[app.OpeningID] = struct{}{}
	}

	now := s.now()
	out := make([]models.RankedOpening, len(openings))
	for i, opening := range openings {
		matched, overlap := matching.SkillOverlap(student.Skills, opening.RequiredSkills)
		_, isApplied := applied[opening.ID]
		out[i] = models.RankedOpening{
			Rank:          i + 1,
			Opening:       opening,
			MatchedSkills: matched,
			SkillOverlap:  overlap,
			Applied:       isApplied,
			Closed:        opening.DeadlinePassed(now),
		}
	}
	return out, cached, nil
}

func (s *MatchingService) rankedOpenings(ctx context.Context, student *models.Student) ([]models.Opening, bool, error) {
	key := MatchCacheKey(student.Email)
	var cached []models.Opening
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	start := time.Now()
	openings, err := s.openingRepo.ListBySpecialization(ctx, student.Specialization)
	s.metrics.ObserveDBQuery("openings_by_specialization", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load openings")
	}

	start = time.Now()
	ranked := matching.MatchOpenings(*student, openings)
	s.metrics.ObserveRank(DirectionOpenings, time.Since(start))

	_ = s.cache.Set(ctx, key, ranked, s.cacheTTL)
	return ranked, false, nil
}

// ApplicantsForOpening returns the opening's applicants that pass the stricter applicant filter, in rank order.
func (s *MatchingService) ApplicantsForOpening(ctx context.Context, openingID int64, actor *models.JWTClaims) (*models.Opening, []models.RankedApplicant, error) {
	opening, err := s.openings.Authorize(ctx, openingID, actor)
	if err != nil {
		return nil, nil, err
	}

	apps, err := s.applications.ListByOpening(ctx, openingID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}
	appliedAt := make(map[string]time.Time, len(apps))
	emails := make([]string, 0, len(apps))
	for _, app := range apps {
		appliedAt[app.StudentEmail] = app.CreatedAt
		emails = append(emails, app.StudentEmail)
	}

	start := time.Now()
	candidates, err := s.studentRepo.ListByEmails(ctx, emails)
	s.metrics.ObserveDBQuery("students_by_email", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicants")
	}
	// preserve application order so equal GPAs keep first-come order
	byEmail := make(map[string]models.Student, len(candidates))
	for _, c := range candidates {
		byEmail[c.Email] = c
	}
	ordered := make([]models.Student, 0, len(candidates))
	for _, email := range emails {
		if c, ok := byEmail[email]; ok {
			ordered = append(ordered, c)
		}
	}

	start = time.Now()
	ranked := matching.MatchApplicants(*opening, ordered)
	s.metrics.ObserveRank(DirectionApplicants, time.Since(start))

	out := make([]models.RankedApplicant, len(ranked))
	for i, student := range ranked {
		entry := models.RankedApplicant{Rank: i + 1, Student: student, AppliedAt: appliedAt[student.Email]}
		if idx, ok := student.PreferenceRank(opening.Location); ok {
			idx++
			entry.PreferenceRank = &idx
		}
		out[i] = entry
	}
	return opening, out, nil
}
